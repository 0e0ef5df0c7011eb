package domain

import "time"

// ResetState is where an account sits in the password-reset lifecycle.
// Consumed and Superseded are transitions back to NoResetPending and to a
// fresh CodeIssued respectively, so they are not stored.
type ResetState string

const (
	ResetNonePending ResetState = "no_reset_pending"
	ResetCodeIssued  ResetState = "code_issued"
	ResetExpired     ResetState = "expired"
)

// ResetState derives the reset state at now. A code is never valid at or
// after its expiry.
func (u User) ResetState(now time.Time) ResetState {
	if u.ResetPasswordCodeHash == nil || u.ResetPasswordCodeExpiresAt == nil {
		return ResetNonePending
	}
	if !now.Before(*u.ResetPasswordCodeExpiresAt) {
		return ResetExpired
	}
	return ResetCodeIssued
}
