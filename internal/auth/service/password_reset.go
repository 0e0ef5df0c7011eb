package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/aussiebroadwan/campusauth/internal/auth/store"
	"github.com/aussiebroadwan/campusauth/pkg/cryptox"
	"github.com/aussiebroadwan/campusauth/pkg/slogx"
)

// ForgotPassword issues a reset code for the account and hands it to the
// Notifier. It reports success whether or not the account exists; unknown
// emails are only visible in the audit log. Both paths hash one code and
// delivery runs after the call returns.
//
// A new code replaces any pending one, so concurrent requests resolve to
// whichever write lands last.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if email == "" {
		return ErrMissingFields
	}

	code, err := cryptox.GenerateResetCode()
	if err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if _, err := s.Hasher.Hash(ctx, code); err != nil {
				return err
			}
			s.record(ctx, domain.AuditPasswordResetRequestFailure, "", "", "password reset requested for unknown email", nil)
			l.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	codeHash, err := s.Hasher.Hash(ctx, code)
	if err != nil {
		return err
	}

	now := s.now()
	prior := user.ResetState(now)
	if err := s.Store.Users().SetResetCode(ctx, user.ID, codeHash, now.Add(s.resetCodeTTL()), now); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	s.record(ctx, domain.AuditPasswordResetRequestSuccess, user.ID, user.ID, "password reset code issued", map[string]string{
		"superseded": strconv.FormatBool(prior == domain.ResetCodeIssued),
	})

	s.deliverResetCode(ctx, user, code)
	return nil
}

// deliverResetCode sends the code in the background under its own timeout.
// The request context only contributes its values (logger); cancelling the
// request does not abort delivery.
func (s *AuthService) deliverResetCode(ctx context.Context, user domain.User, code string) {
	l := slogx.FromContext(ctx)
	if s.Notifier == nil {
		l.Warn("no notifier configured, reset code not delivered", slog.String("user_id", user.ID))
		return
	}

	ctx = context.WithoutCancel(ctx)
	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()

		ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout())
		defer cancel()

		if err := s.Notifier.SendResetCode(ctx, user.Email, code); err != nil {
			l.Error("failed to deliver reset code", slog.String("user_id", user.ID), slog.Any("error", err))
		}
	}()
}

// WaitForDeliveries blocks until every reset code handed to the Notifier
// has been sent or has failed, or until ctx is done.
func (s *AuthService) WaitForDeliveries(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.deliveries.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ResetPassword sets a new password for the account, bumps its password
// version by one and clears any pending reset code. It does not take or
// check a reset code, and unlike ForgotPassword it reports unknown emails
// with ErrUserNotFound.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	l := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if email == "" || newPassword == "" {
		return ErrMissingFields
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := s.Hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	now := s.now()
	prior := user.ResetState(now)
	if err := s.Store.Users().ResetPassword(ctx, user.ID, hash, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("reset password: %w", err)
	}

	s.record(ctx, domain.AuditPasswordResetSuccess, user.ID, user.ID, "password reset", map[string]string{
		"prior_state": string(prior),
	})
	l.Info("password reset", slog.String("user_id", user.ID))
	return nil
}
