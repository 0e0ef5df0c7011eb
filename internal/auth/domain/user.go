package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStudent     Role = "student"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

// User is the credential record. PasswordHash and the code hashes never
// leave the service; callers get a PublicUser.
type User struct {
	ID              string
	Name            string
	Email           string // always normalized
	PasswordHash    string // argon2id PHC encoded
	PasswordVersion int64
	Role            Role
	Status          Status
	EmailVerified   bool

	// Legacy verification fields; the activation endpoints null them out.
	EmailVerificationCodeHash      *string
	EmailVerificationCodeExpiresAt *time.Time

	ResetPasswordCodeHash      *string
	ResetPasswordCodeExpiresAt *time.Time

	StudentID    string
	Department   string
	Avatar       string
	Organization string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail trims and lower-cases an email. It is the only form used
// for lookups and writes.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CanSignIn reports whether the account may obtain a token as-is.
func (u User) CanSignIn() bool { return u.Status == StatusActive }

// Activated reports whether the legacy verification flow has nothing left to do.
func (u User) Activated() bool { return u.EmailVerified && u.Status == StatusActive }

// PublicUser is the caller-facing projection of a User.
type PublicUser struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	Status          Status    `json:"status"`
	EmailVerified   bool      `json:"email_verified"`
	PasswordVersion int64     `json:"password_version"`
	StudentID       string    `json:"student_id,omitempty"`
	Department      string    `json:"department,omitempty"`
	Avatar          string    `json:"avatar,omitempty"`
	Organization    string    `json:"organization,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		Status:          u.Status,
		EmailVerified:   u.EmailVerified,
		PasswordVersion: u.PasswordVersion,
		StudentID:       u.StudentID,
		Department:      u.Department,
		Avatar:          u.Avatar,
		Organization:    u.Organization,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
