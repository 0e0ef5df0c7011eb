package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/aussiebroadwan/campusauth/internal/auth/store"
	"github.com/aussiebroadwan/campusauth/pkg/cryptox"
	"github.com/aussiebroadwan/campusauth/pkg/idx"
	"github.com/aussiebroadwan/campusauth/pkg/jwtx"
	"github.com/aussiebroadwan/campusauth/pkg/slogx"
)

const (
	// DefaultResetCodeTTL is how long a password reset code stays valid.
	DefaultResetCodeTTL = 10 * time.Minute

	// DefaultNotifyTimeout bounds one reset-code delivery.
	DefaultNotifyTimeout = 15 * time.Second
)

// AuthService owns the credential lifecycle: password login, registration,
// the legacy email activation endpoints, Google sign-in and password reset.
//
// Signer and Identity may be nil, in which case the operations that need
// them fail with ErrConfigurationMissing / ErrProviderNotConfigured.
type AuthService struct {
	Store    store.Store
	Hasher   PasswordHasher
	Signer   jwtx.Signer
	Identity IdentityVerifier
	Audit    AuditSink
	Notifier Notifier

	ResetCodeTTL  time.Duration
	NotifyTimeout time.Duration
	Now           func() time.Time

	deliveries sync.WaitGroup
}

// AuthResult is returned by every operation that signs the caller in.
type AuthResult struct {
	User  domain.PublicUser
	Token string
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       string // optional, only "student" is accepted
	StudentID  string
	Department string
	Avatar     string
}

// RegisterResult carries a nil Token when the account was created but no
// signing secret is configured; callers treat that as "registered but not
// authenticated".
type RegisterResult struct {
	User  domain.PublicUser
	Email string
	Token *string
}

// Login checks an email/password pair and issues a session token.
//
// Unknown emails and wrong passwords both return ErrInvalidCredentials; only
// the audit trail tells them apart (empty actor vs the user's id).
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.record(ctx, domain.AuditLoginFailure, "", "", "login attempt for unknown email", nil)
			l.Info("login failed", slog.String("reason", "unknown_email"))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.Hasher.Verify(ctx, password, user.PasswordHash); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, cryptox.ErrMismatch) {
			l.Warn("stored password hash could not be verified", slog.String("user_id", user.ID), slog.Any("error", err))
		}
		s.record(ctx, domain.AuditLoginFailure, user.ID, user.ID, "invalid password", nil)
		l.Info("login failed", slog.String("reason", "bad_password"), slog.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	if !user.CanSignIn() {
		if user.Role != domain.RoleStudent {
			s.record(ctx, domain.AuditLoginFailure, user.ID, user.ID, "account inactive", map[string]string{
				"status": string(user.Status),
			})
			l.Info("login refused for inactive account", slog.String("user_id", user.ID), slog.String("status", string(user.Status)))
			return nil, ErrAccountInactive
		}

		// Students left pending by the old verification flow are promoted.
		user, err = s.activateAndReload(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("activate student account: %w", err)
		}
		l.Info("pending student account activated on login", slog.String("user_id", user.ID))
	}

	token, err := s.issueToken(user)
	if err != nil {
		s.record(ctx, domain.AuditLoginFailure, user.ID, user.ID, "session token not issued", map[string]string{
			"reason": tokenFailureReason(err),
		})
		return nil, err
	}

	s.record(ctx, domain.AuditLoginSuccess, user.ID, user.ID, "login succeeded", map[string]string{"method": "password"})
	return &AuthResult{User: user.Public(), Token: token}, nil
}

// Register creates an active student account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	l := slogx.FromContext(ctx)

	role := domain.Role(strings.ToLower(strings.TrimSpace(in.Role)))
	if role == "" {
		role = domain.RoleStudent
	}
	if role != domain.RoleStudent {
		return nil, ErrRoleNotAllowed
	}

	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	hash, err := s.Hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := domain.User{
		ID:            idx.NewAt(now).String(),
		Name:          strings.TrimSpace(in.Name),
		Email:         email,
		PasswordHash:  hash,
		Role:          domain.RoleStudent,
		Status:        domain.StatusActive,
		EmailVerified: true,
		StudentID:     strings.TrimSpace(in.StudentID),
		Department:    strings.TrimSpace(in.Department),
		Avatar:        strings.TrimSpace(in.Avatar),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Re-read so the token reflects what was persisted.
	user, err = s.Store.Users().GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.record(ctx, domain.AuditUserRegistered, user.ID, user.ID, "account registered", nil)

	res := &RegisterResult{User: user.Public(), Email: user.Email}
	token, err := s.issueToken(user)
	switch {
	case err == nil:
		res.Token = &token
	case errors.Is(err, ErrConfigurationMissing):
		l.Warn("account registered without a session token: signing secret not configured", slog.String("user_id", user.ID))
	default:
		return nil, err
	}
	return res, nil
}

// issueToken signs a session token for user. A missing signer or secret
// fails closed with ErrConfigurationMissing.
func (s *AuthService) issueToken(user domain.User) (string, error) {
	if s.Signer == nil {
		return "", ErrConfigurationMissing
	}
	claims := jwtx.NewSessionClaims(user.ID, user.Email, string(user.Role), user.PasswordVersion, s.now())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		if errors.Is(err, jwtx.ErrMissingSecret) {
			return "", ErrConfigurationMissing
		}
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// activateAndReload marks the account active and verified and returns the
// stored row, both inside one transaction.
func (s *AuthService) activateAndReload(ctx context.Context, userID string) (domain.User, error) {
	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().ActivateUser(ctx, userID, s.now()); err != nil {
			return err
		}
		var err error
		user, err = tx.Users().GetUserByID(ctx, userID)
		return err
	})
	return user, err
}

func tokenFailureReason(err error) string {
	if errors.Is(err, ErrConfigurationMissing) {
		return "signer_not_configured"
	}
	return "signing_failed"
}

func (s *AuthService) record(ctx context.Context, action domain.AuditAction, actorID, targetID, message string, metadata map[string]string) {
	if s.Audit == nil {
		return
	}
	s.Audit.Record(ctx, domain.AuditEntry{
		ID:        idx.New().String(),
		Action:    action,
		ActorID:   actorID,
		TargetID:  targetID,
		Entity:    domain.AuditEntityUser,
		EntityID:  targetID,
		Message:   message,
		Metadata:  metadata,
		Timestamp: s.now(),
	})
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) notifyTimeout() time.Duration {
	if s.NotifyTimeout > 0 {
		return s.NotifyTimeout
	}
	return DefaultNotifyTimeout
}

func (s *AuthService) resetCodeTTL() time.Duration {
	if s.ResetCodeTTL > 0 {
		return s.ResetCodeTTL
	}
	return DefaultResetCodeTTL
}
