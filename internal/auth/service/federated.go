package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/aussiebroadwan/campusauth/internal/auth/store"
	"github.com/aussiebroadwan/campusauth/pkg/cryptox"
	"github.com/aussiebroadwan/campusauth/pkg/idx"
	"github.com/aussiebroadwan/campusauth/pkg/slogx"
)

// federatedPasswordLength is the length of the random password given to
// accounts created through federated sign-in. It is hashed immediately and
// never disclosed, so the account can only be entered through the provider
// or a password reset.
const federatedPasswordLength = 32

// SignInWithGoogle verifies a Google ID token and signs the matching account
// in, creating an active student account on first use.
func (s *AuthService) SignInWithGoogle(ctx context.Context, credential string) (*AuthResult, error) {
	l := slogx.FromContext(ctx)

	if s.Identity == nil {
		return nil, ErrProviderNotConfigured
	}
	if strings.TrimSpace(credential) == "" {
		return nil, ErrMissingFields
	}

	ident, err := s.Identity.Verify(ctx, credential)
	if err != nil {
		if errors.Is(err, ErrConfigurationMissing) {
			return nil, ErrProviderNotConfigured
		}
		l.Info("external credential rejected", slog.Any("error", err))
		return nil, ErrInvalidExternalCredential
	}

	email := domain.NormalizeEmail(ident.Email)
	if email == "" || !ident.EmailVerified {
		return nil, ErrUnverifiableAccount
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		user, err = s.refreshFederatedUser(ctx, user)
	case errors.Is(err, store.ErrNotFound):
		user, err = s.createFederatedUser(ctx, email, ident)
	}
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.record(ctx, domain.AuditLoginSuccess, user.ID, user.ID, "login succeeded", map[string]string{
		"method":   "google",
		"provider": ident.Provider,
	})
	return &AuthResult{User: user.Public(), Token: token}, nil
}

func (s *AuthService) refreshFederatedUser(ctx context.Context, user domain.User) (domain.User, error) {
	if user.Activated() && user.EmailVerificationCodeHash == nil && user.EmailVerificationCodeExpiresAt == nil {
		return user, nil
	}
	return s.activate(ctx, user, "account activated via federated sign-in")
}

func (s *AuthService) createFederatedUser(ctx context.Context, email string, ident domain.ExternalIdentity) (domain.User, error) {
	l := slogx.FromContext(ctx)

	password, err := cryptox.GeneratePassword(federatedPasswordLength)
	if err != nil {
		return domain.User{}, err
	}
	hash, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		return domain.User{}, err
	}

	now := s.now()
	user := domain.User{
		ID:            idx.NewAt(now).String(),
		Name:          strings.TrimSpace(ident.Name),
		Email:         email,
		PasswordHash:  hash,
		Role:          domain.RoleStudent,
		Status:        domain.StatusActive,
		EmailVerified: true,
		Avatar:        ident.Picture,
		Organization:  ident.OrgHint,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.Store.Users().CreateUser(ctx, user)
	if errors.Is(err, store.ErrAlreadyExists) {
		// Another request signed the same identity in first; use its account.
		l.Info("federated account created concurrently, reusing it")
		existing, err := s.Store.Users().GetUserByEmail(ctx, email)
		if err != nil {
			return domain.User{}, err
		}
		return s.refreshFederatedUser(ctx, existing)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("create federated user: %w", err)
	}

	s.record(ctx, domain.AuditUserRegistered, user.ID, user.ID, "account registered via federated sign-in", map[string]string{
		"provider": ident.Provider,
	})
	l.Info("federated account created", slog.String("user_id", user.ID), slog.String("provider", ident.Provider))

	return s.Store.Users().GetUserByID(ctx, user.ID)
}
