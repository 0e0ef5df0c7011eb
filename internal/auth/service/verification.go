package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/aussiebroadwan/campusauth/internal/auth/store"
	"github.com/aussiebroadwan/campusauth/pkg/slogx"
)

// VerifyEmail activates the account registered under email. The code is
// accepted for compatibility with older clients and is not checked.
func (s *AuthService) VerifyEmail(ctx context.Context, email, _ string) (domain.PublicUser, error) {
	user, err := s.findForActivation(ctx, email)
	if err != nil {
		return domain.PublicUser{}, err
	}

	user, err = s.activate(ctx, user, "email verified")
	if err != nil {
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}

// ResendVerification activates the account if it is not already active.
// There is no message to resend any more; an active account is a no-op.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.findForActivation(ctx, email)
	if err != nil {
		return err
	}
	if user.Activated() {
		return nil
	}

	_, err = s.activate(ctx, user, "account activated via resend verification")
	return err
}

func (s *AuthService) findForActivation(ctx context.Context, email string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.User{}, ErrInvalidEmail
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidEmail
		}
		return domain.User{}, err
	}
	return user, nil
}

// activate sets the account active and verified, clears the legacy
// verification fields and returns the stored record.
func (s *AuthService) activate(ctx context.Context, user domain.User, message string) (domain.User, error) {
	wasActivated := user.Activated()

	updated, err := s.activateAndReload(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidEmail
		}
		return domain.User{}, err
	}

	if !wasActivated {
		s.record(ctx, domain.AuditAccountActivated, user.ID, user.ID, message, nil)
		slogx.FromContext(ctx).Info("account activated", slog.String("user_id", user.ID))
	}
	return updated, nil
}
