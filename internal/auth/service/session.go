package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/aussiebroadwan/campusauth/internal/auth/store"
)

// CurrentUser loads the account a verified session token was issued for.
// Tokens are not revoked, so a token for a deactivated account still
// resolves; a deleted account is ErrUserNotFound.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (domain.PublicUser, error) {
	if userID == "" {
		return domain.PublicUser{}, ErrUserNotFound
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PublicUser{}, ErrUserNotFound
		}
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}
