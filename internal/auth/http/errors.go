package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/aussiebroadwan/campusauth/internal/auth/service"
	"github.com/aussiebroadwan/campusauth/pkg/authsdk"
	"github.com/aussiebroadwan/campusauth/pkg/httpx"
	"github.com/aussiebroadwan/campusauth/pkg/slogx"
)

// serviceErrors maps AuthService errors to responses. Order matters:
// ErrProviderNotConfigured also matches ErrConfigurationMissing.
var serviceErrors = []struct {
	err  error
	resp *authsdk.APIError
}{
	{httpx.ErrBadRequest, authsdk.ErrInvalidRequest},
	{service.ErrMissingFields, authsdk.ErrMissingFields},
	{service.ErrInvalidCredentials, authsdk.ErrInvalidCredentials},
	{service.ErrAccountInactive, authsdk.ErrAccountInactive},
	{service.ErrRoleNotAllowed, authsdk.ErrRoleNotAllowed},
	{service.ErrInvalidEmail, authsdk.ErrInvalidEmail},
	{service.ErrUserNotFound, authsdk.ErrUserNotFound},
	{service.ErrEmailAlreadyRegistered, authsdk.ErrEmailAlreadyRegistered},
	{service.ErrInvalidExternalCredential, authsdk.ErrInvalidExternalCredential},
	{service.ErrUnverifiableAccount, authsdk.ErrUnverifiableAccount},
	{service.ErrProviderNotConfigured, authsdk.ErrProviderNotConfigured},
	{service.ErrConfigurationMissing, authsdk.ErrConfigurationMissing},
	{context.DeadlineExceeded, authsdk.ErrTimeout},
}

// writeServiceError writes the response for err. Anything unmapped is
// logged and reported as server_error without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			if m.resp.StatusCode >= http.StatusInternalServerError {
				slogx.FromContext(r.Context()).Error(op+" failed", "err", err)
			}
			m.resp.WriteError(w)
			return
		}
	}

	slogx.FromContext(r.Context()).Error(op+" failed", "err", err)
	authsdk.ErrServerError.WriteError(w)
}

func writeInvalidToken(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	authsdk.ErrInvalidToken.WriteError(w)
}

func toSDKUser(u domain.PublicUser) authsdk.User {
	return authsdk.User{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            string(u.Role),
		Status:          string(u.Status),
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
