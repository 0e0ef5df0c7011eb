package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/campusauth/internal/auth/service"
	"github.com/aussiebroadwan/campusauth/pkg/authsdk"
	"github.com/aussiebroadwan/campusauth/pkg/httpx"
)

type MeHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Current user
//	@Description	Returns the account the bearer session token was issued for.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MeResponse		"user, expires_at"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid_token"
//	@Failure		429	{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500	{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/v1/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok || claims.Subject == "" {
		writeInvalidToken(w)
		return
	}

	user, err := h.AuthService.CurrentUser(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeInvalidToken(w)
			return
		}
		writeServiceError(w, r, "load current user", err)
		return
	}

	resp := authsdk.MeResponse{User: toSDKUser(user)}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.UTC()
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
