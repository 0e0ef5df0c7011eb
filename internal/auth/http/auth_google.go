package http

import (
	"net/http"

	"github.com/aussiebroadwan/campusauth/pkg/authsdk"
	"github.com/aussiebroadwan/campusauth/pkg/httpx"
)

// HandleGoogle godoc
//
//	@Summary		Google sign-in
//	@Description	Exchanges a Google ID token for a session token. A student account is
//	@Description	created the first time a verified Google email signs in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.GoogleSignInRequest	true	"credential"
//	@Success		200		{object}	authsdk.AuthResponse		"success, user, token"
//	@Failure		400		{object}	authsdk.ErrorResponse		"invalid_request, missing_fields, unverifiable_account"
//	@Failure		401		{object}	authsdk.ErrorResponse		"invalid_external_credential"
//	@Failure		403		{object}	authsdk.ErrorResponse		"account_inactive"
//	@Failure		429		{object}	authsdk.ErrorResponse		"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse		"configuration_missing, server_error"
//	@Failure		503		{object}	authsdk.ErrorResponse		"provider_not_configured"
//	@Router			/v1/auth/google [post].
func (h *AuthHandler) HandleGoogle(w http.ResponseWriter, r *http.Request) {
	var req authsdk.GoogleSignInRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.AuthService.SignInWithGoogle(r.Context(), req.Credential)
	if err != nil {
		writeServiceError(w, r, "google sign-in", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthResponse{
		Success: true,
		User:    toSDKUser(res.User),
		Token:   res.Token,
	})
}
