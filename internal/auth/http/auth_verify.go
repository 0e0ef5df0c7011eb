package http

import (
	"net/http"

	"github.com/aussiebroadwan/campusauth/pkg/authsdk"
	"github.com/aussiebroadwan/campusauth/pkg/httpx"
)

// HandleVerifyEmail godoc
//
//	@Summary		Activate an account (legacy)
//	@Description	Marks the account active and verified. Kept for older clients; the code is not checked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyEmailRequest	true	"email, code"
//	@Success		200		{object}	authsdk.VerifyEmailResponse	"success, user"
//	@Failure		400		{object}	authsdk.ErrorResponse		"invalid_request, invalid_email"
//	@Failure		429		{object}	authsdk.ErrorResponse		"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse		"server_error"
//	@Router			/v1/auth/verify-email [post].
func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyEmailRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, err := h.AuthService.VerifyEmail(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, "verify email", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyEmailResponse{
		Success: true,
		User:    toSDKUser(user),
	})
}

// HandleResendVerification godoc
//
//	@Summary		Resend verification (legacy)
//	@Description	No message is sent. The account is activated if it is not already.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.EmailRequest	true	"email"
//	@Success		200		{object}	authsdk.SuccessResponse	"success"
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request, invalid_email"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/v1/auth/resend-verification [post].
func (h *AuthHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req authsdk.EmailRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.ResendVerification(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, "resend verification", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.SuccessResponse{Success: true})
}
