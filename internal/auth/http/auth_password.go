package http

import (
	"net/http"

	"github.com/aussiebroadwan/campusauth/pkg/authsdk"
	"github.com/aussiebroadwan/campusauth/pkg/httpx"
)

// HandleForgotPassword godoc
//
//	@Summary		Request a password reset code
//	@Description	Always answers 200 so the endpoint cannot be used to probe for accounts.
//	@Description	When the email belongs to an account a 6 digit code is mailed to it.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.EmailRequest	true	"email"
//	@Success		200		{object}	authsdk.SuccessResponse	"success"
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request, missing_fields"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse	"server_error"
//	@Router			/v1/auth/forgot-password [post].
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.EmailRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, "forgot password", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.SuccessResponse{Success: true})
}

// HandleResetPassword godoc
//
//	@Summary		Set a new password
//	@Description	Replaces the password, clears any pending reset code and bumps the password version.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResetPasswordRequest	true	"email, new_password"
//	@Success		200		{object}	authsdk.SuccessResponse			"success"
//	@Failure		400		{object}	authsdk.ErrorResponse			"invalid_request, missing_fields"
//	@Failure		404		{object}	authsdk.ErrorResponse			"user_not_found"
//	@Failure		429		{object}	authsdk.ErrorResponse			"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse			"server_error"
//	@Router			/v1/auth/reset-password [post].
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		writeServiceError(w, r, "reset password", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.SuccessResponse{Success: true})
}
