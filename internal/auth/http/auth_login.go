package http

import (
	"net/http"

	"github.com/aussiebroadwan/campusauth/internal/auth/service"
	"github.com/aussiebroadwan/campusauth/pkg/authsdk"
	"github.com/aussiebroadwan/campusauth/pkg/httpx"
)

// AuthHandler serves the public /v1/auth endpoints. Every request and
// response body is JSON.
type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleLogin godoc
//
//	@Summary		Password login
//	@Description	Checks an email and password and returns a 7 day session token.
//	@Description	Unknown emails and wrong passwords return the same error. Pending student
//	@Description	accounts are activated on their first successful login.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"email, password"
//	@Success		200		{object}	authsdk.AuthResponse	"success, user, token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request, missing_fields"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_credentials"
//	@Failure		403		{object}	authsdk.ErrorResponse	"account_inactive"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse	"configuration_missing, server_error"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, "login", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthResponse{
		Success: true,
		User:    toSDKUser(res.User),
		Token:   res.Token,
	})
}

// HandleRegister godoc
//
//	@Summary		Student self-registration
//	@Description	Creates an active, verified student account and signs it in.
//	@Description	Only the student role may self-register. The token is null when the
//	@Description	service has no signing secret; the account is still created.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"name, email, password and optional profile fields"
//	@Success		201		{object}	authsdk.RegisterResponse	"success, user, email, token"
//	@Failure		400		{object}	authsdk.ErrorResponse		"invalid_request, missing_fields"
//	@Failure		403		{object}	authsdk.ErrorResponse		"role_not_allowed"
//	@Failure		409		{object}	authsdk.ErrorResponse		"email_already_registered"
//	@Failure		429		{object}	authsdk.ErrorResponse		"rate_limit_exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse		"server_error"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		StudentID:  req.StudentID,
		Department: req.Department,
		Avatar:     req.Avatar,
	})
	if err != nil {
		writeServiceError(w, r, "register", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		Success: true,
		User:    toSDKUser(res.User),
		Email:   res.Email,
		Token:   res.Token,
	})
}
