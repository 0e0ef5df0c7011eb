package authsdk

import (
	"context"
	"net/http"
)

// Login exchanges an email and password for a session.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/login", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return newSession(c, out.Token, out.User), nil
}

// Register creates a student account. The response token may be nil when
// the account was created but no session could be signed.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/register", req)
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out, nil
}

// SessionFromRegistration returns a session for a registration that came
// back with a token, or nil otherwise.
func (c *SDKClient) SessionFromRegistration(r *RegisterResponse) *Session {
	if r == nil || r.Token == nil || *r.Token == "" {
		return nil
	}
	return newSession(c, *r.Token, r.User)
}

// VerifyEmail activates an account. The code is accepted but not checked.
func (c *SDKClient) VerifyEmail(ctx context.Context, email, code string) (*User, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/verify-email", VerifyEmailRequest{Email: email, Code: code})
	if err != nil {
		return nil, err
	}

	var out VerifyEmailResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.User, nil
}

// ResendVerification activates the account if it still needs it.
func (c *SDKClient) ResendVerification(ctx context.Context, email string) error {
	return c.postSuccess(ctx, "/v1/auth/resend-verification", EmailRequest{Email: email})
}

// SignInWithGoogle exchanges a Google ID token for a session, creating a
// student account on first use.
func (c *SDKClient) SignInWithGoogle(ctx context.Context, credential string) (*Session, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/google", GoogleSignInRequest{Credential: credential})
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return newSession(c, out.Token, out.User), nil
}

// ForgotPassword asks for a reset code. It succeeds whether or not the
// email belongs to an account.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) error {
	return c.postSuccess(ctx, "/v1/auth/forgot-password", EmailRequest{Email: email})
}

// ResetPassword sets a new password for the account.
func (c *SDKClient) ResetPassword(ctx context.Context, email, newPassword string) error {
	return c.postSuccess(ctx, "/v1/auth/reset-password", ResetPasswordRequest{
		Email:       email,
		NewPassword: newPassword,
	})
}

func (c *SDKClient) postSuccess(ctx context.Context, path string, payload any) error {
	resp, err := c.postJSON(ctx, path, payload)
	if err != nil {
		return err
	}

	var out SuccessResponse
	return decodeJSON(resp, &out, http.StatusOK)
}
