package authsdk

import "time"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	// Error is a machine-readable error code (e.g. "invalid_credentials")
	Error string `json:"error"`

	// ErrorDescription is a human-readable explanation, omitted when the code
	// says it all.
	ErrorDescription string `json:"error_description,omitempty"`
}

// User is the public view of an account. It never carries the password
// hash or any pending code.
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	Status          string    `json:"status"`
	EmailVerified   bool      `json:"email_verified"`
	PasswordVersion int64     `json:"password_version"`
	StudentID       string    `json:"student_id,omitempty"`
	Department      string    `json:"department,omitempty"`
	Avatar          string    `json:"avatar,omitempty"`
	Organization    string    `json:"organization,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and Google sign-in.
type AuthResponse struct {
	Success bool   `json:"success"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

// RegisterRequest is the body of POST /v1/auth/register. Role may be
// omitted; anything other than "student" is refused.
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role,omitempty"`
	StudentID  string `json:"student_id,omitempty"`
	Department string `json:"department,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}

// RegisterResponse carries a null token when the account was created but
// the service could not sign a session for it.
type RegisterResponse struct {
	Success bool    `json:"success"`
	User    User    `json:"user"`
	Email   string  `json:"email"`
	Token   *string `json:"token"`
}

// VerifyEmailRequest is the body of POST /v1/auth/verify-email.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerifyEmailResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

// EmailRequest is the body of the endpoints that only take an email:
// resend-verification and forgot-password.
type EmailRequest struct {
	Email string `json:"email"`
}

// GoogleSignInRequest carries a Google ID token.
type GoogleSignInRequest struct {
	Credential string `json:"credential"`
}

// ResetPasswordRequest is the body of POST /v1/auth/reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

// SuccessResponse is returned by endpoints with nothing else to report.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// MeResponse describes the bearer of a session token.
type MeResponse struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the credential store connection status
	Database string `json:"database"`

	// Signer indicates whether session tokens can be issued
	Signer string `json:"signer"`

	// Google reports whether federated sign-in is configured. It does not
	// gate readiness.
	Google string `json:"google,omitempty"`
}
