package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/campusauth/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidRequest            = "invalid_request"
	ErrorCodeMissingFields             = "missing_fields"
	ErrorCodeInvalidCredentials        = "invalid_credentials"
	ErrorCodeAccountInactive           = "account_inactive"
	ErrorCodeRoleNotAllowed            = "role_not_allowed"
	ErrorCodeInvalidEmail              = "invalid_email"
	ErrorCodeUserNotFound              = "user_not_found"
	ErrorCodeEmailAlreadyRegistered    = "email_already_registered"
	ErrorCodeInvalidExternalCredential = "invalid_external_credential"
	ErrorCodeUnverifiableAccount       = "unverifiable_account"
	ErrorCodeProviderNotConfigured     = "provider_not_configured"
	ErrorCodeConfigurationMissing      = "configuration_missing"
	ErrorCodeInvalidToken              = "invalid_token"
	ErrorCodeRateLimited               = "rate_limit_exceeded"
	ErrorCodeTimeout                   = "timeout"
	ErrorCodeServerError               = "server_error"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the typed form of an ErrorResponse. The server writes it and
// the SDK client returns it, so callers can errors.As on either side.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g. "invalid_credentials")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on the error code, so a decoded client error compares equal to
// the predefined value with the same code.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrInvalidRequest is returned when the body is not a single JSON object.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request body is malformed",
	}

	ErrMissingFields = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeMissingFields,
		Description: "required fields are missing",
	}

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. The two are indistinguishable on purpose.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid email or password",
	}

	ErrAccountInactive = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccountInactive,
		Description: "account is not active",
	}

	ErrRoleNotAllowed = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeRoleNotAllowed,
		Description: "only student accounts can self-register",
	}

	ErrInvalidEmail = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidEmail,
		Description: "no account for this email",
	}

	ErrUserNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeUserNotFound,
		Description: "user not found",
	}

	ErrEmailAlreadyRegistered = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeEmailAlreadyRegistered,
		Description: "an account with this email already exists",
	}

	ErrInvalidExternalCredential = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidExternalCredential,
		Description: "the identity provider credential could not be verified",
	}

	ErrUnverifiableAccount = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeUnverifiableAccount,
		Description: "the identity provider did not return a verified email",
	}

	ErrProviderNotConfigured = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        ErrorCodeProviderNotConfigured,
		Description: "this sign-in method is not configured",
	}

	ErrConfigurationMissing = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeConfigurationMissing,
		Description: "the service is missing required configuration",
	}

	// ErrInvalidToken is returned when the bearer token is missing, invalid or expired.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the session token is missing, invalid or expired",
	}

	ErrTimeout = &APIError{
		StatusCode:  http.StatusGatewayTimeout,
		Code:        ErrorCodeTimeout,
		Description: "the request took too long",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewAPIError creates an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError. Bodies that
// are not an ErrorResponse fall back to a server_error built from the status.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
