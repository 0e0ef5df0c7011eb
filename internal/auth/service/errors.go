package service

import (
	"errors"
	"fmt"
)

// Errors returned by AuthService. The HTTP layer is the only place these are
// turned into status codes.
var (
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrAccountInactive      = errors.New("account_inactive")
	ErrRoleNotAllowed       = errors.New("role_not_allowed")
	ErrInvalidEmail         = errors.New("invalid_email")
	ErrUserNotFound         = errors.New("user_not_found")
	ErrConfigurationMissing = errors.New("configuration_missing")
	ErrMissingFields        = errors.New("missing_fields")

	// ErrProviderNotConfigured is a ConfigurationMissing for the federated
	// provider, so errors.Is matches both.
	ErrProviderNotConfigured = fmt.Errorf("provider_not_configured: %w", ErrConfigurationMissing)

	ErrInvalidExternalCredential = errors.New("invalid_external_credential")
	ErrUnverifiableAccount       = errors.New("unverifiable_account")
	ErrEmailAlreadyRegistered    = errors.New("email_already_registered")
)
