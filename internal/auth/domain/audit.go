package domain

import "time"

type AuditAction string

const (
	AuditLoginSuccess                AuditAction = "LOGIN_SUCCESS"
	AuditLoginFailure                AuditAction = "LOGIN_FAILURE"
	AuditUserRegistered              AuditAction = "USER_REGISTERED"
	AuditAccountActivated            AuditAction = "ACCOUNT_ACTIVATED"
	AuditPasswordResetRequestSuccess AuditAction = "PASSWORD_RESET_REQUEST_SUCCESS"
	AuditPasswordResetRequestFailure AuditAction = "PASSWORD_RESET_REQUEST_FAILURE"
	AuditPasswordResetSuccess        AuditAction = "PASSWORD_RESET_SUCCESS"
)

// AuditEntityUser is the entity name used for every entry written here.
const AuditEntityUser = "User"

// AuditEntry is an append-only record of a security-relevant event. ActorID
// is empty when no account could be attributed (e.g. unknown email).
type AuditEntry struct {
	ID        string
	Action    AuditAction
	ActorID   string
	TargetID  string
	Entity    string
	EntityID  string
	Message   string
	Metadata  map[string]string
	Timestamp time.Time
}
