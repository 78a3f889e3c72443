package models

import "time"

// AuditLogType encodes the operation an audit row describes.
type AuditLogType string

const (
	AuditRegisterAttempt       AuditLogType = "RA"
	AuditRegisterAttemptFailed AuditLogType = "RAF"
	AuditLoginAttempt          AuditLogType = "LA"
	AuditLoginAttemptFailed    AuditLogType = "LAF"
	AuditRecoverPasswordAsk    AuditLogType = "RPA"
	AuditRecoverPasswordSet    AuditLogType = "RPS"
)

// AuditLog is written in the same transaction as the user or credential
// change it records.
type AuditLog struct {
	ID          string
	UserID      string
	Type        AuditLogType
	IP          string
	Description string
	Time        time.Time
}
