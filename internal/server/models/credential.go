package models

import "time"

// CredentialKind distinguishes how a credential's secret was produced.
type CredentialKind string

const (
	// CredentialUserChosen is a bcrypt hash of a password picked by the user.
	CredentialUserChosen CredentialKind = "U"
	// CredentialTemporary is a single-use control secret issued during
	// password recovery. Stored verbatim so reset can look it up by value.
	CredentialTemporary CredentialKind = "T"
	// CredentialSystemGenerated is reserved for machine-issued passwords.
	CredentialSystemGenerated CredentialKind = "G"
)

// Credential is one password version bound to a user. A credential is active
// while EndDate is nil or in the future; the store guarantees at most one
// active credential per user. Rotation closes the old row by setting EndDate
// and inserts a fresh row in the same transaction.
type Credential struct {
	ID        string
	UserID    string
	Secret    string
	Kind      CredentialKind
	StartDate time.Time
	EndDate   *time.Time
}

// ActiveAt reports whether the credential is valid at t.
func (c *Credential) ActiveAt(t time.Time) bool {
	return c.EndDate == nil || c.EndDate.After(t)
}
