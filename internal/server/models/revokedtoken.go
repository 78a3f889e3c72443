package models

import "time"

// TokenKind selects which signing key pair a token belongs to.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// RevokedToken marks a signed token as no longer honored, regardless of its
// signature or expiry. Rows are written on logout and never mutated; they can
// be garbage-collected once EndDate has passed.
type RevokedToken struct {
	ID        string
	UserID    string
	Text      string
	Kind      TokenKind
	EndDate   time.Time
	CreatedAt time.Time
}
