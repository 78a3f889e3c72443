// Package models contains the persistent entities of the authentication
// service: users, credentials, revoked tokens, and audit-log rows.
package models

import (
	"strings"
	"time"
)

type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Country   string
	City      string
	BirthDate *time.Time
	CreatedAt time.Time
	DeletedAt *time.Time
}

// FullName is what notification messages address the user by.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
