// Package users declares the user directory contract and its PostgreSQL
// adapter. Lookups never return soft-deleted users.
package users

import (
	"context"

	"github.com/jrafaels/test-fauth/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)

	// Lock takes a row lock on the user until the surrounding transaction
	// ends. Credential rotations lock the owner first so two rotations for
	// one user cannot interleave.
	Lock(ctx context.Context, id string) error

	// Update persists the mutable profile fields of user.
	Update(ctx context.Context, user *models.User) error

	// Delete soft-deletes the user by setting deleted_at. The caller is
	// expected to have anonymized the profile fields first, in the same
	// transaction.
	Delete(ctx context.Context, id string) error
}
