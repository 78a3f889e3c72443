// Package credentials declares the credential store contract and its
// PostgreSQL adapter. The store guarantees at most one active credential per
// user: a credential is active while end_date is NULL or in the future.
package credentials

import (
	"context"
	"time"

	"github.com/jrafaels/test-fauth/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, credential *models.Credential) (*models.Credential, error)

	// FindActive returns the credential valid for the user at time at,
	// or common.ErrorNotFound when the user has no usable credential.
	FindActive(ctx context.Context, userID string, at time.Time) (*models.Credential, error)

	// FindBySecret looks a credential up by its literal secret value. Only
	// temporary control secrets are stored verbatim, so this is the reset
	// flow's entry point.
	FindBySecret(ctx context.Context, secret string) (*models.Credential, error)

	// Close retires a credential by setting its end_date to at. Closed
	// credentials are immutable; nothing ever reopens them.
	Close(ctx context.Context, id string, at time.Time) error
}
