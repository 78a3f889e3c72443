// Package revokedtokens implements the revocation ledger: tokens recorded
// here must not be honored even when their signature and expiry still verify.
// Two adapters exist — PostgreSQL (default) and Redis, where entry TTLs make
// expired revocations garbage-collect themselves.
package revokedtokens

import (
	"context"
	"time"

	"github.com/jrafaels/test-fauth/internal/server/models"
)

type Repository interface {
	// Create records a token as revoked. Entries are never mutated.
	Create(ctx context.Context, token *models.RevokedToken) error

	// Find looks a revoked token up by its exact text and returns
	// common.ErrorNotFound when the token was never revoked.
	Find(ctx context.Context, text string) (*models.RevokedToken, error)

	// DeleteExpired removes entries whose end_date is before the given time.
	// Purely a storage-size optimization; a revoked token that is also
	// expired fails validation regardless.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
