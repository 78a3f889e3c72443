// Package auditlog persists audit rows describing security-relevant
// operations. Writes happen inside the transaction of the change they record.
package auditlog

import (
	"context"

	"github.com/jrafaels/test-fauth/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.AuditLog) (*models.AuditLog, error)
}
