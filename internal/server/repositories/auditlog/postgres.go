package auditlog

import (
	"context"
	"fmt"

	"github.com/jrafaels/test-fauth/internal/dbx"
	"github.com/jrafaels/test-fauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.AuditLog) (*models.AuditLog, error) {
	query :=
		`INSERT INTO audit_log (user_id, type, ip, description, time)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		entry.UserID, string(entry.Type), entry.IP, entry.Description, entry.Time).
		Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}
