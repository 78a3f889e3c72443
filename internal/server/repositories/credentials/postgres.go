package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jrafaels/test-fauth/internal/common"
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

func (r *PostgresRepository) Create(ctx context.Context, credential *models.Credential) (*models.Credential, error) {
	query :=
		`INSERT INTO credentials (user_id, secret, kind, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		credential.UserID, credential.Secret, string(credential.Kind),
		credential.StartDate, credential.EndDate).Scan(&credential.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return credential, nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, userID string, at time.Time) (*models.Credential, error) {
	query :=
		`SELECT id, user_id, secret, kind, start_date, end_date FROM credentials
		 WHERE user_id = $1 AND (end_date IS NULL OR end_date > $2)
		 `

	credential, err := scanCredential(r.db.QueryRowContext(ctx, query, userID, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return credential, nil
}

func (r *PostgresRepository) FindBySecret(ctx context.Context, secret string) (*models.Credential, error) {
	query :=
		`SELECT id, user_id, secret, kind, start_date, end_date FROM credentials
		 WHERE secret = $1
		 `

	credential, err := scanCredential(r.db.QueryRowContext(ctx, query, secret))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return credential, nil
}

func (r *PostgresRepository) Close(ctx context.Context, id string, at time.Time) error {
	query :=
		`UPDATE credentials SET end_date = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func scanCredential(row *sql.Row) (*models.Credential, error) {
	c := &models.Credential{}
	var kind string
	if err := row.Scan(&c.ID, &c.UserID, &c.Secret, &kind, &c.StartDate, &c.EndDate); err != nil {
		return nil, err
	}
	c.Kind = models.CredentialKind(kind)
	return c, nil
}
