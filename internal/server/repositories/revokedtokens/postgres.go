package revokedtokens

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

func (r *PostgresRepository) Create(ctx context.Context, token *models.RevokedToken) error {
	query :=
		`INSERT INTO revoked_tokens (user_id, token_text, kind, end_date)
		 VALUES ($1, $2, $3, $4)
		 `

	if _, err := r.db.ExecContext(ctx, query,
		token.UserID, token.Text, string(token.Kind), token.EndDate); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, text string) (*models.RevokedToken, error) {
	query :=
		`SELECT id, user_id, token_text, kind, end_date, created_at FROM revoked_tokens
		 WHERE token_text = $1
		 `

	token := &models.RevokedToken{}
	var kind string
	err := r.db.QueryRowContext(ctx, query, text).
		Scan(&token.ID, &token.UserID, &token.Text, &kind, &token.EndDate, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	token.Kind = models.TokenKind(kind)
	return token, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query :=
		`DELETE FROM revoked_tokens
		 WHERE end_date < $1
		 `

	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
