package repomanager

import (
	"context"
	"database/sql"

	"github.com/jrafaels/test-fauth/internal/dbx"
	"github.com/jrafaels/test-fauth/internal/server/repositories/auditlog"
	"github.com/jrafaels/test-fauth/internal/server/repositories/credentials"
	"github.com/jrafaels/test-fauth/internal/server/repositories/revokedtokens"
	"github.com/jrafaels/test-fauth/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so the
// same repository code runs against *sql.DB for single statements and against
// *sql.Tx inside dbx.WithTx blocks.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
	AuditLogs(db dbx.DBTX) auditlog.Repository
}
