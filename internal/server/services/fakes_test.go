package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jrafaels/test-fauth/internal/common"
	"github.com/jrafaels/test-fauth/internal/dbx"
	"github.com/jrafaels/test-fauth/internal/logging"
	"github.com/jrafaels/test-fauth/internal/server/models"
	"github.com/jrafaels/test-fauth/internal/server/repositories/auditlog"
	"github.com/jrafaels/test-fauth/internal/server/repositories/credentials"
	"github.com/jrafaels/test-fauth/internal/server/repositories/revokedtokens"
	"github.com/jrafaels/test-fauth/internal/server/repositories/users"
)

// The services are tested against in-memory fakes of the repository layer.
// Transactions still run through a sqlmock database so commit/rollback
// behavior is exercised for real.

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logging.Logger                  { return l }

type fakeUserRepo struct {
	users     []*models.User
	seq       int
	createErr error
	findErr   error
	lockErr   error
	updateErr error
	deleteErr error
	deleted   []string
	locked    []string
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	u := *user
	u.ID = fmt.Sprintf("u-%d", f.seq)
	u.CreatedAt = time.Now()
	f.users = append(f.users, &u)
	return &u, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.ID == id && u.DeletedAt == nil {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.Email == email && u.DeletedAt == nil {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUserRepo) FindAll(ctx context.Context) ([]*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*models.User
	for _, u := range f.users {
		if u.DeletedAt == nil {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Lock(ctx context.Context, id string) error {
	if f.lockErr != nil {
		return f.lockErr
	}
	for _, u := range f.users {
		if u.ID == id {
			f.locked = append(f.locked, id)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, u := range f.users {
		if u.ID == user.ID {
			c := *user
			c.DeletedAt = u.DeletedAt
			f.users[i] = &c
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for _, u := range f.users {
		if u.ID == id && u.DeletedAt == nil {
			now := time.Now()
			u.DeletedAt = &now
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeCredentialRepo struct {
	credentials []*models.Credential
	seq         int
	createErr   error
	closeErr    error
}

func (f *fakeCredentialRepo) Create(ctx context.Context, credential *models.Credential) (*models.Credential, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	c := *credential
	c.ID = fmt.Sprintf("c-%d", f.seq)
	f.credentials = append(f.credentials, &c)
	return &c, nil
}

func (f *fakeCredentialRepo) FindActive(ctx context.Context, userID string, at time.Time) (*models.Credential, error) {
	for _, c := range f.credentials {
		if c.UserID == userID && c.ActiveAt(at) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeCredentialRepo) FindBySecret(ctx context.Context, secret string) (*models.Credential, error) {
	for _, c := range f.credentials {
		if c.Secret == secret {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeCredentialRepo) Close(ctx context.Context, id string, at time.Time) error {
	if f.closeErr != nil {
		return f.closeErr
	}
	for _, c := range f.credentials {
		if c.ID == id {
			end := at
			c.EndDate = &end
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeAuditRepo struct {
	entries   []*models.AuditLog
	createErr error
}

func (f *fakeAuditRepo) Create(ctx context.Context, entry *models.AuditLog) (*models.AuditLog, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	e := *entry
	e.ID = fmt.Sprintf("a-%d", len(f.entries)+1)
	f.entries = append(f.entries, &e)
	return &e, nil
}

type fakeLedgerRepo struct {
	entries map[string]*models.RevokedToken
}

func (f *fakeLedgerRepo) Create(ctx context.Context, token *models.RevokedToken) error {
	if f.entries == nil {
		f.entries = map[string]*models.RevokedToken{}
	}
	f.entries[token.Text] = token
	return nil
}

func (f *fakeLedgerRepo) Find(ctx context.Context, text string) (*models.RevokedToken, error) {
	if entry, ok := f.entries[text]; ok {
		return entry, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeLedgerRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

// fakeManager vends the in-memory repos regardless of the handle it is given.
type fakeManager struct {
	users       *fakeUserRepo
	credentials *fakeCredentialRepo
	audit       *fakeAuditRepo
	ledger      *fakeLedgerRepo
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		users:       &fakeUserRepo{},
		credentials: &fakeCredentialRepo{},
		audit:       &fakeAuditRepo{},
		ledger:      &fakeLedgerRepo{},
	}
}

func (m *fakeManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeManager) Users(db dbx.DBTX) users.Repository { return m.users }

func (m *fakeManager) Credentials(db dbx.DBTX) credentials.Repository { return m.credentials }

func (m *fakeManager) RevokedTokens(db dbx.DBTX) revokedtokens.Repository { return m.ledger }

func (m *fakeManager) AuditLogs(db dbx.DBTX) auditlog.Repository { return m.audit }

// newMockDB returns a sqlmock-backed *sql.DB for driving WithTx. Tests that
// expect a successful transaction queue Begin+Commit; failure paths queue
// Begin+Rollback.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}
