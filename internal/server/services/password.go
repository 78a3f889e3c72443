// Package services contains the server-side business logic: credential
// lifecycle, the login/logout/recover/reset flows, and user management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jrafaels/test-fauth/internal/common"
	"github.com/jrafaels/test-fauth/internal/dbx"
	"github.com/jrafaels/test-fauth/internal/server/models"
	"github.com/jrafaels/test-fauth/internal/server/repositories/repomanager"
)

// bcryptCost keeps a single verify around the 100ms mark on current
// commodity hardware.
const bcryptCost = 12

// minPasswordLength is the strength policy: at least this many characters
// after trimming surrounding whitespace.
const minPasswordLength = 10

// controlSecretBytes is the number of random bytes behind a temporary
// control secret; hex encoding doubles it to 32 characters.
const controlSecretBytes = 16

// PasswordService manages the credential lifecycle: building user-chosen and
// temporary credentials, verifying secrets, and rotating credentials
// atomically.
type PasswordService struct {
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	temporaryValidity time.Duration
	now               func() time.Time
}

func NewPasswordService(db *sql.DB, m repomanager.RepositoryManager, temporaryValidity time.Duration) *PasswordService {
	return &PasswordService{
		db:                db,
		repomanager:       m,
		temporaryValidity: temporaryValidity,
		now:               time.Now,
	}
}

// NewChosen builds an active, open-ended credential from a password the user
// picked. The cleartext never leaves this function; only the bcrypt hash is
// kept. The credential is not persisted here.
func (s *PasswordService) NewChosen(cleartext, userID string) (*models.Credential, error) {
	raw := []byte(cleartext)
	hash, err := bcrypt.GenerateFromPassword(raw, bcryptCost)
	common.WipeByteArray(raw)
	if err != nil {
		return nil, common.Validation("Invalid password")
	}
	return &models.Credential{
		UserID:    userID,
		Secret:    string(hash),
		Kind:      models.CredentialUserChosen,
		StartDate: s.now(),
	}, nil
}

// NewTemporary builds a single-use control credential with a fixed validity
// window. The secret is random hex, stored verbatim so the reset flow can
// look it up by value. The credential is not persisted here.
func (s *PasswordService) NewTemporary(user *models.User) (*models.Credential, error) {
	secret, err := common.MakeRandHexString(controlSecretBytes)
	if err != nil {
		return nil, common.Internal("error generating control secret", err)
	}
	now := s.now()
	end := now.Add(s.temporaryValidity)
	return &models.Credential{
		UserID:    user.ID,
		Secret:    secret,
		Kind:      models.CredentialTemporary,
		StartDate: now,
		EndDate:   &end,
	}, nil
}

// FindActive returns the user's currently valid credential or
// common.ErrorNotFound.
func (s *PasswordService) FindActive(ctx context.Context, userID string) (*models.Credential, error) {
	return s.repomanager.Credentials(s.db).FindActive(ctx, userID, s.now())
}

// Rotate atomically retires the user's active credential (when one exists)
// and inserts a replacement: user-chosen when newCleartext is non-nil,
// temporary otherwise. When audit is non-nil it is written inside the same
// transaction. Either every write commits or none does.
//
// The transaction first locks the owning user row and only then re-reads the
// active credential, so two concurrent rotations for one user serialize: the
// second waits, sees the first's replacement as the active credential, and
// closes it. At most one credential per user stays active.
func (s *PasswordService) Rotate(ctx context.Context, user *models.User, newCleartext *string, audit *models.AuditLog) (*models.Credential, error) {
	var replacement *models.Credential
	var err error
	if newCleartext != nil {
		replacement, err = s.NewChosen(*newCleartext, user.ID)
	} else {
		replacement, err = s.NewTemporary(user)
	}
	if err != nil {
		return nil, err
	}

	txErr := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Lock(ctx, user.ID); err != nil {
			return err
		}

		repo := s.repomanager.Credentials(tx)
		active, err := repo.FindActive(ctx, user.ID, s.now())
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		if active != nil {
			if err := repo.Close(ctx, active.ID, s.now()); err != nil {
				return err
			}
		}

		if _, err := repo.Create(ctx, replacement); err != nil {
			return err
		}
		if audit != nil {
			if _, err := s.repomanager.AuditLogs(tx).Create(ctx, audit); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, common.Internal("error rotating credential", txErr)
	}
	return replacement, nil
}

// ValidateStrength enforces the password policy for user-supplied secrets.
// System-generated temporary values are never checked against it.
func (s *PasswordService) ValidateStrength(cleartext string) error {
	if len(strings.TrimSpace(cleartext)) < minPasswordLength {
		return common.WeakSecret()
	}
	return nil
}

// Compare verifies a cleartext secret against a stored bcrypt hash. A
// mismatch is a regular false result; only a malformed hash is an error.
func (s *PasswordService) Compare(cleartext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(cleartext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
