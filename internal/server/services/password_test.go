package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jrafaels/test-fauth/internal/common"
	"github.com/jrafaels/test-fauth/internal/server/models"
)

func TestNewChosen(t *testing.T) {
	t.Parallel()

	s := NewPasswordService(nil, newFakeManager(), 60*time.Minute)
	cred, err := s.NewChosen("correct horse battery", "u-1")
	if err != nil {
		t.Fatalf("NewChosen error: %v", err)
	}
	if cred.Kind != models.CredentialUserChosen {
		t.Fatalf("expected user-chosen kind, got %s", cred.Kind)
	}
	if cred.EndDate != nil {
		t.Fatalf("user-chosen credential must be open ended")
	}
	if cred.Secret == "correct horse battery" {
		t.Fatalf("cleartext must never be stored")
	}

	match, err := s.Compare("correct horse battery", cred.Secret)
	if err != nil || !match {
		t.Fatalf("hash must verify against its own cleartext: match=%v err=%v", match, err)
	}
}

func TestNewTemporary(t *testing.T) {
	t.Parallel()

	s := NewPasswordService(nil, newFakeManager(), 60*time.Minute)
	user := &models.User{ID: "u-1"}
	cred, err := s.NewTemporary(user)
	if err != nil {
		t.Fatalf("NewTemporary error: %v", err)
	}
	if cred.Kind != models.CredentialTemporary {
		t.Fatalf("expected temporary kind, got %s", cred.Kind)
	}
	if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(cred.Secret) {
		t.Fatalf("control secret must be 32 hex chars, got %q", cred.Secret)
	}
	if cred.EndDate == nil {
		t.Fatalf("temporary credential must carry an end date")
	}
	if got := cred.EndDate.Sub(cred.StartDate); got != 60*time.Minute {
		t.Fatalf("validity window must match configuration, got %v", got)
	}
}

func TestNewTemporary_SecretsAreUnique(t *testing.T) {
	t.Parallel()

	s := NewPasswordService(nil, newFakeManager(), 60*time.Minute)
	seen := map[string]bool{}
	for i := 0; i < 16; i++ {
		cred, err := s.NewTemporary(&models.User{ID: "u-1"})
		if err != nil {
			t.Fatalf("NewTemporary error: %v", err)
		}
		if seen[cred.Secret] {
			t.Fatalf("duplicate control secret %q", cred.Secret)
		}
		seen[cred.Secret] = true
	}
}

func TestValidateStrength(t *testing.T) {
	t.Parallel()

	s := NewPasswordService(nil, newFakeManager(), 60*time.Minute)

	tests := []struct {
		name     string
		password string
		wantWeak bool
	}{
		{"long enough", "abcdefghij", false},
		{"too short", "abcdefghi", true},
		{"whitespace does not count", "   abcd    ", true},
		{"empty", "", true},
		{"well above minimum", "a much longer passphrase", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateStrength(tt.password)
			if tt.wantWeak && !errors.Is(err, common.ErrWeakSecret) {
				t.Fatalf("expected weak_secret, got %v", err)
			}
			if !tt.wantWeak && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCompare_Mismatch(t *testing.T) {
	t.Parallel()

	s := NewPasswordService(nil, newFakeManager(), 60*time.Minute)
	cred, err := s.NewChosen("correct horse battery", "u-1")
	if err != nil {
		t.Fatalf("NewChosen error: %v", err)
	}

	match, err := s.Compare("wrong password", cred.Secret)
	if err != nil {
		t.Fatalf("mismatch must not be an error: %v", err)
	}
	if match {
		t.Fatalf("wrong password must not match")
	}
}

func TestCompare_MalformedHash(t *testing.T) {
	t.Parallel()

	s := NewPasswordService(nil, newFakeManager(), 60*time.Minute)
	if _, err := s.Compare("anything", "not-a-bcrypt-hash"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
}

func TestRotate_ClosesActiveAndInsertsNew(t *testing.T) {
	t.Parallel()

	m := newFakeManager()
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	s := NewPasswordService(db, m, 60*time.Minute)
	user, err := m.users.Create(context.Background(), &models.User{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	if _, err := m.credentials.Create(context.Background(), &models.Credential{
		UserID:    user.ID,
		Secret:    "old-hash",
		Kind:      models.CredentialUserChosen,
		StartDate: time.Now().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("seeding credential: %v", err)
	}

	audit := &models.AuditLog{UserID: user.ID, Type: models.AuditRecoverPasswordAsk, IP: "ip", Time: time.Now()}
	replacement, err := s.Rotate(context.Background(), user, nil, audit)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}

	if replacement.Kind != models.CredentialTemporary {
		t.Fatalf("nil cleartext must rotate to a temporary credential, got %s", replacement.Kind)
	}
	stored, err := m.credentials.FindBySecret(context.Background(), "old-hash")
	if err != nil {
		t.Fatalf("old credential must still exist: %v", err)
	}
	if stored.EndDate == nil {
		t.Fatalf("old credential must be closed")
	}
	if len(m.users.locked) != 1 || m.users.locked[0] != user.ID {
		t.Fatalf("rotation must lock the owning user, got %v", m.users.locked)
	}
	if len(m.audit.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(m.audit.entries))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("transaction expectations: %v", err)
	}
}

func TestRotate_NoActiveCredential(t *testing.T) {
	t.Parallel()

	m := newFakeManager()
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	s := NewPasswordService(db, m, 60*time.Minute)
	user, err := m.users.Create(context.Background(), &models.User{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	password := "a new long password"
	replacement, err := s.Rotate(context.Background(), user, &password, nil)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	if replacement.Kind != models.CredentialUserChosen {
		t.Fatalf("non-nil cleartext must rotate to a user-chosen credential, got %s", replacement.Kind)
	}
	if len(m.credentials.credentials) != 1 {
		t.Fatalf("expected exactly one stored credential, got %d", len(m.credentials.credentials))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("transaction expectations: %v", err)
	}
}

func TestRotate_RepeatedRotationsKeepOneActive(t *testing.T) {
	t.Parallel()

	m := newFakeManager()
	db, mock := newMockDB(t)
	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	s := NewPasswordService(db, m, 60*time.Minute)
	user, err := m.users.Create(context.Background(), &models.User{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	// Each rotation finds the previous winner inside its own transaction
	// and closes it, so the active count never grows past one.
	for i := 0; i < 3; i++ {
		if _, err := s.Rotate(context.Background(), user, nil, nil); err != nil {
			t.Fatalf("Rotate %d error: %v", i, err)
		}
	}

	active := 0
	for _, c := range m.credentials.credentials {
		if c.ActiveAt(time.Now()) {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active credential, got %d", active)
	}
	if len(m.users.locked) != 3 {
		t.Fatalf("every rotation must lock the owning user, got %d locks", len(m.users.locked))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("transaction expectations: %v", err)
	}
}

func TestRotate_StoreFailureRollsBack(t *testing.T) {
	t.Parallel()

	m := newFakeManager()
	m.credentials.createErr = errors.New("insert failed")
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := NewPasswordService(db, m, 60*time.Minute)
	user, err := m.users.Create(context.Background(), &models.User{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	password := "a new long password"
	_, err = s.Rotate(context.Background(), user, &password, nil)
	if !errors.Is(err, common.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("transaction expectations: %v", err)
	}
}

func TestFindActive(t *testing.T) {
	t.Parallel()

	m := newFakeManager()
	s := NewPasswordService(nil, m, 60*time.Minute)

	if _, err := s.FindActive(context.Background(), "u-1"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := m.credentials.Create(context.Background(), &models.Credential{
		UserID: "u-1", Secret: "hash", Kind: models.CredentialUserChosen, StartDate: time.Now(),
	}); err != nil {
		t.Fatalf("seeding credential: %v", err)
	}
	cred, err := s.FindActive(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("FindActive error: %v", err)
	}
	if cred.UserID != "u-1" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
}
