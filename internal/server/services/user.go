package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jrafaels/test-fauth/internal/common"
	"github.com/jrafaels/test-fauth/internal/dbx"
	"github.com/jrafaels/test-fauth/internal/logging"
	"github.com/jrafaels/test-fauth/internal/server/models"
	"github.com/jrafaels/test-fauth/internal/server/repositories/repomanager"
)

// anonymizedValue replaces every profile field of a deleted user.
const anonymizedValue = "DELETED"

// birthDateLayout is the wire format for birth dates in user payloads.
const birthDateLayout = "2006-01-02"

// UserService manages the user directory: signup, profile updates, lookups,
// and soft deletion.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	passwords   *PasswordService
	logger      logging.Logger
	now         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, passwords *PasswordService, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		passwords:   passwords,
		logger:      logger.With("module", "user_service"),
		now:         time.Now,
	}
}

// Create registers a new user. The user row, the initial credential, and the
// register audit entry are written in one transaction, so a half-registered
// account can never exist.
func (s *UserService) Create(ctx context.Context, in *CreateUserInput, ip string) (*models.User, error) {
	if err := validateCreateUser(in); err != nil {
		return nil, err
	}
	if err := s.passwords.ValidateStrength(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.repomanager.Users(s.db).FindByEmail(ctx, in.Email); err == nil {
		s.logger.Info(ctx, "email already registered", "email", in.Email, "ip", ip)
		return nil, common.Validation("Email already used.",
			common.FieldError{Field: "email", Message: "Email already used."})
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.Internal("error searching user", err)
	}

	user := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Country:   in.Country,
		City:      in.City,
	}
	if in.BirthDate != "" {
		birth, err := time.Parse(birthDateLayout, in.BirthDate)
		if err != nil {
			return nil, common.Validation("Invalid user data",
				common.FieldError{Field: "birth_date", Message: "Birth date must be YYYY-MM-DD."})
		}
		user.BirthDate = &birth
	}

	credential, err := s.passwords.NewChosen(in.Password, "")
	if err != nil {
		return nil, err
	}

	txErr := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created

		credential.UserID = user.ID
		if _, err := s.repomanager.Credentials(tx).Create(ctx, credential); err != nil {
			return err
		}

		audit := &models.AuditLog{
			UserID:      user.ID,
			Type:        models.AuditRegisterAttempt,
			IP:          ip,
			Description: "New register",
			Time:        s.now(),
		}
		_, err = s.repomanager.AuditLogs(tx).Create(ctx, audit)
		return err
	})
	if txErr != nil {
		s.logger.Error(ctx, "error registering user", "email", in.Email, "error", txErr.Error())
		return nil, common.Internal("error registering user", txErr)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "email", user.Email, "ip", ip)
	return user, nil
}

// Update replaces the mutable profile fields of the given user.
func (s *UserService) Update(ctx context.Context, id string, in *UpdateUserInput) (*models.User, error) {
	if err := validateUpdateUser(in); err != nil {
		return nil, err
	}

	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Country = in.Country
	user.City = in.City
	user.BirthDate = nil
	if in.BirthDate != "" {
		birth, err := time.Parse(birthDateLayout, in.BirthDate)
		if err != nil {
			return nil, common.Validation("Invalid user data",
				common.FieldError{Field: "birth_date", Message: "Birth date must be YYYY-MM-DD."})
		}
		user.BirthDate = &birth
	}

	if err := s.repomanager.Users(s.db).Update(ctx, user); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UserNotFound(id)
		}
		return nil, common.Internal("error updating user", err)
	}

	s.logger.Info(ctx, "user updated", "user_id", user.ID)
	return user, nil
}

// FindByID returns the user with the given id or KindUserNotFound.
func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UserNotFound(id)
		}
		return nil, common.Internal("error searching user", err)
	}
	return user, nil
}

// FindByEmail returns the user with the given email or KindUserNotFound.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UserNotFound(email)
		}
		return nil, common.Internal("error searching user", err)
	}
	return user, nil
}

// FindAll lists every non-deleted user.
func (s *UserService) FindAll(ctx context.Context) ([]*models.User, error) {
	all, err := s.repomanager.Users(s.db).FindAll(ctx)
	if err != nil {
		return nil, common.Internal("error listing users", err)
	}
	return all, nil
}

// Delete anonymizes the profile fields and soft-deletes the row in one
// transaction. The id survives so credentials, ledger entries, and audit rows
// keep a valid owner.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	user.FirstName = anonymizedValue
	user.LastName = anonymizedValue
	user.Email = anonymizedValue
	user.Country = anonymizedValue
	user.City = anonymizedValue
	user.BirthDate = nil

	txErr := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if err := repo.Update(ctx, user); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if txErr != nil {
		return common.Internal("error deleting user", txErr)
	}

	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}
