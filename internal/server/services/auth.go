package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jrafaels/test-fauth/internal/common"
	"github.com/jrafaels/test-fauth/internal/logging"
	"github.com/jrafaels/test-fauth/internal/server/auth"
	"github.com/jrafaels/test-fauth/internal/server/models"
	"github.com/jrafaels/test-fauth/internal/server/repositories/repomanager"
)

// LoginResult bundles the identity and token pair returned by a successful
// login.
type LoginResult struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

// AuthService composes the credential lifecycle and the token authority into
// the login, logout, recover, and reset flows. It is the only type callers
// outside this package use for authentication.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	passwords   *PasswordService
	tokens      *auth.Authority
	logger      logging.Logger
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, passwords *PasswordService, tokens *auth.Authority, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		passwords:   passwords,
		tokens:      tokens,
		logger:      logger.With("module", "auth_service"),
	}
}

// Login verifies the email/password pair and mints both token classes. A
// missing user, a user without an active credential, and a wrong password
// all fail with the same generic message so the response cannot be used to
// probe which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "user not found for that email", "email", email, "ip", ip)
			return nil, common.AuthenticationFailed()
		}
		return nil, common.Internal("error searching user", err)
	}

	credential, err := s.passwords.FindActive(ctx, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "no active credential for that user", "user_id", user.ID, "ip", ip)
			return nil, common.AuthenticationFailed()
		}
		return nil, common.Internal("error searching credential", err)
	}

	match, err := s.passwords.Compare(password, credential.Secret)
	if err != nil || !match {
		s.logger.Info(ctx, "password incorrect for that user", "user_id", user.ID, "ip", ip)
		return nil, common.AuthenticationFailed()
	}

	accessToken, err := s.tokens.IssueAccess(user.ID, user.Email, ip)
	if err != nil {
		return nil, common.Internal("error generating access token", err)
	}
	refreshToken, err := s.tokens.IssueRefresh(user.ID, user.Email, ip)
	if err != nil {
		return nil, common.Internal("error generating refresh token", err)
	}

	s.logger.Info(ctx, "user authenticated successfully", "user_id", user.ID, "email", user.Email, "ip", ip)
	return &LoginResult{UserID: user.ID, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout revokes both of the caller's tokens. The user must exist. An
// already-expired token fails the logout with TokenExpired; any other
// revocation failure means the ledger write cannot be trusted and surfaces
// as an internal failure.
func (s *AuthService) Logout(ctx context.Context, userID, accessToken, refreshToken, ip string) (string, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "user not found for that id", "user_id", userID, "ip", ip)
			return "", common.UserNotFound(userID)
		}
		return "", common.Internal("error searching user", err)
	}

	if err := s.tokens.Revoke(ctx, accessToken, models.TokenAccess); err != nil {
		s.logger.Warn(ctx, "user logout failed", "user_id", user.ID, "ip", ip)
		return "", logoutFailure(err)
	}
	if err := s.tokens.Revoke(ctx, refreshToken, models.TokenRefresh); err != nil {
		s.logger.Warn(ctx, "user logout failed", "user_id", user.ID, "ip", ip)
		return "", logoutFailure(err)
	}

	s.logger.Info(ctx, "user logout successful", "user_id", user.ID, "email", user.Email, "ip", ip)
	return user.ID, nil
}

// RecoverPassword rotates the user's active credential to a fresh temporary
// one and returns the cleartext control secret for out-of-band delivery.
// Unlike login, a missing email is reported: the recovery flow accepts the
// enumeration trade-off so users get actionable feedback.
func (s *AuthService) RecoverPassword(ctx context.Context, email, ip string) (*models.User, string, error) {
	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "user not found for that email", "email", email, "ip", ip)
			return nil, "", common.UserNotFound(email)
		}
		return nil, "", common.Internal("error searching user", err)
	}

	audit := &models.AuditLog{
		UserID:      user.ID,
		Type:        models.AuditRecoverPasswordAsk,
		IP:          ip,
		Description: "Password recovery requested",
		Time:        s.passwords.now(),
	}
	credential, err := s.passwords.Rotate(ctx, user, nil, audit)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "password recovered", "user_id", user.ID, "ip", ip)
	return user, credential.Secret, nil
}

// ResetPassword exchanges a control secret for a new user-chosen password.
// The control credential is closed by the rotation, so a secret can never be
// redeemed twice.
func (s *AuthService) ResetPassword(ctx context.Context, controlSecret, newPassword, ip string) (*models.User, error) {
	credential, err := s.repomanager.Credentials(s.db).FindBySecret(ctx, controlSecret)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "control password not found", "ip", ip)
			return nil, common.ControlNotFound()
		}
		return nil, common.Internal("error searching credential", err)
	}

	if credential.EndDate != nil && s.passwords.now().After(*credential.EndDate) {
		s.logger.Info(ctx, "control password expired", "user_id", credential.UserID, "ip", ip)
		return nil, common.ControlExpired()
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, credential.UserID)
	if err != nil {
		// A valid control secret implies its owner exists; a miss here is an
		// inconsistency in the store, not a client error.
		s.logger.Error(ctx, "user missing for valid control secret", "user_id", credential.UserID, "ip", ip)
		return nil, common.Internal("user not found for control secret", err)
	}

	// Check strength before rotating so a weak password does not consume
	// the control secret.
	if err := s.passwords.ValidateStrength(newPassword); err != nil {
		return nil, err
	}

	audit := &models.AuditLog{
		UserID:      user.ID,
		Type:        models.AuditRecoverPasswordSet,
		IP:          ip,
		Description: "Password reset",
		Time:        s.passwords.now(),
	}
	if _, err := s.passwords.Rotate(ctx, user, &newPassword, audit); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID, "email", user.Email, "ip", ip)
	return user, nil
}

// ComparePasswords verifies a cleartext password against a stored hash
// without any side effects.
func (s *AuthService) ComparePasswords(cleartext, hash string) (bool, error) {
	return s.passwords.Compare(cleartext, hash)
}

// logoutFailure maps revocation errors for the logout flow. Token expiry
// passes through unchanged; everything else, including a forged or malformed
// token, is an internal failure because logout has no legitimate caller
// holding an invalid token.
func logoutFailure(err error) error {
	if errors.Is(err, common.ErrTokenExpired) || errors.Is(err, common.ErrInternal) {
		return err
	}
	return common.Internal("error revoking token", err)
}
