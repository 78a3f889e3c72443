// Package auth mints, verifies, revokes, and refreshes the RS256-signed
// bearer tokens used by the service. Access tokens are short-lived and
// verified without any store lookup; only refresh exchanges and explicit
// logout consult the revocation ledger.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jrafaels/test-fauth/internal/common"
	"github.com/jrafaels/test-fauth/internal/server/models"
)

// Claims is the payload carried inside both token classes. It exists only
// inside a signed token and is never persisted.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	IP     string `json:"ip"`
}

// Ledger is the subset of the revocation store the authority needs.
type Ledger interface {
	Create(ctx context.Context, token *models.RevokedToken) error
	Find(ctx context.Context, text string) (*models.RevokedToken, error)
}

// Authority issues and verifies tokens for both classes.
type Authority struct {
	access     *KeyPair
	refresh    *KeyPair
	accessTTL  time.Duration
	refreshTTL time.Duration
	ledger     Ledger
	now        func() time.Time
}

func NewAuthority(access, refresh *KeyPair, accessTTL, refreshTTL time.Duration, ledger Ledger) *Authority {
	return &Authority{
		access:     access,
		refresh:    refresh,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		ledger:     ledger,
		now:        time.Now,
	}
}

// IssueAccess signs a short-lived access token for the given identity.
func (a *Authority) IssueAccess(userID, email, ip string) (string, error) {
	return a.issue(a.access.Private, a.accessTTL, userID, email, ip)
}

// IssueRefresh signs a longer-lived refresh token for the given identity.
func (a *Authority) IssueRefresh(userID, email, ip string) (string, error) {
	return a.issue(a.refresh.Private, a.refreshTTL, userID, email, ip)
}

func (a *Authority) issue(key any, ttl time.Duration, userID, email, ip string) (string, error) {
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Email:  email,
		IP:     ip,
	})
	return token.SignedString(key)
}

// Validate verifies the token's RS256 signature with the public key of the
// given class and checks its expiry. Expired-but-well-signed tokens yield
// KindTokenExpired; every other failure yields KindTokenInvalid.
func (a *Authority) Validate(tokenString string, kind models.TokenKind) (*Claims, error) {
	pub := a.access.Public
	if kind == models.TokenRefresh {
		pub = a.refresh.Public
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.TokenExpired(err)
		}
		return nil, common.TokenInvalid(err)
	}
	if !token.Valid {
		return nil, common.TokenInvalid(nil)
	}
	return claims, nil
}

// Revoke re-validates the token and writes it to the revocation ledger. A
// token that has already expired cannot be revoked and fails with
// KindTokenExpired.
func (a *Authority) Revoke(ctx context.Context, tokenString string, kind models.TokenKind) error {
	claims, err := a.Validate(tokenString, kind)
	if err != nil {
		return err
	}

	entry := &models.RevokedToken{
		UserID:  claims.UserID,
		Text:    tokenString,
		Kind:    kind,
		EndDate: claims.ExpiresAt.Time,
	}
	if err := a.ledger.Create(ctx, entry); err != nil {
		return common.Internal("error saving revoked token", err)
	}
	return nil
}

// Refresh exchanges a refresh token for a new access token. The ledger is
// consulted before the signature: a revoked token fails with KindRevokedToken
// no matter how valid it looks. The new access token carries the identity of
// the refresh token but the ip of the current request.
func (a *Authority) Refresh(ctx context.Context, refreshToken, ip string) (string, string, error) {
	if refreshToken == "" {
		return "", "", common.Validation("Token cannot be empty.")
	}

	if _, err := a.ledger.Find(ctx, refreshToken); err == nil {
		return "", "", common.RevokedToken()
	} else if !errors.Is(err, common.ErrorNotFound) {
		return "", "", common.Internal("error searching revoked token", err)
	}

	claims, err := a.Validate(refreshToken, models.TokenRefresh)
	if err != nil {
		// The refresh flow does not distinguish stale from forged input.
		return "", "", common.TokenInvalid(err)
	}

	access, err := a.IssueAccess(claims.UserID, claims.Email, ip)
	if err != nil {
		return "", "", common.Internal("error generating access token", err)
	}
	return claims.UserID, access, nil
}
