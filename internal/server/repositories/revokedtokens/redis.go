package revokedtokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jrafaels/test-fauth/internal/common"
	"github.com/jrafaels/test-fauth/internal/server/models"
)

const redisKeyPrefix = "revoked:"

// RedisRepository keeps the revocation ledger in Redis. Each entry expires at
// the token's own end_date, so the ledger never needs explicit cleanup.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

type redisEntry struct {
	UserID  string           `json:"user_id"`
	Kind    models.TokenKind `json:"kind"`
	EndDate time.Time        `json:"end_date"`
}

func (r *RedisRepository) Create(ctx context.Context, token *models.RevokedToken) error {
	payload, err := json.Marshal(redisEntry{
		UserID:  token.UserID,
		Kind:    token.Kind,
		EndDate: token.EndDate,
	})
	if err != nil {
		return fmt.Errorf("marshal revoked token: %w", err)
	}

	ttl := time.Until(token.EndDate)
	if ttl <= 0 {
		// Already past its expiry; keep it around briefly so a concurrent
		// refresh still sees the revocation.
		ttl = time.Minute
	}

	if err := r.client.Set(ctx, redisKeyPrefix+token.Text, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Find(ctx context.Context, text string) (*models.RevokedToken, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+text).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var entry redisEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal revoked token: %w", err)
	}
	return &models.RevokedToken{
		UserID:  entry.UserID,
		Text:    text,
		Kind:    entry.Kind,
		EndDate: entry.EndDate,
	}, nil
}

// DeleteExpired is a no-op: Redis evicts entries through their TTL.
func (r *RedisRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}
