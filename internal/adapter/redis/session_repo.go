package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gb112302/agriconnect/internal/repository"
)

const sessionKeyPrefix = "session:"

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) repository.SessionRepository {
	return &sessionRepository{client: client}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (r *sessionRepository) CacheToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionKey(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token for user %s: %w", userID, err)
	}
	return nil
}

func (r *sessionRepository) GetToken(ctx context.Context, userID string) (string, error) {
	val, err := r.client.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to get token for user %s: %w", userID, err)
	}
	return val, nil
}

func (r *sessionRepository) InvalidateToken(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token for user %s: %w", userID, err)
	}
	return nil
}
