package repository

import (
	"context"
	"time"
)

// SessionRepository caches issued tokens so logout can invalidate them before
// their JWT expiry.
type SessionRepository interface {
	CacheToken(ctx context.Context, userID, token string, ttl time.Duration) error
	GetToken(ctx context.Context, userID string) (string, error)
	InvalidateToken(ctx context.Context, userID string) error
}
