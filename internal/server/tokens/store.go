// Package tokens keeps refresh tokens with a time-to-live. A token can be
// taken exactly once; taking it removes it.
package tokens

import (
	"context"
	"time"
)

// Store holds refresh token -> user id bindings. Take and Delete on an
// unknown or expired token return common.ErrRefreshTokenExpired.
type Store interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Take(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

const keyPrefix = "refresh:"

func key(token string) string { return keyPrefix + token }
