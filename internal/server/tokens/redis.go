package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps tokens as plain string keys with an expiry, so Redis
// evicts stale tokens on its own.
type RedisStore struct {
	rdb redis.Cmdable
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// Take reads and deletes the token atomically (GETDEL).
func (s *RedisStore) Take(ctx context.Context, token string) (string, error) {
	userID, err := s.rdb.GetDel(ctx, key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrRefreshTokenExpired
		}
		return "", fmt.Errorf("redis error: %w", err)
	}
	return userID, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	n, err := s.rdb.Del(ctx, key(token)).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if n == 0 {
		return common.ErrRefreshTokenExpired
	}
	return nil
}
