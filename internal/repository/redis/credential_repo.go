package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	CredentialKeyPrefix  = "cred:apikey"
	DefaultCredentialTTL = 10 * time.Minute
)

var (
	ErrCredentialMiss   = errors.New("credential not cached")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// CredentialCache API key 摘要 -> 用户 id
type CredentialCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewCredentialCache(rdb *redis.Client, ttl time.Duration) *CredentialCache {
	if ttl <= 0 {
		ttl = DefaultCredentialTTL
	}
	return &CredentialCache{RDB: rdb, TTL: ttl}
}

func (c *CredentialCache) key(digest string) string {
	return fmt.Sprintf("%s:%s", CredentialKeyPrefix, digest)
}

func (c *CredentialCache) Get(ctx context.Context, digest string) (uint64, error) {
	val, err := c.RDB.Get(ctx, c.key(digest)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCredentialMiss
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		// 脏数据直接删掉，下次回源
		_ = c.RDB.Del(ctx, c.key(digest)).Err()
		return 0, ErrCredentialMiss
	}
	return id, nil
}

func (c *CredentialCache) Set(ctx context.Context, digest string, userID uint64) error {
	if err := c.RDB.Set(ctx, c.key(digest), userID, c.TTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (c *CredentialCache) Delete(ctx context.Context, digest string) error {
	return c.RDB.Del(ctx, c.key(digest)).Err()
}
