package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginRegistry records logins handed out so separate seeder processes never reuse one.
type LoginRegistry interface {
	// Claim returns false when the login was already claimed.
	Claim(ctx context.Context, login string) (bool, error)
	Release(ctx context.Context, login string) error
	Ping(ctx context.Context) error
	Close() error
}

type redisLoginRegistry struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisLoginRegistry builds a registry with the given addr/password/db.
func NewRedisLoginRegistry(addr, password string, db int, ttl time.Duration, prefix string) (LoginRegistry, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	if prefix == "" {
		prefix = "seed_login"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisLoginRegistry{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisLoginRegistry) key(login string) string {
	return fmt.Sprintf("%s:%s", c.prefix, login)
}

func (c *redisLoginRegistry) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisLoginRegistry) Claim(ctx context.Context, login string) (bool, error) {
	if c == nil || c.client == nil {
		return true, nil
	}
	ok, err := c.client.SetNX(ctx, c.key(login), time.Now().UTC().Format(time.RFC3339Nano), c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim login %s: %w", login, err)
	}
	return ok, nil
}

func (c *redisLoginRegistry) Release(ctx context.Context, login string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(login)).Err()
}

func (c *redisLoginRegistry) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
