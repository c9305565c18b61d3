// Package cache holds the Redis-backed helpers used by the forward worker.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	forwardKeyPrefix = "presale:forward:"
	DefaultDedupTTL  = 24 * time.Hour
)

// ForwardDedup claims idempotency keys so a redelivered forward reaches each target once.
type ForwardDedup struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewForwardDedup(client *redis.Client, ttl time.Duration) *ForwardDedup {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &ForwardDedup{Client: client, TTL: ttl}
}

// NewRedisClient opens a client and pings it.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func forwardKey(idempotencyKey string) string {
	return forwardKeyPrefix + idempotencyKey
}

// Acquire reports whether this caller is the first to claim the key within the TTL.
func (d *ForwardDedup) Acquire(ctx context.Context, idempotencyKey string) (bool, error) {
	ok, err := d.Client.SetNX(ctx, forwardKey(idempotencyKey), time.Now().UTC().Format(time.RFC3339), d.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", idempotencyKey, err)
	}
	return ok, nil
}

// Release drops a claim after a failed delivery so the message can be retried.
func (d *ForwardDedup) Release(ctx context.Context, idempotencyKey string) error {
	if err := d.Client.Del(ctx, forwardKey(idempotencyKey)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release %s: %w", idempotencyKey, err)
	}
	return nil
}
