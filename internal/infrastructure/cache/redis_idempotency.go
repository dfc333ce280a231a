package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
)

const (
	idempotencyKeyPrefix = "idem:"
	pendingMarker        = "pending"
)

var _ ports.IdempotencyStore = (*RedisIdempotency)(nil)

// RedisIdempotency claves de idempotencia en Redis (SETNX con TTL).
type RedisIdempotency struct {
	client *redis.Client
}

// NewRedisIdempotency construye el adaptador.
func NewRedisIdempotency(client *redis.Client) *RedisIdempotency {
	return &RedisIdempotency{client: client}
}

func (r *RedisIdempotency) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, pendingMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (r *RedisIdempotency) Complete(ctx context.Context, key string, resp ports.StoredResponse, ttl time.Duration) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, idempotencyKeyPrefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisIdempotency) Get(ctx context.Context, key string) (*ports.StoredResponse, error) {
	raw, err := r.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	if string(raw) == pendingMarker {
		return &ports.StoredResponse{Pending: true}, nil
	}
	var resp ports.StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode stored response: %w", err)
	}
	return &resp, nil
}

func (r *RedisIdempotency) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
