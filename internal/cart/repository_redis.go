package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cart:vendor:"

// RedisRepository keeps one JSON document per vendor. Every save refreshes
// the TTL so abandoned carts expire on their own.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func redisKey(vendorID int64) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, vendorID)
}

func (r *RedisRepository) Load(ctx context.Context, vendorID int64) (*Cart, error) {
	raw, err := r.client.Get(ctx, redisKey(vendorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	c := New()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *RedisRepository) Save(ctx context.Context, vendorID int64, c *Cart) error {
	if c.IsEmpty() {
		return r.Delete(ctx, vendorID)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisKey(vendorID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, vendorID int64) error {
	if err := r.client.Del(ctx, redisKey(vendorID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
