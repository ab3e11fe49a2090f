package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default Redis key prefix.
const DefaultRedisPrefix = "babellm:"

// RedisBackend stores each handoff key as a Redis string with a TTL.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a RedisBackend.
type RedisOption func(*RedisBackend)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *RedisBackend) { r.prefix = prefix }
}

// NewRedisBackend connects to addr and pings it.
func NewRedisBackend(ctx context.Context, addr string, db int, opts ...RedisOption) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	r := &RedisBackend{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(r)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return r, nil
}

func (r *RedisBackend) key(sessionID, key string) string {
	return r.prefix + sessionID + ":" + key
}

// SetAll implements Backend.
func (r *RedisBackend) SetAll(ctx context.Context, sessionID string, values map[string]string, ttl time.Duration) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range []string{KeyResults, KeyQuestion, KeyQuestionID} {
			pipe.Del(ctx, r.key(sessionID, k))
		}
		for k, v := range values {
			pipe.Set(ctx, r.key(sessionID, k), v, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return nil
}

// Get implements Backend. Connection and context failures keep their cause
// and are not reported as ErrStorageRead.
func (r *RedisBackend) Get(ctx context.Context, sessionID, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(sessionID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s not set", ErrStorageRead, key)
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Delete implements Backend.
func (r *RedisBackend) Delete(ctx context.Context, sessionID string) error {
	keys := []string{
		r.key(sessionID, KeyResults),
		r.key(sessionID, KeyQuestion),
		r.key(sessionID, KeyQuestionID),
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: delete: %v", ErrStorageWrite, err)
	}
	return nil
}

// Close implements Backend.
func (r *RedisBackend) Close() error { return r.client.Close() }
