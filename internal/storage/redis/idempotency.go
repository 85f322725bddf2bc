package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	responsePrefix = "idempotency:response:"
	lockPrefix     = "idempotency:lock:"
	lockTTL        = 30 * time.Second
)

// CachedResponse is a stored HTTP response replayed for a repeated key.
type CachedResponse struct {
	StatusCode  int             `json:"status_code"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
}

// IdempotencyStore keeps responses of idempotent requests.
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewIdempotencyStore creates a store keeping responses for ttl.
func NewIdempotencyStore(client redis.Cmdable, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Get returns the cached response for key, nil on a miss.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, error) {
	data, err := s.client.Get(ctx, responsePrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached response: %w", err)
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("decode cached response: %w", err)
	}
	return &cached, nil
}

// Save stores resp under key.
func (s *IdempotencyStore) Save(ctx context.Context, key string, resp CachedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode cached response: %w", err)
	}
	return s.client.Set(ctx, responsePrefix+key, data, s.ttl).Err()
}

// Reserve marks key as in flight. It reports false when another request
// already holds it.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, lockPrefix+key, 1, lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Release drops the in-flight marker of key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, lockPrefix+key).Err()
}
