// auth/token_store.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisTokenStore implements TokenStore using Redis. Unlike the cookie
// store it is shared across requests; one instance serves the process.
type RedisTokenStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisTokenStore creates a new Redis-backed token store. The TTL is
// the same fixed retention as the cookie store, independent of the
// access token's own expiry.
func NewRedisTokenStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisTokenStore {
	if ttl <= 0 {
		ttl = 100 * 24 * time.Hour
	}
	return &RedisTokenStore{client: client, prefix: prefix, ttl: ttl}
}

// key generates the Redis key for a user's token
func (s *RedisTokenStore) key(userID string) string {
	return fmt.Sprintf("%s:token:%s", s.prefix, userID)
}

// Save stores a token for a user, overwriting any prior value.
func (s *RedisTokenStore) Save(userID string, token *TokenSet) error {
	if !token.Valid() {
		return fmt.Errorf("refusing to save partial token record")
	}

	stored := *token
	if stored.ExpiresAt != nil {
		t := stored.ExpiresAt.UTC().Truncate(time.Second)
		stored.ExpiresAt = &t
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.client.Set(ctx, s.key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Get retrieves a token for a user. Absent keys and undecodable values
// both yield ErrNoToken.
func (s *RedisTokenStore) Get(userID string) (*TokenSet, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	var token TokenSet
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, ErrNoToken
	}
	if !token.Valid() {
		return nil, ErrNoToken
	}
	return &token, nil
}

// Delete removes a user's token. Idempotent.
func (s *RedisTokenStore) Delete(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
