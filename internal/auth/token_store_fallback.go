// auth/token_store_fallback.go
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/eGGnogSC/qbconnect/internal/logger"
)

// FallbackTokenStore wraps the Redis store with a local in-memory cache
// so token reads and writes keep working through a Redis outage. Writes
// made while Redis is down are replicated back once it recovers.
type FallbackTokenStore struct {
	redisStore  *RedisTokenStore
	localCache  map[string]*TokenSet
	cacheMutex  sync.RWMutex
	healthCheck func() bool
	log         *zap.Logger
}

// NewFallbackTokenStore creates a token store with Redis and local fallback.
func NewFallbackTokenStore(redisClient redis.UniversalClient, prefix string, ttl time.Duration, healthCheck func() bool) *FallbackTokenStore {
	return &FallbackTokenStore{
		redisStore:  NewRedisTokenStore(redisClient, prefix, ttl),
		localCache:  make(map[string]*TokenSet),
		healthCheck: healthCheck,
		log:         logger.Named("tokenstore.fallback"),
	}
}

// Save stores a token in the local cache and, when healthy, Redis.
func (s *FallbackTokenStore) Save(userID string, token *TokenSet) error {
	s.cacheMutex.Lock()
	s.localCache[userID] = token
	s.cacheMutex.Unlock()

	if s.healthCheck() {
		if err := s.redisStore.Save(userID, token); err != nil {
			s.log.Warn("failed to save token to redis, keeping local copy",
				logger.UserID(userID), logger.Err(err))
		}
	}
	return nil
}

// Get tries Redis first, falling back to the local cache.
func (s *FallbackTokenStore) Get(userID string) (*TokenSet, error) {
	if s.healthCheck() {
		token, err := s.redisStore.Get(userID)
		if err == nil {
			s.cacheMutex.Lock()
			s.localCache[userID] = token
			s.cacheMutex.Unlock()
			return token, nil
		}
		if err != ErrNoToken {
			s.log.Warn("failed to get token from redis, trying local cache",
				logger.UserID(userID), logger.Err(err))
		}
	}

	s.cacheMutex.RLock()
	token, exists := s.localCache[userID]
	s.cacheMutex.RUnlock()

	if exists {
		return token, nil
	}
	return nil, ErrNoToken
}

// Delete removes a token from both stores. Idempotent.
func (s *FallbackTokenStore) Delete(userID string) error {
	s.cacheMutex.Lock()
	delete(s.localCache, userID)
	s.cacheMutex.Unlock()

	if s.healthCheck() {
		if err := s.redisStore.Delete(userID); err != nil {
			s.log.Warn("failed to delete token from redis",
				logger.UserID(userID), logger.Err(err))
		}
	}
	return nil
}

// StartReplicationRoutine begins background sync of the local cache to
// Redis, catching up writes made during an outage.
func (s *FallbackTokenStore) StartReplicationRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.healthCheck() {
					continue
				}

				s.cacheMutex.RLock()
				pending := make(map[string]*TokenSet, len(s.localCache))
				for id, token := range s.localCache {
					pending[id] = token
				}
				s.cacheMutex.RUnlock()

				for id, token := range pending {
					if err := s.redisStore.Save(id, token); err != nil {
						s.log.Warn("token replication failed",
							logger.UserID(id), logger.Err(err))
					}
				}
			}
		}
	}()
}
