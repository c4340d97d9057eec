package permission

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	id "scolara/pkg/domain"
)

// CachedOverrideStore is a redis read-through cache in front of an override
// store. Grant and Revoke write through and drop the cached entry so a
// revocation takes effect on the next authorization check, bounded only by
// the TTL when the invalidation itself fails.
type CachedOverrideStore struct {
	inner OverrideStore
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedOverrides(inner OverrideStore, client *redis.Client, ttl time.Duration) *CachedOverrideStore {
	return &CachedOverrideStore{inner: inner, redis: client, ttl: ttl}
}

func cacheKey(userID id.UserID) string {
	return "perm:overrides:" + userID.String()
}

func (s *CachedOverrideStore) OverridesFor(ctx context.Context, userID id.UserID) (Set, error) {
	if cached, err := s.redis.Get(ctx, cacheKey(userID)).Bytes(); err == nil {
		var perms []Permission
		if err := json.Unmarshal(cached, &perms); err == nil {
			return NewSet(perms...), nil
		}
	}

	set, err := s.inner.OverridesFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	if payload, err := json.Marshal(perms); err == nil {
		// Cache population is best effort; a miss just costs a store read.
		s.redis.Set(ctx, cacheKey(userID), payload, s.ttl)
	}
	return set, nil
}

func (s *CachedOverrideStore) Grant(ctx context.Context, userID id.UserID, perm Permission) error {
	if err := s.inner.Grant(ctx, userID, perm); err != nil {
		return err
	}
	s.redis.Del(ctx, cacheKey(userID))
	return nil
}

func (s *CachedOverrideStore) Revoke(ctx context.Context, userID id.UserID, perm Permission) error {
	if err := s.inner.Revoke(ctx, userID, perm); err != nil {
		return err
	}
	s.redis.Del(ctx, cacheKey(userID))
	return nil
}
