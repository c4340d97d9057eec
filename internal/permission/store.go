package permission

import (
	"context"
	"sync"

	id "scolara/pkg/domain"
)

// OverrideStore persists per-user permission grants that sit on top of the
// static role table.
type OverrideStore interface {
	OverridesFor(ctx context.Context, userID id.UserID) (Set, error)
	Grant(ctx context.Context, userID id.UserID, perm Permission) error
	Revoke(ctx context.Context, userID id.UserID, perm Permission) error
}

// InMemoryOverrideStore keeps override grants in memory.
type InMemoryOverrideStore struct {
	mu        sync.RWMutex
	overrides map[id.UserID]Set
}

func NewInMemoryOverrides() *InMemoryOverrideStore {
	return &InMemoryOverrideStore{overrides: make(map[id.UserID]Set)}
}

func (s *InMemoryOverrideStore) OverridesFor(_ context.Context, userID id.UserID) (Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.overrides[userID]
	if !ok {
		return Set{}, nil
	}
	out := make(Set, len(set))
	for p := range set {
		out[p] = struct{}{}
	}
	return out, nil
}

func (s *InMemoryOverrideStore) Grant(_ context.Context, userID id.UserID, perm Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overrides[userID] == nil {
		s.overrides[userID] = Set{}
	}
	s.overrides[userID][perm] = struct{}{}
	return nil
}

func (s *InMemoryOverrideStore) Revoke(_ context.Context, userID id.UserID, perm Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides[userID], perm)
	return nil
}
