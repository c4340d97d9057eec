package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"scolara/internal/profile"
	id "scolara/pkg/domain"
	"scolara/pkg/platform/sentinel"
)

// InMemoryStore keeps profiles in memory. It favors clarity over performance
// and doubles as the test fake.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.UserID]profile.Profile
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[id.UserID]profile.Profile)}
}

func (s *InMemoryStore) Upsert(_ context.Context, p profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if existing, ok := s.profiles[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.profiles[p.ID] = p
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[userID]; ok && p.DeletedAt == nil {
		return &p, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if strings.EqualFold(p.Email, email) && p.DeletedAt == nil {
			found := p
			return &found, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.profiles, userID)
	return nil
}
