package relationship

import (
	"context"
	"sync"

	id "scolara/pkg/domain"
	"scolara/pkg/platform/sentinel"
)

// Store is the relationship persistence contract.
type Store interface {
	Insert(ctx context.Context, link Link) error
	// FindPrimaryGuardian resolves the primary guardian for a student,
	// falling back to any guardian when no link is flagged primary.
	FindPrimaryGuardian(ctx context.Context, studentID id.StudentID) (id.UserID, error)
	CountByGuardian(ctx context.Context, guardianID id.UserID) (int, error)
}

// InMemoryStore keeps links in memory, preserving insertion order.
type InMemoryStore struct {
	mu    sync.RWMutex
	links []Link
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Insert(_ context.Context, link Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = append(s.links, link)
	return nil
}

func (s *InMemoryStore) FindPrimaryGuardian(_ context.Context, studentID id.StudentID) (id.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var fallback *id.UserID
	for i := range s.links {
		link := s.links[i]
		if link.StudentID != studentID {
			continue
		}
		if link.Primary {
			return link.GuardianID, nil
		}
		if fallback == nil {
			fallback = &link.GuardianID
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return id.UserID{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) CountByGuardian(_ context.Context, guardianID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, link := range s.links {
		if link.GuardianID == guardianID {
			count++
		}
	}
	return count, nil
}

// Links returns a copy of all links. Test helper.
func (s *InMemoryStore) Links() []Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Link, len(s.links))
	copy(out, s.links)
	return out
}
