package store

import (
	"context"
	"sync"
	"time"

	"scolara/internal/records"
)

// InMemoryStore keeps domain records in memory, preserving insertion order
// so first-match guardian resolution is deterministic.
type InMemoryStore struct {
	mu        sync.RWMutex
	teachers  []records.Teacher
	students  []records.Student
	operators []records.Operator
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) InsertTeacher(_ context.Context, t records.Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teachers = append(s.teachers, t)
	return nil
}

func (s *InMemoryStore) InsertStudent(_ context.Context, st records.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students = append(s.students, st)
	return nil
}

func (s *InMemoryStore) InsertOperator(_ context.Context, op records.Operator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operators = append(s.operators, op)
	return nil
}

func (s *InMemoryStore) CountSince(_ context.Context, kind records.Kind, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	switch kind {
	case records.KindTeacher:
		for _, t := range s.teachers {
			if !t.CreatedAt.Before(since) {
				count++
			}
		}
	case records.KindStudent:
		for _, st := range s.students {
			if !st.CreatedAt.Before(since) {
				count++
			}
		}
	case records.KindOperator:
		for _, op := range s.operators {
			if !op.CreatedAt.Before(since) {
				count++
			}
		}
	}
	return count, nil
}

func (s *InMemoryStore) ListStudentsByNationalID(_ context.Context, nid string) ([]records.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []records.Student
	for _, st := range s.students {
		if st.FatherNationalID == nid || st.MotherNationalID == nid {
			out = append(out, st)
		}
	}
	return out, nil
}

// Students returns a copy of all student records. Test helper.
func (s *InMemoryStore) Students() []records.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]records.Student, len(s.students))
	copy(out, s.students)
	return out
}

// Teachers returns a copy of all teacher records. Test helper.
func (s *InMemoryStore) Teachers() []records.Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]records.Teacher, len(s.teachers))
	copy(out, s.teachers)
	return out
}
