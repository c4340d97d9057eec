package store

import (
	"context"
	"testing"
	"time"

	"scolara/internal/profile"
	id "scolara/pkg/domain"
	"scolara/pkg/platform/sentinel"

	"github.com/stretchr/testify/suite"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) TestUpsert() {
	ctx := context.Background()

	s.Run("insert then lookup", func() {
		p := profile.Profile{
			ID:          id.NewUserID(),
			Email:       "jane@school.test",
			DisplayName: "Jane",
			Role:        profile.RoleTeacher,
			Active:      true,
		}
		s.Require().NoError(s.store.Upsert(ctx, p))

		found, err := s.store.FindByID(ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(p.Email, found.Email)
		s.False(found.CreatedAt.IsZero())
	})

	s.Run("update absorbs an existing row for the same identity", func() {
		userID := id.NewUserID()
		s.Require().NoError(s.store.Upsert(ctx, profile.Profile{ID: userID, Email: "stub@school.test"}))

		first, err := s.store.FindByID(ctx, userID)
		s.Require().NoError(err)
		created := first.CreatedAt

		time.Sleep(time.Millisecond)
		s.Require().NoError(s.store.Upsert(ctx, profile.Profile{
			ID:          userID,
			Email:       "stub@school.test",
			DisplayName: "Filled In",
			Role:        profile.RoleParent,
			Active:      true,
		}))

		second, err := s.store.FindByID(ctx, userID)
		s.Require().NoError(err)
		s.Equal("Filled In", second.DisplayName)
		s.Equal(created, second.CreatedAt)
		s.True(second.UpdatedAt.After(created) || second.UpdatedAt.Equal(created))
	})
}

func (s *InMemoryStoreSuite) TestFindByEmail() {
	ctx := context.Background()
	p := profile.Profile{ID: id.NewUserID(), Email: "Mixed.Case@school.test", Active: true}
	s.Require().NoError(s.store.Upsert(ctx, p))

	s.Run("match is case-insensitive", func() {
		found, err := s.store.FindByEmail(ctx, "mixed.case@SCHOOL.test")
		s.Require().NoError(err)
		s.Equal(p.ID, found.ID)
	})

	s.Run("missing email returns ErrNotFound", func() {
		_, err := s.store.FindByEmail(ctx, "nobody@school.test")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestDelete() {
	ctx := context.Background()

	s.Run("delete removes the profile", func() {
		p := profile.Profile{ID: id.NewUserID(), Email: "del@school.test"}
		s.Require().NoError(s.store.Upsert(ctx, p))
		s.Require().NoError(s.store.Delete(ctx, p.ID))

		_, err := s.store.FindByID(ctx, p.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("deleting an absent profile returns ErrNotFound", func() {
		s.Require().ErrorIs(s.store.Delete(ctx, id.NewUserID()), sentinel.ErrNotFound)
	})
}
