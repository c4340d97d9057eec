//go:build integration

package credstore_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"scolara/internal/credstore"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/platform/sentinel"
	"scolara/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *credstore.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = credstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "identities"))
}

func (s *PostgresStoreSuite) TestCreateAndAuthenticate() {
	ctx := context.Background()
	email := "teacher-" + uuid.NewString() + "@school.example"

	identityID, err := s.store.CreateIdentity(ctx, email, "hunter2hunter2")
	s.Require().NoError(err)

	got, err := s.store.Authenticate(ctx, email, "hunter2hunter2")
	s.Require().NoError(err)
	s.Equal(identityID, got)
}

func (s *PostgresStoreSuite) TestDuplicateEmailConflicts() {
	ctx := context.Background()
	email := "dup-" + uuid.NewString() + "@school.example"

	_, err := s.store.CreateIdentity(ctx, email, "first-password")
	s.Require().NoError(err)

	_, err = s.store.CreateIdentity(ctx, email, "second-password")
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestCaseInsensitiveUniqueness() {
	ctx := context.Background()
	base := "case-" + uuid.NewString() + "@school.example"

	_, err := s.store.CreateIdentity(ctx, base, "a-password")
	s.Require().NoError(err)

	variants := []string{
		strings.ToUpper(base),
		"  " + base + "  ",
	}
	for _, v := range variants {
		_, err := s.store.CreateIdentity(ctx, v, "a-password")
		s.ErrorIs(err, sentinel.ErrConflict, "variant %q should conflict with %q", v, base)
	}

	// Authenticate is equally case-insensitive.
	_, err = s.store.Authenticate(ctx, strings.ToUpper(base), "a-password")
	s.NoError(err)
}

// TestConcurrentDuplicateCreate verifies the unique index is the final
// authority: out of many racing creates for one email, exactly one wins.
func (s *PostgresStoreSuite) TestConcurrentDuplicateCreate() {
	ctx := context.Background()
	email := "race-" + uuid.NewString() + "@school.example"
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.CreateIdentity(ctx, email, "race-password")
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should get conflict error")
}

func (s *PostgresStoreSuite) TestDeleteFreesEmail() {
	ctx := context.Background()
	email := "reuse-" + uuid.NewString() + "@school.example"

	identityID, err := s.store.CreateIdentity(ctx, email, "a-password")
	s.Require().NoError(err)

	s.Require().NoError(s.store.DeleteIdentity(ctx, identityID))

	// Delete is idempotent.
	s.NoError(s.store.DeleteIdentity(ctx, identityID))

	_, err = s.store.CreateIdentity(ctx, email, "another-password")
	s.NoError(err)
}

func (s *PostgresStoreSuite) TestAuthenticateFailuresAreUniform() {
	ctx := context.Background()
	email := "auth-" + uuid.NewString() + "@school.example"

	_, err := s.store.CreateIdentity(ctx, email, "right-password")
	s.Require().NoError(err)

	_, wrongPass := s.store.Authenticate(ctx, email, "wrong-password")
	_, unknown := s.store.Authenticate(ctx, "nobody-"+uuid.NewString()+"@school.example", "whatever")

	s.True(dErrors.HasCode(wrongPass, dErrors.CodeUnauthorized))
	s.True(dErrors.HasCode(unknown, dErrors.CodeUnauthorized))
	s.Equal(wrongPass.Error(), unknown.Error(), "failure modes must be indistinguishable")
}
