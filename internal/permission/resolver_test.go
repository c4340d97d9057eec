package permission_test

import (
	"context"
	"testing"

	"scolara/internal/permission"
	"scolara/internal/profile"
	profileStore "scolara/internal/profile/store"
	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"

	"github.com/stretchr/testify/suite"
)

type ResolverSuite struct {
	suite.Suite
	profiles  *profileStore.InMemoryStore
	overrides *permission.InMemoryOverrideStore
	resolver  *permission.Resolver
	ctx       context.Context
}

func (s *ResolverSuite) SetupTest() {
	s.profiles = profileStore.NewInMemory()
	s.overrides = permission.NewInMemoryOverrides()
	s.resolver = permission.NewResolver(s.profiles, s.overrides)
	s.ctx = context.Background()
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) seed(role profile.Role, active bool) id.UserID {
	userID := id.NewUserID()
	s.Require().NoError(s.profiles.Upsert(s.ctx, profile.Profile{
		ID:          userID,
		Email:       userID.String() + "@school.test",
		DisplayName: string(role),
		Role:        role,
		Active:      active,
	}))
	return userID
}

func (s *ResolverSuite) TestAuthorize() {
	s.Run("role table grants pass", func() {
		admin := s.seed(profile.RoleAdmin, true)
		allowed, err := s.resolver.Authorize(s.ctx, admin, permission.TeacherCreate)
		s.Require().NoError(err)
		s.True(allowed)
	})

	s.Run("missing permission is a clean deny, not an error", func() {
		accountant := s.seed(profile.RoleAccountant, true)
		allowed, err := s.resolver.Authorize(s.ctx, accountant, permission.TeacherCreate)
		s.Require().NoError(err)
		s.False(allowed)
	})

	s.Run("nil caller is denied", func() {
		allowed, err := s.resolver.Authorize(s.ctx, id.UserID{}, permission.ReportView)
		s.Require().NoError(err)
		s.False(allowed)
	})

	s.Run("unknown caller is denied", func() {
		allowed, err := s.resolver.Authorize(s.ctx, id.NewUserID(), permission.ReportView)
		s.Require().NoError(err)
		s.False(allowed)
	})

	s.Run("inactive caller is denied regardless of role", func() {
		suspended := s.seed(profile.RoleSuperAdmin, false)
		allowed, err := s.resolver.Authorize(s.ctx, suspended, permission.ReportView)
		s.Require().NoError(err)
		s.False(allowed)
	})
}

func (s *ResolverSuite) TestOverridesAreAdditive() {
	accountant := s.seed(profile.RoleAccountant, true)

	allowed, err := s.resolver.Authorize(s.ctx, accountant, permission.TeacherCreate)
	s.Require().NoError(err)
	s.Require().False(allowed)

	s.Require().NoError(s.overrides.Grant(s.ctx, accountant, permission.TeacherCreate))

	allowed, err = s.resolver.Authorize(s.ctx, accountant, permission.TeacherCreate)
	s.Require().NoError(err)
	s.True(allowed)

	// Revoking an override never subtracts what the role table grants.
	s.Require().NoError(s.overrides.Revoke(s.ctx, accountant, permission.TeacherCreate))
	s.Require().NoError(s.overrides.Revoke(s.ctx, accountant, permission.FeeManage))

	allowed, err = s.resolver.Authorize(s.ctx, accountant, permission.FeeManage)
	s.Require().NoError(err)
	s.True(allowed, "role-table permission must survive an override revoke")
}

func (s *ResolverSuite) TestRequireRole() {
	admin := s.seed(profile.RoleAdmin, true)
	teacher := s.seed(profile.RoleTeacher, true)
	inactive := s.seed(profile.RoleAdmin, false)

	s.Run("allowed role passes", func() {
		s.NoError(s.resolver.RequireRole(s.ctx, admin, profile.RoleSuperAdmin, profile.RoleAdmin))
	})

	s.Run("role outside the allow list is forbidden", func() {
		err := s.resolver.RequireRole(s.ctx, teacher, profile.RoleSuperAdmin, profile.RoleAdmin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("overrides do not open RequireRole", func() {
		s.Require().NoError(s.overrides.Grant(s.ctx, teacher, permission.OperatorManage))
		err := s.resolver.RequireRole(s.ctx, teacher, profile.RoleSuperAdmin, profile.RoleAdmin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown caller is unauthenticated", func() {
		err := s.resolver.RequireRole(s.ctx, id.NewUserID(), profile.RoleAdmin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("nil caller is unauthenticated", func() {
		err := s.resolver.RequireRole(s.ctx, id.UserID{}, profile.RoleAdmin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("inactive caller is forbidden", func() {
		err := s.resolver.RequireRole(s.ctx, inactive, profile.RoleAdmin)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestEffectiveIsAPureUnion(t *testing.T) {
	base := permission.RolePermissions(profile.RoleAccountant)
	overrides := permission.NewSet(permission.TeacherCreate)

	effective := permission.Effective(profile.RoleAccountant, overrides)

	if !effective.Has(permission.TeacherCreate) || !effective.Has(permission.FeeManage) {
		t.Fatalf("effective set missing expected members: %v", effective)
	}
	// Inputs are untouched.
	if base.Has(permission.TeacherCreate) {
		t.Fatal("union mutated the role table set")
	}
	if overrides.Has(permission.FeeManage) {
		t.Fatal("union mutated the overrides set")
	}
}

func TestRolePermissionsUnknownRole(t *testing.T) {
	set := permission.RolePermissions(profile.Role("janitor"))
	if len(set) != 0 {
		t.Fatalf("unknown role must get the empty set, got %v", set)
	}
}
