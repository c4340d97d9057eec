package provisioning

import (
	"context"

	"scolara/internal/permission"
	"scolara/internal/profile"
	"scolara/internal/records"
	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/platform/sentinel"

	"go.uber.org/mock/gomock"
)

func (s *ServiceSuite) expectOperatorAllowed() {
	s.mockAuthz.EXPECT().
		RequireRole(gomock.Any(), s.callerID, profile.RoleSuperAdmin, profile.RoleAdmin).
		Return(nil)
	s.mockAuthz.EXPECT().
		Authorize(gomock.Any(), s.callerID, permission.OperatorManage).
		Return(true, nil)
}

func (s *ServiceSuite) TestCreateOperator_WithLogin() {
	identityID := id.NewUserID()
	in := OperatorInput{
		DisplayName: "Front Desk",
		Role:        profile.RoleAccountant,
		CreateLogin: true,
		Email:       "desk@school.test",
		Password:    "desk-pass",
	}

	s.expectOperatorAllowed()
	s.mockProfiles.EXPECT().FindByEmail(gomock.Any(), in.Email).Return(nil, sentinel.ErrNotFound)
	s.mockCreds.EXPECT().CreateIdentity(gomock.Any(), in.Email, in.Password).Return(identityID, nil)

	var upserted profile.Profile
	s.mockProfiles.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p profile.Profile) error {
			upserted = p
			return nil
		})
	s.mockWriter.EXPECT().WriteOperator(gomock.Any(), gomock.Any(), &identityID).
		Return(&records.Operator{ID: id.NewOperatorID(), StaffCode: "OPR-2026-0001"}, nil)

	result, err := s.service.CreateOperator(s.ctx(), in)
	s.Require().NoError(err)
	s.Require().NotNil(result.IdentityID)
	s.Equal("OPR-2026-0001", result.Operator.StaffCode)
	s.Equal(profile.RoleAccountant, upserted.Role)
}

func (s *ServiceSuite) TestCreateOperator_DefaultsToOperatorRole() {
	s.expectOperatorAllowed()
	s.mockWriter.EXPECT().WriteOperator(gomock.Any(), gomock.Any(), nil).
		Return(&records.Operator{ID: id.NewOperatorID(), StaffCode: "OPR-2026-0002"}, nil)

	result, err := s.service.CreateOperator(s.ctx(), OperatorInput{DisplayName: "Clerk"})
	s.Require().NoError(err)
	s.Nil(result.IdentityID)
}

func (s *ServiceSuite) TestCreateOperator_RoleGate() {
	s.mockAuthz.EXPECT().
		RequireRole(gomock.Any(), s.callerID, profile.RoleSuperAdmin, profile.RoleAdmin).
		Return(dErrors.New(dErrors.CodeForbidden, "caller role not permitted"))

	_, err := s.service.CreateOperator(s.ctx(), OperatorInput{DisplayName: "Clerk"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestCreateOperator_PermissionDenied() {
	s.mockAuthz.EXPECT().
		RequireRole(gomock.Any(), s.callerID, profile.RoleSuperAdmin, profile.RoleAdmin).
		Return(nil)
	s.mockAuthz.EXPECT().
		Authorize(gomock.Any(), s.callerID, permission.OperatorManage).
		Return(false, nil)

	_, err := s.service.CreateOperator(s.ctx(), OperatorInput{DisplayName: "Clerk"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestCreateOperator_RejectsNonBackOfficeRole() {
	s.expectOperatorAllowed()

	_, err := s.service.CreateOperator(s.ctx(), OperatorInput{DisplayName: "Clerk", Role: profile.RoleTeacher})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
