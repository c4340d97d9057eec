package provisioning

import (
	"context"
	"errors"

	"scolara/internal/permission"
	"scolara/internal/profile"
	"scolara/internal/records"
	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/platform/sentinel"

	"go.uber.org/mock/gomock"
)

func (s *ServiceSuite) expectTeacherAllowed() {
	s.mockAuthz.EXPECT().
		Authorize(gomock.Any(), s.callerID, permission.TeacherCreate).
		Return(true, nil)
}

func (s *ServiceSuite) TestCreateTeacher_WithLogin() {
	identityID := id.NewUserID()
	in := TeacherInput{
		DisplayName:  "Ayesha Khan",
		Phone:        "0300-1234567",
		Salary:       90000,
		ContractType: records.ContractPermanent,
		CreateLogin:  true,
		Email:        "ayesha@school.test",
		Password:     "s3cret-pass",
	}

	s.expectTeacherAllowed()
	s.mockProfiles.EXPECT().FindByEmail(gomock.Any(), in.Email).Return(nil, sentinel.ErrNotFound)
	s.mockCreds.EXPECT().CreateIdentity(gomock.Any(), in.Email, in.Password).Return(identityID, nil)

	var upserted profile.Profile
	s.mockProfiles.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p profile.Profile) error {
			upserted = p
			return nil
		})

	s.mockWriter.EXPECT().WriteTeacher(gomock.Any(), gomock.Any(), &identityID).DoAndReturn(
		func(_ context.Context, fields records.TeacherFields, userID *id.UserID) (*records.Teacher, error) {
			s.Equal(in.DisplayName, fields.DisplayName)
			s.Equal(in.Salary, fields.Salary)
			return &records.Teacher{
				ID:           id.NewTeacherID(),
				UserID:       userID,
				EmployeeCode: "EMP-2026-0001",
				DisplayName:  fields.DisplayName,
			}, nil
		})

	result, err := s.service.CreateTeacher(s.ctx(), in)
	s.Require().NoError(err)
	s.Require().NotNil(result.IdentityID)
	s.Equal(identityID, *result.IdentityID)
	s.Equal("EMP-2026-0001", result.Teacher.EmployeeCode)

	s.Equal(identityID, upserted.ID)
	s.Equal(profile.RoleTeacher, upserted.Role)
	s.True(upserted.Active)
}

func (s *ServiceSuite) TestCreateTeacher_WithoutLogin() {
	s.expectTeacherAllowed()
	s.mockWriter.EXPECT().WriteTeacher(gomock.Any(), gomock.Any(), nil).Return(
		&records.Teacher{ID: id.NewTeacherID(), EmployeeCode: "EMP-2026-0002"}, nil)

	result, err := s.service.CreateTeacher(s.ctx(), TeacherInput{DisplayName: "Visiting Tutor"})
	s.Require().NoError(err)
	s.Nil(result.IdentityID)
}

func (s *ServiceSuite) TestCreateTeacher_Validation() {
	s.Run("missing display name", func() {
		s.expectTeacherAllowed()
		_, err := s.service.CreateTeacher(s.ctx(), TeacherInput{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("login without email", func() {
		s.expectTeacherAllowed()
		_, err := s.service.CreateTeacher(s.ctx(), TeacherInput{DisplayName: "T", CreateLogin: true, Password: "x"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown contract type", func() {
		s.expectTeacherAllowed()
		_, err := s.service.CreateTeacher(s.ctx(), TeacherInput{DisplayName: "T", ContractType: "freelance"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestCreateTeacher_PermissionDenied() {
	s.mockAuthz.EXPECT().
		Authorize(gomock.Any(), s.callerID, permission.TeacherCreate).
		Return(false, nil)

	_, err := s.service.CreateTeacher(s.ctx(), TeacherInput{DisplayName: "Ayesha Khan"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestCreateTeacher_DuplicateEmailPreCheck() {
	in := TeacherInput{DisplayName: "T", CreateLogin: true, Email: "taken@school.test", Password: "x"}

	s.expectTeacherAllowed()
	s.mockProfiles.EXPECT().FindByEmail(gomock.Any(), in.Email).
		Return(&profile.Profile{ID: id.NewUserID(), Email: in.Email}, nil)

	_, err := s.service.CreateTeacher(s.ctx(), in)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicate))
}

func (s *ServiceSuite) TestCreateTeacher_CredentialConflict() {
	in := TeacherInput{DisplayName: "T", CreateLogin: true, Email: "raced@school.test", Password: "x"}

	s.expectTeacherAllowed()
	s.mockProfiles.EXPECT().FindByEmail(gomock.Any(), in.Email).Return(nil, sentinel.ErrNotFound)
	s.mockCreds.EXPECT().CreateIdentity(gomock.Any(), in.Email, in.Password).
		Return(id.UserID{}, sentinel.ErrConflict)

	_, err := s.service.CreateTeacher(s.ctx(), in)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicate))
}

func (s *ServiceSuite) TestCreateTeacher_ProfileFailureRollsBackIdentity() {
	identityID := id.NewUserID()
	in := TeacherInput{DisplayName: "T", CreateLogin: true, Email: "t@school.test", Password: "x"}

	s.expectTeacherAllowed()
	s.mockProfiles.EXPECT().FindByEmail(gomock.Any(), in.Email).Return(nil, sentinel.ErrNotFound)
	s.mockCreds.EXPECT().CreateIdentity(gomock.Any(), in.Email, in.Password).Return(identityID, nil)
	s.mockProfiles.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(errors.New("profile db down"))
	s.mockCreds.EXPECT().DeleteIdentity(gomock.Any(), identityID).Return(nil)

	_, err := s.service.CreateTeacher(s.ctx(), in)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeProfileWrite))
}

func (s *ServiceSuite) TestCreateTeacher_RecordFailureRollsBackBoth() {
	identityID := id.NewUserID()
	in := TeacherInput{DisplayName: "T", CreateLogin: true, Email: "t@school.test", Password: "x"}

	s.expectTeacherAllowed()
	s.mockProfiles.EXPECT().FindByEmail(gomock.Any(), in.Email).Return(nil, sentinel.ErrNotFound)
	s.mockCreds.EXPECT().CreateIdentity(gomock.Any(), in.Email, in.Password).Return(identityID, nil)
	s.mockProfiles.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	s.mockWriter.EXPECT().WriteTeacher(gomock.Any(), gomock.Any(), &identityID).
		Return(nil, dErrors.New(dErrors.CodeRecordWrite, "could not write teacher record"))
	s.mockProfiles.EXPECT().Delete(gomock.Any(), identityID).Return(nil)
	s.mockCreds.EXPECT().DeleteIdentity(gomock.Any(), identityID).Return(nil)

	_, err := s.service.CreateTeacher(s.ctx(), in)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRecordWrite))
}

func (s *ServiceSuite) TestCreateTeacher_RollbackFailureKeepsOriginalError() {
	identityID := id.NewUserID()
	in := TeacherInput{DisplayName: "T", CreateLogin: true, Email: "t@school.test", Password: "x"}

	s.expectTeacherAllowed()
	s.mockProfiles.EXPECT().FindByEmail(gomock.Any(), in.Email).Return(nil, sentinel.ErrNotFound)
	s.mockCreds.EXPECT().CreateIdentity(gomock.Any(), in.Email, in.Password).Return(identityID, nil)
	s.mockProfiles.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	s.mockWriter.EXPECT().WriteTeacher(gomock.Any(), gomock.Any(), &identityID).
		Return(nil, dErrors.New(dErrors.CodeRecordWrite, "could not write teacher record"))
	s.mockProfiles.EXPECT().Delete(gomock.Any(), identityID).Return(errors.New("delete failed"))
	s.mockCreds.EXPECT().DeleteIdentity(gomock.Any(), identityID).Return(errors.New("delete failed"))

	_, err := s.service.CreateTeacher(s.ctx(), in)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRecordWrite))
}
