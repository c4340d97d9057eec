package provisioning

import (
	"context"
	"errors"

	"scolara/internal/permission"
	"scolara/internal/profile"
	"scolara/internal/records"
	"scolara/internal/relationship"
	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/platform/sentinel"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

func (s *ServiceSuite) expectStudentAllowed() {
	s.mockAuthz.EXPECT().
		Authorize(gomock.Any(), s.callerID, permission.StudentCreate).
		Return(true, nil)
}

func (s *ServiceSuite) newStudentInput() StudentInput {
	return StudentInput{
		DisplayName:       "Bilal Ahmed",
		FatherName:        "Ahmed Raza",
		FatherNationalID:  "35202-1234567-1",
		ClassName:         "Grade 5",
		Section:           "B",
		AcademicSessionID: id.AcademicSessionID(uuid.New()),
	}
}

func (s *ServiceSuite) TestCreateStudent_WithGuardianLogin() {
	guardianID := id.NewUserID()
	studentID := id.NewStudentID()

	in := s.newStudentInput()
	in.CreateGuardianLogin = true
	in.GuardianDisplayName = "Ahmed Raza"
	in.GuardianEmail = "ahmed@family.test"
	in.GuardianPassword = "guardian-pass"
	in.GuardianRelation = relationship.RelationFather

	s.expectStudentAllowed()
	s.mockProfiles.EXPECT().FindByEmail(gomock.Any(), in.GuardianEmail).Return(nil, sentinel.ErrNotFound)
	s.mockCreds.EXPECT().CreateIdentity(gomock.Any(), in.GuardianEmail, in.GuardianPassword).Return(guardianID, nil)

	var upserted profile.Profile
	s.mockProfiles.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p profile.Profile) error {
			upserted = p
			return nil
		})

	s.mockWriter.EXPECT().WriteStudent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fields records.StudentFields) (*records.Student, error) {
			s.Equal(in.FatherNationalID, fields.FatherNationalID)
			return &records.Student{ID: studentID, RegistrationNumber: "REG-2026-0001"}, nil
		})

	var link relationship.Link
	s.mockLinks.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, l relationship.Link) error {
			link = l
			return nil
		})

	result, err := s.service.CreateStudent(s.ctx(), in)
	s.Require().NoError(err)
	s.Empty(result.Warning)
	s.Require().NotNil(result.GuardianID)
	s.Equal(guardianID, *result.GuardianID)

	s.Equal(profile.RoleParent, upserted.Role)
	s.Equal(guardianID, link.GuardianID)
	s.Equal(studentID, link.StudentID)
	s.Equal(relationship.RelationFather, link.Relation)
	s.True(link.Primary)
}

func (s *ServiceSuite) TestCreateStudent_GuardianNameDerivedFromEmail() {
	guardianID := id.NewUserID()

	in := s.newStudentInput()
	in.CreateGuardianLogin = true
	in.GuardianEmail = "ahmed.raza@family.test"
	in.GuardianPassword = "guardian-pass"

	s.expectStudentAllowed()
	s.mockProfiles.EXPECT().FindByEmail(gomock.Any(), in.GuardianEmail).Return(nil, sentinel.ErrNotFound)
	s.mockCreds.EXPECT().CreateIdentity(gomock.Any(), in.GuardianEmail, in.GuardianPassword).Return(guardianID, nil)

	var upserted profile.Profile
	s.mockProfiles.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p profile.Profile) error {
			upserted = p
			return nil
		})

	s.mockWriter.EXPECT().WriteStudent(gomock.Any(), gomock.Any()).
		Return(&records.Student{ID: id.NewStudentID()}, nil)
	s.mockLinks.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.CreateStudent(s.ctx(), in)
	s.Require().NoError(err)
	s.Equal("Ahmed Raza", upserted.DisplayName)
}

func (s *ServiceSuite) TestCreateStudent_SiblingPathSkipsIdentity() {
	existingGuardian := id.NewUserID()
	studentID := id.NewStudentID()

	in := s.newStudentInput()
	in.LinkExistingGuardianID = &existingGuardian
	in.GuardianRelation = relationship.RelationFather

	s.expectStudentAllowed()
	s.mockWriter.EXPECT().WriteStudent(gomock.Any(), gomock.Any()).
		Return(&records.Student{ID: studentID, RegistrationNumber: "REG-2026-0002"}, nil)
	s.mockLinks.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, l relationship.Link) error {
			s.Equal(existingGuardian, l.GuardianID)
			return nil
		})

	result, err := s.service.CreateStudent(s.ctx(), in)
	s.Require().NoError(err)
	s.Require().NotNil(result.GuardianID)
	s.Equal(existingGuardian, *result.GuardianID)
}

func (s *ServiceSuite) TestCreateStudent_NoGuardian() {
	s.expectStudentAllowed()
	s.mockWriter.EXPECT().WriteStudent(gomock.Any(), gomock.Any()).
		Return(&records.Student{ID: id.NewStudentID()}, nil)

	result, err := s.service.CreateStudent(s.ctx(), s.newStudentInput())
	s.Require().NoError(err)
	s.Nil(result.GuardianID)
	s.Empty(result.Warning)
}

func (s *ServiceSuite) TestCreateStudent_LinkFailureIsNonFatal() {
	existingGuardian := id.NewUserID()

	in := s.newStudentInput()
	in.LinkExistingGuardianID = &existingGuardian

	s.expectStudentAllowed()
	s.mockWriter.EXPECT().WriteStudent(gomock.Any(), gomock.Any()).
		Return(&records.Student{ID: id.NewStudentID(), RegistrationNumber: "REG-2026-0003"}, nil)
	s.mockLinks.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("link db down"))

	result, err := s.service.CreateStudent(s.ctx(), in)
	s.Require().NoError(err)
	s.NotNil(result.Student)
	s.NotEmpty(result.Warning)
}

func (s *ServiceSuite) TestCreateStudent_RecordFailureRollsBackGuardianLogin() {
	guardianID := id.NewUserID()

	in := s.newStudentInput()
	in.CreateGuardianLogin = true
	in.GuardianDisplayName = "Ahmed Raza"
	in.GuardianEmail = "ahmed@family.test"
	in.GuardianPassword = "guardian-pass"

	s.expectStudentAllowed()
	s.mockProfiles.EXPECT().FindByEmail(gomock.Any(), in.GuardianEmail).Return(nil, sentinel.ErrNotFound)
	s.mockCreds.EXPECT().CreateIdentity(gomock.Any(), in.GuardianEmail, in.GuardianPassword).Return(guardianID, nil)
	s.mockProfiles.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	s.mockWriter.EXPECT().WriteStudent(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeRecordWrite, "could not write student record"))
	s.mockProfiles.EXPECT().Delete(gomock.Any(), guardianID).Return(nil)
	s.mockCreds.EXPECT().DeleteIdentity(gomock.Any(), guardianID).Return(nil)

	_, err := s.service.CreateStudent(s.ctx(), in)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRecordWrite))
}

func (s *ServiceSuite) TestCreateStudent_RecordFailureOnSiblingPathLeavesGuardianAlone() {
	existingGuardian := id.NewUserID()

	in := s.newStudentInput()
	in.LinkExistingGuardianID = &existingGuardian

	s.expectStudentAllowed()
	s.mockWriter.EXPECT().WriteStudent(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeRecordWrite, "could not write student record"))

	_, err := s.service.CreateStudent(s.ctx(), in)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRecordWrite))
}

func (s *ServiceSuite) TestCreateStudent_Validation() {
	s.Run("guardian login and existing guardian are mutually exclusive", func() {
		s.expectStudentAllowed()
		existing := id.NewUserID()
		in := s.newStudentInput()
		in.CreateGuardianLogin = true
		in.GuardianDisplayName = "A"
		in.GuardianEmail = "a@b.test"
		in.GuardianPassword = "x"
		in.LinkExistingGuardianID = &existing

		_, err := s.service.CreateStudent(s.ctx(), in)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing class", func() {
		s.expectStudentAllowed()
		in := s.newStudentInput()
		in.ClassName = ""
		_, err := s.service.CreateStudent(s.ctx(), in)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing academic session", func() {
		s.expectStudentAllowed()
		in := s.newStudentInput()
		in.AcademicSessionID = id.AcademicSessionID{}
		_, err := s.service.CreateStudent(s.ctx(), in)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestCreateStudent_PermissionDenied() {
	s.mockAuthz.EXPECT().
		Authorize(gomock.Any(), s.callerID, permission.StudentCreate).
		Return(false, nil)

	_, err := s.service.CreateStudent(s.ctx(), s.newStudentInput())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}
