package provisioning

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"scolara/internal/audit"
	"scolara/internal/permission"
	"scolara/internal/profile"
	"scolara/internal/records"
	"scolara/internal/relationship"
	id "scolara/pkg/domain"
	"scolara/pkg/requestcontext"
)

// CreateStudent provisions a student record and, depending on the input,
// either a fresh guardian login or a link to an existing guardian (the
// sibling path, which creates no identity). The student itself never gets a
// login; the provisioned identity belongs to the guardian. A record write
// failure unwinds the guardian login; a link failure after the record is
// written is non-fatal and reported as a warning.
func (s *Service) CreateStudent(ctx context.Context, in StudentInput) (*StudentResult, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.CreateStudent")
	defer span.End()
	start := time.Now()

	callerID := requestcontext.CallerID(ctx)
	if err := s.authorize(ctx, callerID, permission.StudentCreate); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		guardianID   *id.UserID
		createdLogin bool
	)
	switch {
	case in.LinkExistingGuardianID != nil:
		guardianID = in.LinkExistingGuardianID
	case in.CreateGuardianLogin:
		created, err := s.provisionLogin(ctx, string(records.KindStudent), profile.Profile{
			DisplayName: in.GuardianDisplayName,
			Role:        profile.RoleParent,
			Phone:       in.GuardianPhone,
		}, in.GuardianEmail, in.GuardianPassword)
		if err != nil {
			return nil, err
		}
		guardianID = &created
		createdLogin = true
	}

	student, err := s.writer.WriteStudent(ctx, records.StudentFields{
		DisplayName:       in.DisplayName,
		FatherName:        in.FatherName,
		MotherName:        in.MotherName,
		FatherNationalID:  in.FatherNationalID,
		MotherNationalID:  in.MotherNationalID,
		ClassName:         in.ClassName,
		Section:           in.Section,
		AcademicSessionID: in.AcademicSessionID,
	})
	if err != nil {
		if createdLogin {
			s.rollbackProvisioned(ctx, string(records.KindStudent), *guardianID)
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("student.id", student.ID.String()))

	result := &StudentResult{Student: student, GuardianID: guardianID}
	if guardianID != nil {
		link := relationship.Link{
			ID:         id.NewLinkID(),
			GuardianID: *guardianID,
			StudentID:  student.ID,
			Relation:   in.GuardianRelation,
			Primary:    true,
			CreatedAt:  requestcontext.Now(ctx),
		}
		if err := s.links.Insert(ctx, link); err != nil {
			s.logger.WarnContext(ctx, "guardian link failed after student record was written",
				"student_id", student.ID.String(), "guardian_id", guardianID.String(), "error", err)
			if s.metrics != nil {
				s.metrics.LinkFailures.Inc()
			}
			result.Warning = "student created but guardian link failed; link the guardian manually"
		} else {
			s.logAudit(ctx, audit.Event{
				ActorID: callerID.String(),
				Subject: student.ID.String(),
				Action:  audit.EventGuardianLinked,
				Reason:  string(in.GuardianRelation),
			})
		}
	}

	s.logger.InfoContext(ctx, "student provisioned",
		"student_id", student.ID.String(), "registration_number", student.RegistrationNumber,
		"guardian_login", createdLogin, "sibling_link", in.LinkExistingGuardianID != nil)
	s.logAudit(ctx, audit.Event{
		ActorID: callerID.String(),
		Subject: student.ID.String(),
		Action:  audit.EventStudentProvisioned,
	})
	if s.metrics != nil {
		s.metrics.ProvisionedTotal.WithLabelValues(string(records.KindStudent)).Inc()
		s.metrics.ObserveFlow(string(records.KindStudent), start)
	}
	return result, nil
}
