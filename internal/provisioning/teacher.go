package provisioning

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"scolara/internal/audit"
	"scolara/internal/permission"
	"scolara/internal/profile"
	"scolara/internal/records"
	id "scolara/pkg/domain"
	"scolara/pkg/requestcontext"
)

// CreateTeacher provisions a teacher: optional login (identity plus profile),
// then the domain record with its employee code. A record write failure
// unwinds the login steps.
func (s *Service) CreateTeacher(ctx context.Context, in TeacherInput) (*TeacherResult, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.CreateTeacher")
	defer span.End()
	start := time.Now()

	callerID := requestcontext.CallerID(ctx)
	if err := s.authorize(ctx, callerID, permission.TeacherCreate); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var identityID *id.UserID
	if in.CreateLogin {
		created, err := s.provisionLogin(ctx, string(records.KindTeacher), profile.Profile{
			DisplayName: in.DisplayName,
			Role:        profile.RoleTeacher,
			Phone:       in.Phone,
		}, in.Email, in.Password)
		if err != nil {
			return nil, err
		}
		identityID = &created
	}

	teacher, err := s.writer.WriteTeacher(ctx, records.TeacherFields{
		DisplayName:  in.DisplayName,
		Email:        in.Email,
		Phone:        in.Phone,
		Salary:       in.Salary,
		ContractType: in.ContractType,
	}, identityID)
	if err != nil {
		if identityID != nil {
			s.rollbackProvisioned(ctx, string(records.KindTeacher), *identityID)
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("teacher.id", teacher.ID.String()))

	s.logger.InfoContext(ctx, "teacher provisioned",
		"teacher_id", teacher.ID.String(), "employee_code", teacher.EmployeeCode, "login", in.CreateLogin)
	s.logAudit(ctx, audit.Event{
		ActorID: callerID.String(),
		Subject: teacher.ID.String(),
		Action:  audit.EventTeacherProvisioned,
	})
	if s.metrics != nil {
		s.metrics.ProvisionedTotal.WithLabelValues(string(records.KindTeacher)).Inc()
		s.metrics.ObserveFlow(string(records.KindTeacher), start)
	}
	return &TeacherResult{Teacher: teacher, IdentityID: identityID}, nil
}
