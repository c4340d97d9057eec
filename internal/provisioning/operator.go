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

// CreateOperator provisions a back-office operator. On top of the permission
// check, operator management is restricted to administrative roles outright;
// a permission override alone is not enough to reach this flow.
func (s *Service) CreateOperator(ctx context.Context, in OperatorInput) (*OperatorResult, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.CreateOperator")
	defer span.End()
	start := time.Now()

	callerID := requestcontext.CallerID(ctx)
	if err := s.authz.RequireRole(ctx, callerID, profile.RoleSuperAdmin, profile.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, callerID, permission.OperatorManage); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var identityID *id.UserID
	if in.CreateLogin {
		created, err := s.provisionLogin(ctx, string(records.KindOperator), profile.Profile{
			DisplayName: in.DisplayName,
			Role:        in.Role,
			Phone:       in.Phone,
		}, in.Email, in.Password)
		if err != nil {
			return nil, err
		}
		identityID = &created
	}

	operator, err := s.writer.WriteOperator(ctx, records.OperatorFields{
		DisplayName: in.DisplayName,
		Email:       in.Email,
		Phone:       in.Phone,
	}, identityID)
	if err != nil {
		if identityID != nil {
			s.rollbackProvisioned(ctx, string(records.KindOperator), *identityID)
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("operator.id", operator.ID.String()))

	s.logger.InfoContext(ctx, "operator provisioned",
		"operator_id", operator.ID.String(), "staff_code", operator.StaffCode,
		"role", string(in.Role), "login", in.CreateLogin)
	s.logAudit(ctx, audit.Event{
		ActorID: callerID.String(),
		Subject: operator.ID.String(),
		Action:  audit.EventOperatorProvisioned,
		Reason:  string(in.Role),
	})
	if s.metrics != nil {
		s.metrics.ProvisionedTotal.WithLabelValues(string(records.KindOperator)).Inc()
		s.metrics.ObserveFlow(string(records.KindOperator), start)
	}
	return &OperatorResult{Operator: operator, IdentityID: identityID}, nil
}
