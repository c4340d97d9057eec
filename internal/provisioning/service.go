// Package provisioning orchestrates the multi-step creation of teachers,
// students and operators: identity, profile, domain record and guardian link,
// with compensating deletes when a later step fails.
package provisioning

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"scolara/internal/audit"
	"scolara/internal/permission"
	"scolara/internal/platform/metrics"
	"scolara/internal/profile"
	"scolara/internal/records"
	"scolara/internal/relationship"
	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/platform/sentinel"
	"scolara/pkg/requestcontext"
)

// CredentialStore is the identity backend. CreateIdentity is the only step
// with an external uniqueness guarantee; DeleteIdentity is its compensating
// action and must be idempotent.
type CredentialStore interface {
	CreateIdentity(ctx context.Context, email, password string) (id.UserID, error)
	DeleteIdentity(ctx context.Context, userID id.UserID) error
}

// ProfileStore is the slice of the profile store the orchestrator needs.
type ProfileStore interface {
	Upsert(ctx context.Context, p profile.Profile) error
	FindByEmail(ctx context.Context, email string) (*profile.Profile, error)
	Delete(ctx context.Context, userID id.UserID) error
}

// RecordWriter persists domain records and assigns their display codes.
type RecordWriter interface {
	WriteTeacher(ctx context.Context, fields records.TeacherFields, userID *id.UserID) (*records.Teacher, error)
	WriteStudent(ctx context.Context, fields records.StudentFields) (*records.Student, error)
	WriteOperator(ctx context.Context, fields records.OperatorFields, userID *id.UserID) (*records.Operator, error)
}

// LinkStore writes guardian-student edges.
type LinkStore interface {
	Insert(ctx context.Context, link relationship.Link) error
}

// Authorizer gates every mutation before step one runs.
type Authorizer interface {
	Authorize(ctx context.Context, callerID id.UserID, perm permission.Permission) (bool, error)
	RequireRole(ctx context.Context, callerID id.UserID, roles ...profile.Role) error
}

// AuditPublisher captures provisioning events for the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the provisioning flows.
type Service struct {
	creds    CredentialStore
	profiles ProfileStore
	writer   RecordWriter
	links    LinkStore
	authz    Authorizer
	logger   *slog.Logger
	audit    AuditPublisher
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// Option configures optional service dependencies.
type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(creds CredentialStore, profiles ProfileStore, writer RecordWriter, links LinkStore, authz Authorizer, opts ...Option) *Service {
	s := &Service{
		creds:    creds,
		profiles: profiles,
		writer:   writer,
		links:    links,
		authz:    authz,
		logger:   slog.Default(),
		tracer:   otel.Tracer("scolara/provisioning"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// authorize resolves the caller's effective permissions and turns a denial
// into a forbidden error so flows stop before any step runs.
func (s *Service) authorize(ctx context.Context, callerID id.UserID, perm permission.Permission) error {
	allowed, err := s.authz.Authorize(ctx, callerID, perm)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not resolve caller permissions")
	}
	if !allowed {
		// The resolver already counted and logged the denial.
		return dErrors.New(dErrors.CodeForbidden, "caller may not perform this action")
	}
	return nil
}

// provisionLogin runs the identity and profile steps shared by all flows that
// create a login. The duplicate pre-check against the profile store is an
// optimization; the credential store's uniqueness constraint is the final
// authority and a conflict from it maps to the same duplicate error.
func (s *Service) provisionLogin(ctx context.Context, kind string, p profile.Profile, email, password string) (id.UserID, error) {
	if existing, err := s.profiles.FindByEmail(ctx, email); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not check email availability")
	} else if existing != nil {
		return id.UserID{}, dErrors.New(dErrors.CodeDuplicate, "email is already in use")
	}

	identityID, err := s.creds.CreateIdentity(ctx, email, password)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return id.UserID{}, dErrors.Wrap(err, dErrors.CodeDuplicate, "email is already in use")
		}
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeIdentityCreate, "could not create identity")
	}

	p.ID = identityID
	p.Email = email
	p.Active = true
	if err := s.profiles.Upsert(ctx, p); err != nil {
		s.rollbackIdentity(ctx, kind, identityID)
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeProfileWrite, "could not write profile")
	}
	return identityID, nil
}

// rollbackIdentity compensates a created identity after a later step failed.
// A failed delete leaves an orphaned identity; that is logged and counted but
// never surfaced, the original failure is what the caller sees.
func (s *Service) rollbackIdentity(ctx context.Context, kind string, identityID id.UserID) {
	if s.metrics != nil {
		s.metrics.RollbacksTotal.WithLabelValues(kind).Inc()
	}
	if err := s.creds.DeleteIdentity(ctx, identityID); err != nil {
		s.logger.ErrorContext(ctx, "compensating identity delete failed, identity orphaned",
			"identity_id", identityID.String(), "kind", kind, "error", err)
		if s.metrics != nil {
			s.metrics.RollbackFailures.Inc()
		}
		return
	}
	s.logAudit(ctx, audit.Event{
		ActorID: requestcontext.CallerID(ctx).String(),
		Subject: identityID.String(),
		Action:  audit.EventIdentityRolledBack,
		Reason:  kind,
	})
}

// rollbackProvisioned unwinds both the profile and the identity, in reverse
// creation order.
func (s *Service) rollbackProvisioned(ctx context.Context, kind string, identityID id.UserID) {
	if err := s.profiles.Delete(ctx, identityID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.ErrorContext(ctx, "compensating profile delete failed",
			"identity_id", identityID.String(), "kind", kind, "error", err)
		if s.metrics != nil {
			s.metrics.RollbackFailures.Inc()
		}
	}
	s.rollbackIdentity(ctx, kind, identityID)
}

// logAudit emits an audit event when a publisher is configured. Audit is
// best-effort; failures are logged and never fail the flow.
func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
