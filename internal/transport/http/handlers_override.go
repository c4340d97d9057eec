package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scolara/internal/audit"
	"scolara/internal/permission"
	"scolara/internal/profile"
	"scolara/internal/transport/http/shared"
	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/requestcontext"
)

// OverrideStore grants and revokes per-user permission overrides.
type OverrideStore interface {
	Grant(ctx context.Context, userID id.UserID, perm permission.Permission) error
	Revoke(ctx context.Context, userID id.UserID, perm permission.Permission) error
}

// RoleChecker gates override management to administrative roles.
type RoleChecker interface {
	RequireRole(ctx context.Context, callerID id.UserID, roles ...profile.Role) error
}

// AuditPublisher captures override changes for the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// OverrideHandler manages per-user permission overrides. Overrides are
// additive grants on top of the role table; revoking one never subtracts
// from what the role already allows.
type OverrideHandler struct {
	logger    *slog.Logger
	overrides OverrideStore
	authz     RoleChecker
	audit     AuditPublisher
}

func NewOverrideHandler(overrides OverrideStore, authz RoleChecker, publisher AuditPublisher, logger *slog.Logger) *OverrideHandler {
	return &OverrideHandler{logger: logger, overrides: overrides, authz: authz, audit: publisher}
}

func (h *OverrideHandler) Register(r chi.Router) {
	r.Post("/permissions/overrides", h.handleGrant)
	r.Delete("/permissions/overrides", h.handleRevoke)
}

type overrideRequest struct {
	UserID     string                `json:"user_id"`
	Permission permission.Permission `json:"permission"`
}

func (h *OverrideHandler) parse(w http.ResponseWriter, r *http.Request) (id.UserID, permission.Permission, bool) {
	ctx := r.Context()

	if err := h.authz.RequireRole(ctx, requestcontext.CallerID(ctx), profile.RoleSuperAdmin); err != nil {
		shared.WriteError(w, err)
		return id.UserID{}, "", false
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return id.UserID{}, "", false
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		shared.WriteError(w, err)
		return id.UserID{}, "", false
	}
	if !req.Permission.Valid() {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "unknown permission"))
		return id.UserID{}, "", false
	}
	return userID, req.Permission, true
}

func (h *OverrideHandler) handleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, perm, ok := h.parse(w, r)
	if !ok {
		return
	}

	if err := h.overrides.Grant(ctx, userID, perm); err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not grant override"))
		return
	}
	h.emit(ctx, audit.EventOverrideGranted, userID, perm)
	w.WriteHeader(http.StatusNoContent)
}

func (h *OverrideHandler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, perm, ok := h.parse(w, r)
	if !ok {
		return
	}

	if err := h.overrides.Revoke(ctx, userID, perm); err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not revoke override"))
		return
	}
	h.emit(ctx, audit.EventOverrideRevoked, userID, perm)
	w.WriteHeader(http.StatusNoContent)
}

func (h *OverrideHandler) emit(ctx context.Context, action string, userID id.UserID, perm permission.Permission) {
	if h.audit == nil {
		return
	}
	err := h.audit.Emit(ctx, audit.Event{
		ActorID: requestcontext.CallerID(ctx).String(),
		Subject: userID.String(),
		Action:  action,
		Reason:  string(perm),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to emit audit event", "action", action, "error", err)
	}
}
