package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scolara/internal/guardian"
	"scolara/internal/permission"
	"scolara/internal/transport/http/shared"
	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/requestcontext"
)

// GuardianLookup searches for an existing guardian by national ID.
type GuardianLookup interface {
	FindByNationalID(ctx context.Context, nid string) (*guardian.Match, error)
}

// PermissionChecker is the slice of the resolver the transport needs.
type PermissionChecker interface {
	Authorize(ctx context.Context, callerID id.UserID, perm permission.Permission) (bool, error)
}

// GuardianHandler exposes the sibling-detection lookup used by the student
// admission form.
type GuardianHandler struct {
	logger *slog.Logger
	linker GuardianLookup
	authz  PermissionChecker
}

func NewGuardianHandler(linker GuardianLookup, authz PermissionChecker, logger *slog.Logger) *GuardianHandler {
	return &GuardianHandler{logger: logger, linker: linker, authz: authz}
}

func (h *GuardianHandler) Register(r chi.Router) {
	r.Get("/guardians/lookup", h.handleLookup)
}

type lookupResponse struct {
	Found bool            `json:"found"`
	Match *guardian.Match `json:"match,omitempty"`
}

func (h *GuardianHandler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	callerID := requestcontext.CallerID(ctx)
	allowed, err := h.authz.Authorize(ctx, callerID, permission.GuardianLookup)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not resolve caller permissions"))
		return
	}
	if !allowed {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "caller may not look up guardians"))
		return
	}

	nid := r.URL.Query().Get("national_id")
	if nid == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "national_id is required"))
		return
	}

	match, err := h.linker.FindByNationalID(ctx, nid)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, lookupResponse{Found: match != nil, Match: match})
}
