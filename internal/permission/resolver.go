package permission

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"scolara/internal/profile"
	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
	"scolara/pkg/platform/sentinel"
)

// ProfileReader is the slice of the profile store the resolver needs to map
// a caller to their role.
type ProfileReader interface {
	FindByID(ctx context.Context, userID id.UserID) (*profile.Profile, error)
}

// Resolver answers authorization questions. It is a pure read path: safe to
// call repeatedly within one request, no side effects beyond metrics.
type Resolver struct {
	profiles  ProfileReader
	overrides OverrideStore
	logger    *slog.Logger
	denied    prometheus.Counter
}

type ResolverOption func(r *Resolver)

func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

func WithDeniedCounter(counter prometheus.Counter) ResolverOption {
	return func(r *Resolver) { r.denied = counter }
}

func NewResolver(profiles ProfileReader, overrides OverrideStore, opts ...ResolverOption) *Resolver {
	r := &Resolver{profiles: profiles, overrides: overrides}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Authorize reports whether the caller may perform the action. Denial is
// (false, nil), never an error: callers translate false into a user-facing
// forbidden result. The error return is reserved for infrastructure
// failures on the override read.
func (r *Resolver) Authorize(ctx context.Context, callerID id.UserID, perm Permission) (bool, error) {
	if callerID.IsNil() {
		return false, nil
	}

	caller, err := r.profiles.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Unknown caller has no permissions; not an error.
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "could not load caller profile")
	}
	if !caller.Active {
		return false, nil
	}

	overrides, err := r.overrides.OverridesFor(ctx, callerID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "could not load permission overrides")
	}

	allowed := Effective(caller.Role, overrides).Has(perm)
	if !allowed {
		if r.denied != nil {
			r.denied.Inc()
		}
		if r.logger != nil {
			r.logger.WarnContext(ctx, "authorization denied",
				"caller_id", callerID.String(),
				"role", string(caller.Role),
				"permission", string(perm),
			)
		}
	}
	return allowed, nil
}

// RequireRole is the hard gate for whole-action role checks. Unlike
// Authorize it returns an error on denial so callers can short-circuit: an
// unauthenticated or unknown caller gets unauthenticated, a caller outside
// the allow list gets permission denied. Overrides do not apply here.
func (r *Resolver) RequireRole(ctx context.Context, callerID id.UserID, roles ...profile.Role) error {
	if callerID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	caller, err := r.profiles.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not load caller profile")
	}
	if !caller.Active {
		return dErrors.New(dErrors.CodeForbidden, "account is inactive")
	}

	for _, role := range roles {
		if caller.Role == role {
			return nil
		}
	}
	if r.denied != nil {
		r.denied.Inc()
	}
	return dErrors.New(dErrors.CodeForbidden, "role not permitted for this action")
}
