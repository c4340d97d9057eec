package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scolara/internal/platform/middleware"
	"scolara/internal/transport/http/shared"
)

// Router wires every endpoint. Login, health and metrics are public; all
// provisioning and lookup routes sit behind bearer auth. Permission checks
// live in the services, not here.
type Router struct {
	logger    *slog.Logger
	validator middleware.TokenValidator

	auth      *AuthHandler
	provision *ProvisionHandler
	guardian  *GuardianHandler
	overrides *OverrideHandler

	health func(r chi.Router)
}

func NewRouter(
	validator middleware.TokenValidator,
	auth *AuthHandler,
	provision *ProvisionHandler,
	guardianH *GuardianHandler,
	overrides *OverrideHandler,
	logger *slog.Logger,
) *Router {
	return &Router{
		logger:    logger,
		validator: validator,
		auth:      auth,
		provision: provision,
		guardian:  guardianH,
		overrides: overrides,
	}
}

// WithHealth installs an extra route group, used for readiness probes that
// need store handles the transport does not own.
func (rt *Router) WithHealth(register func(r chi.Router)) *Router {
	rt.health = register
	return rt
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Metadata)
	r.Use(middleware.Logger(rt.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if rt.health != nil {
		rt.health(r)
	}

	rt.auth.Register(r)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth(rt.validator, rt.logger))
		rt.provision.Register(authed)
		rt.guardian.Register(authed)
		rt.overrides.Register(authed)
	})

	return r
}
