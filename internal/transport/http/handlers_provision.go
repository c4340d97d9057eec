// Package httptransport exposes the provisioning core over HTTP.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scolara/internal/provisioning"
	"scolara/internal/transport/http/shared"
	dErrors "scolara/pkg/domain-errors"
)

// ProvisioningService runs the provisioning flows.
type ProvisioningService interface {
	CreateTeacher(ctx context.Context, in provisioning.TeacherInput) (*provisioning.TeacherResult, error)
	CreateStudent(ctx context.Context, in provisioning.StudentInput) (*provisioning.StudentResult, error)
	CreateOperator(ctx context.Context, in provisioning.OperatorInput) (*provisioning.OperatorResult, error)
}

// ProvisionHandler handles the provisioning endpoints.
type ProvisionHandler struct {
	logger  *slog.Logger
	service ProvisioningService
}

func NewProvisionHandler(service ProvisioningService, logger *slog.Logger) *ProvisionHandler {
	return &ProvisionHandler{logger: logger, service: service}
}

// Register registers the provisioning routes. The caller wraps them with the
// auth middleware; permission checks live in the service.
func (h *ProvisionHandler) Register(r chi.Router) {
	r.Post("/provision/teachers", h.handleCreateTeacher)
	r.Post("/provision/students", h.handleCreateStudent)
	r.Post("/provision/operators", h.handleCreateOperator)
}

func (h *ProvisionHandler) handleCreateTeacher(w http.ResponseWriter, r *http.Request) {
	var in provisioning.TeacherInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.service.CreateTeacher(r.Context(), in)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, result)
}

func (h *ProvisionHandler) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var in provisioning.StudentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.service.CreateStudent(r.Context(), in)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, result)
}

func (h *ProvisionHandler) handleCreateOperator(w http.ResponseWriter, r *http.Request) {
	var in provisioning.OperatorInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.service.CreateOperator(r.Context(), in)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, result)
}
