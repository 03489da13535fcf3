package issuetrackers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/feedbackhub/feedbackhub/internal/platform/httpx"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
)

// Handler serves issue tracker settings.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers routes below /projects/{projectId}/issue-tracker.
// readAuth and writeAuth establish the principal for reads and updates.
func (h *Handler) MountRoutes(r chi.Router, readAuth, writeAuth func(http.Handler) http.Handler) {
	r.With(readAuth, h.rbac.Require(rbac.PermProjectTrackerRead)).Get("/", h.getTracker)
	r.With(writeAuth, h.rbac.Require(rbac.PermProjectTrackerUpdate)).Put("/", h.updateTracker)
}

type trackerRequest struct {
	Data map[string]any `json:"data" validate:"required"`
}

func (h *Handler) getTracker(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	tracker, err := h.service.FindByProjectID(r.Context(), projectID)
	if err != nil {
		h.fail(w, "find issue tracker", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tracker)
}

func (h *Handler) updateTracker(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req trackerRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	tracker, err := h.service.Update(r.Context(), projectID, req.Data)
	if err != nil {
		h.fail(w, "update issue tracker", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tracker)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
