package tenants

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/feedbackhub/feedbackhub/internal/platform/httpx"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
)

// Handler serves tenant endpoints.
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

// MountRoutes registers tenant routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.getTenant)
	r.With(h.rbac.RequireSuper).Post("/", h.setupTenant)
}

type setupRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (h *Handler) getTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.service.Find(r.Context())
	if err != nil {
		h.fail(w, "find tenant", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tenant)
}

func (h *Handler) setupTenant(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	tenant, err := h.service.Setup(r.Context(), req.Name)
	if err != nil {
		h.fail(w, "setup tenant", err)
		return
	}
	h.logger.Info("tenant created", slog.Int64("tenant_id", tenant.ID))
	httpx.JSON(w, http.StatusCreated, tenant)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
