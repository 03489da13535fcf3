package roles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/feedbackhub/feedbackhub/internal/platform/httpx"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
)

// Handler manages role management endpoints.
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

// MountRoutes registers role routes below /projects/{projectId}/roles.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.PermProjectRoleRead)).Get("/", h.listRoles)
	r.With(h.rbac.Require(rbac.PermProjectRoleCreate)).Post("/", h.createRole)
	r.With(h.rbac.Require(rbac.PermProjectRoleUpdate)).Put("/{roleId}", h.updateRole)
	r.With(h.rbac.Require(rbac.PermProjectRoleDelete)).Delete("/{roleId}", h.deleteRole)
}

type roleRequest struct {
	Name        string            `json:"name" validate:"required,max=255"`
	Permissions []rbac.Permission `json:"permissions" validate:"dive,required"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.FindByProjectID(r.Context(), projectID)
	if err != nil {
		h.fail(w, "list roles", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": list, "total": len(list)})
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req roleRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.Create(r.Context(), CreateRoleInput{Name: req.Name, Permissions: req.Permissions, ProjectID: projectID})
	if err != nil {
		h.fail(w, "create role", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	roleID, err := httpx.Int64Param(r, "roleId")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req roleRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.Update(r.Context(), roleID, projectID, UpdateRoleInput{Name: req.Name, Permissions: req.Permissions})
	if err != nil {
		h.fail(w, "update role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	roleID, err := httpx.Int64Param(r, "roleId")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if _, err := h.service.FindInProject(r.Context(), projectID, roleID); err != nil {
		h.fail(w, "find role", err)
		return
	}
	if err := h.service.DeleteByID(r.Context(), roleID); err != nil {
		h.fail(w, "delete role", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
