package members

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/feedbackhub/feedbackhub/internal/platform/httpx"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/roles"
)

// ProjectRoleFinder resolves a role only when it belongs to the given project.
type ProjectRoleFinder interface {
	FindInProject(ctx context.Context, projectID, id int64) (roles.Role, error)
}

// Handler manages membership endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	roles     ProjectRoleFinder
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, roles ProjectRoleFinder, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, roles: roles, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers member routes below /projects/{projectId}/members.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.PermProjectMemberRead)).Get("/", h.listMembers)
	r.With(h.rbac.Require(rbac.PermProjectMemberCreate)).Post("/", h.createMember)
	r.With(h.rbac.Require(rbac.PermProjectMemberUpdate)).Put("/{memberId}", h.updateMember)
	r.With(h.rbac.Require(rbac.PermProjectMemberDelete)).Delete("/{memberId}", h.deleteMember)
}

type createMemberRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
	RoleID int64 `json:"roleId" validate:"required,gt=0"`
}

type updateMemberRequest struct {
	RoleID int64 `json:"roleId" validate:"required,gt=0"`
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.FindByProjectID(r.Context(), projectID)
	if err != nil {
		h.fail(w, "list members", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"members": list, "total": len(list)})
}

func (h *Handler) createMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createMemberRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if _, err := h.roles.FindInProject(r.Context(), projectID, req.RoleID); err != nil {
		h.fail(w, "find role", err)
		return
	}
	member, err := h.service.Create(r.Context(), CreateMemberInput{UserID: req.UserID, RoleID: req.RoleID})
	if err != nil {
		h.fail(w, "create member", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, member)
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	memberID, err := httpx.Int64Param(r, "memberId")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateMemberRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if _, err := h.service.FindInProject(r.Context(), projectID, memberID); err != nil {
		h.fail(w, "find member", err)
		return
	}
	member, err := h.service.Update(r.Context(), UpdateMemberInput{MemberID: memberID, RoleID: req.RoleID})
	if err != nil {
		h.fail(w, "update member", err)
		return
	}
	httpx.JSON(w, http.StatusOK, member)
}

func (h *Handler) deleteMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	memberID, err := httpx.Int64Param(r, "memberId")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if _, err := h.service.FindInProject(r.Context(), projectID, memberID); err != nil {
		h.fail(w, "find member", err)
		return
	}
	if err := h.service.Delete(r.Context(), memberID); err != nil {
		h.fail(w, "delete member", err)
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
