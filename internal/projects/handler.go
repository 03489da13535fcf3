package projects

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/feedbackhub/feedbackhub/internal/platform/httpx"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// Handler manages project endpoints.
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

// MountRoutes registers the collection routes below /projects. Every route
// requires a bearer session.
func (h *Handler) MountRoutes(r chi.Router, bearer func(http.Handler) http.Handler) {
	r.With(bearer).Get("/", h.listProjects)
	r.With(bearer).Get("/name-check", h.checkName)
	r.With(bearer, h.rbac.RequireSuper).Post("/", h.createProject)
}

// MountProjectRoutes registers routes below /projects/{projectId}. Reads also
// accept an api key scoped to the project.
func (h *Handler) MountProjectRoutes(r chi.Router, bearer, bearerOrAPIKey func(http.Handler) http.Handler) {
	r.With(bearerOrAPIKey, h.rbac.RequireMember).Get("/", h.getProject)
	r.With(bearer, h.rbac.Require(rbac.PermProjectUpdate)).Put("/", h.updateProject)
	r.With(bearer, h.rbac.Require(rbac.PermProjectDelete)).Delete("/", h.deleteProject)
}

type roleRequest struct {
	Name        string            `json:"name" validate:"required,max=255"`
	Permissions []rbac.Permission `json:"permissions" validate:"dive,required"`
}

type memberRequest struct {
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	RoleName string `json:"roleName" validate:"required"`
}

type apiKeyRequest struct {
	Value string `json:"value" validate:"omitempty,len=20"`
}

type createProjectRequest struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Description  string          `json:"description" validate:"max=1000"`
	Timezone     string          `json:"timezone"`
	Roles        []roleRequest   `json:"roles" validate:"dive"`
	Members      []memberRequest `json:"members" validate:"dive"`
	APIKeys      []apiKeyRequest `json:"apiKeys" validate:"dive"`
	IssueTracker map[string]any  `json:"issueTracker"`
}

type updateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Timezone    *string `json:"timezone"`
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	list, err := h.service.FindAll(r.Context(), principal)
	if err != nil {
		h.fail(w, "list projects", err)
		return
	}
	if list == nil {
		list = []Project{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
}

func (h *Handler) checkName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		httpx.RespondError(w, shared.NewError(shared.ErrBadRequest, "InvalidParam", "name is required"))
		return
	}
	exists, err := h.service.NameExists(r.Context(), name)
	if err != nil {
		h.fail(w, "check project name", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	input := CreateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		Timezone:     req.Timezone,
		IssueTracker: req.IssueTracker,
	}
	if req.Roles != nil {
		input.Roles = make([]RoleSpec, 0, len(req.Roles))
	}
	for _, role := range req.Roles {
		input.Roles = append(input.Roles, RoleSpec{Name: role.Name, Permissions: role.Permissions})
	}
	for _, member := range req.Members {
		input.Members = append(input.Members, MemberSpec{UserID: member.UserID, RoleName: member.RoleName})
	}
	for _, key := range req.APIKeys {
		input.APIKeys = append(input.APIKeys, key.Value)
	}
	provisioned, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.fail(w, "create project", err)
		return
	}
	h.logger.Info("project provisioned",
		slog.Int64("project_id", provisioned.Project.ID),
		slog.Int("roles", len(provisioned.Roles)),
		slog.Int("members", len(provisioned.Members)),
		slog.Int("api_keys", len(provisioned.APIKeys)))
	httpx.JSON(w, http.StatusCreated, provisioned)
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	project, err := h.service.FindByID(r.Context(), projectID)
	if err != nil {
		h.fail(w, "find project", err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateProjectRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	project, err := h.service.Update(r.Context(), UpdateProjectInput{
		ID:          projectID,
		Name:        req.Name,
		Description: req.Description,
		Timezone:    req.Timezone,
	})
	if err != nil {
		h.fail(w, "update project", err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteByID(r.Context(), projectID); err != nil {
		h.fail(w, "delete project", err)
		return
	}
	h.logger.Info("project deleted", slog.Int64("project_id", projectID))
	httpx.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
