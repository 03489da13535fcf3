package apikeys

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/feedbackhub/feedbackhub/internal/platform/httpx"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
)

// Handler manages api key endpoints.
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

// MountRoutes registers api key routes below /projects/{projectId}/api-keys.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.PermProjectAPIKeyRead)).Get("/", h.listKeys)
	r.With(h.rbac.Require(rbac.PermProjectAPIKeyCreate)).Post("/", h.createKey)
	r.With(h.rbac.Require(rbac.PermProjectAPIKeyUpdate)).Put("/{apiKeyId}/soft-delete", h.softDeleteKey)
	r.With(h.rbac.Require(rbac.PermProjectAPIKeyUpdate)).Put("/{apiKeyId}/recover", h.recoverKey)
	r.With(h.rbac.Require(rbac.PermProjectAPIKeyDelete)).Delete("/{apiKeyId}", h.deleteKey)
}

type createKeyRequest struct {
	Value string `json:"value" validate:"omitempty,len=20"`
}

func (h *Handler) listKeys(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.FindByProjectID(r.Context(), projectID)
	if err != nil {
		h.fail(w, "list api keys", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list})
}

func (h *Handler) createKey(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createKeyRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	key, err := h.service.Create(r.Context(), CreateAPIKeyInput{ProjectID: projectID, Value: req.Value})
	if err != nil {
		h.fail(w, "create api key", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, key)
}

func (h *Handler) softDeleteKey(w http.ResponseWriter, r *http.Request) {
	id, ok := h.keyInProject(w, r)
	if !ok {
		return
	}
	key, err := h.service.SoftDeleteByID(r.Context(), id)
	if err != nil {
		h.fail(w, "soft delete api key", err)
		return
	}
	httpx.JSON(w, http.StatusOK, key)
}

func (h *Handler) recoverKey(w http.ResponseWriter, r *http.Request) {
	id, ok := h.keyInProject(w, r)
	if !ok {
		return
	}
	key, err := h.service.RecoverByID(r.Context(), id)
	if err != nil {
		h.fail(w, "recover api key", err)
		return
	}
	httpx.JSON(w, http.StatusOK, key)
}

func (h *Handler) deleteKey(w http.ResponseWriter, r *http.Request) {
	id, ok := h.keyInProject(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.fail(w, "delete api key", err)
		return
	}
	httpx.NoContent(w)
}

// keyInProject resolves {apiKeyId} and writes the error response when the key
// is missing or belongs to another project.
func (h *Handler) keyInProject(w http.ResponseWriter, r *http.Request) (int64, bool) {
	projectID, err := httpx.Int64Param(r, rbac.ProjectIDParam)
	if err != nil {
		httpx.RespondError(w, err)
		return 0, false
	}
	id, err := httpx.Int64Param(r, "apiKeyId")
	if err != nil {
		httpx.RespondError(w, err)
		return 0, false
	}
	if _, err := h.service.FindInProject(r.Context(), projectID, id); err != nil {
		h.fail(w, "find api key", err)
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
