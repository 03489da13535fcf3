package apikeys

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackhub/feedbackhub/internal/rbac"
)

func newTestRouter(svc *Service) http.Handler {
	mw := rbac.Middleware{Authorizer: rbac.NewAuthorizer(nil)}
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, mw)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			super := rbac.UserPrincipal(1, "root@test.local", rbac.UserTypeSuper)
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), super)))
		})
	})
	r.Route("/projects/{projectId}/api-keys", h.MountRoutes)
	return r
}

func TestHandlerCreateAndSoftDelete(t *testing.T) {
	svc := NewService(newMockRepository())
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects/1/api-keys", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created APIKey
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Len(t, created.Value, ValueLength)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/projects/2/api-keys/1/soft-delete", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/projects/1/api-keys/1/soft-delete", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerRejectsShortValue(t *testing.T) {
	router := newTestRouter(NewService(newMockRepository()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects/1/api-keys", strings.NewReader(`{"value":"abc"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
