package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/feedbackhub/feedbackhub/internal/platform/httpx"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
)

// Middleware establishes the request principal from credentials.
type Middleware struct {
	Tokens  *Tokens
	APIKeys *APIKeyVerifier
	Logger  *slog.Logger
}

// Bearer requires a valid access token.
func (m Middleware) Bearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.fromBearer(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), principal)))
	})
}

// BearerOrAPIKey accepts an x-api-key header scoped to the {projectId} path
// parameter, falling back to a bearer token when no key header is sent.
func (m Middleware) BearerOrAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(APIKeyHeader))
		if key == "" {
			m.Bearer(next).ServeHTTP(w, r)
			return
		}
		projectID, err := strconv.ParseInt(chi.URLParam(r, rbac.ProjectIDParam), 10, 64)
		hasProject := err == nil && projectID > 0
		principal, ok, err := m.APIKeys.Verify(r.Context(), key, projectID, hasProject)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("api key verification", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		if !ok {
			httpx.RespondError(w, ErrInvalidAPIKey)
			return
		}
		next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), principal)))
	})
}

func (m Middleware) fromBearer(r *http.Request) (rbac.Principal, error) {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(raw) == "" {
		return rbac.Principal{}, ErrInvalidToken
	}
	claims, err := m.Tokens.Verify(strings.TrimSpace(raw), TokenAccess)
	if err != nil {
		return rbac.Principal{}, err
	}
	return claims.Principal()
}
