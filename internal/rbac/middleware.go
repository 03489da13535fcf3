package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/feedbackhub/feedbackhub/internal/platform/httpx"
	"github.com/feedbackhub/feedbackhub/internal/shared"
)

// ProjectIDParam is the chi URL parameter carrying the target project.
const ProjectIDParam = "projectId"

// DecisionRecorder observes authorization outcomes.
type DecisionRecorder interface {
	ObserveDecision(permission string, allowed bool)
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Authorizer *Authorizer
	Logger     *slog.Logger
	Recorder   DecisionRecorder
}

// Require guards a route with a statically declared permission. An empty
// permission lets every authenticated principal through.
func (m Middleware) Require(perm Permission) func(http.Handler) http.Handler {
	return m.guard(string(perm), func(ctx context.Context, p Principal, projectID int64, hasProject bool) (bool, error) {
		return m.Authorizer.Authorize(ctx, p, projectID, hasProject, perm)
	})
}

// RequireMember lets through principals with any access to the path project.
func (m Middleware) RequireMember(next http.Handler) http.Handler {
	return m.guard(membershipDecision, m.Authorizer.AuthorizeMembership)(next)
}

const membershipDecision = "membership"

type decideFunc func(ctx context.Context, p Principal, projectID int64, hasProject bool) (bool, error)

func (m Middleware) guard(label string, decide decideFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			projectID, hasProject, err := projectIDFromRequest(r)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			allowed, err := decide(r.Context(), principal, projectID, hasProject)
			if err != nil {
				if !errors.Is(err, shared.ErrBadRequest) && m.Logger != nil {
					m.Logger.Error("rbac require", slog.String("permission", label), slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			if m.Recorder != nil {
				m.Recorder.ObserveDecision(label, allowed)
			}
			if !allowed {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuper lets only SUPER principals through.
func (m Middleware) RequireSuper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		if !principal.IsSuper() {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

var errInvalidProjectID = shared.NewError(shared.ErrBadRequest, "InvalidParam", "invalid projectId")

func projectIDFromRequest(r *http.Request) (int64, bool, error) {
	raw := strings.TrimSpace(chi.URLParam(r, ProjectIDParam))
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, errInvalidProjectID
	}
	return id, true, nil
}
