package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/feedbackhub/feedbackhub/internal/apikeys"
	"github.com/feedbackhub/feedbackhub/internal/auth"
	"github.com/feedbackhub/feedbackhub/internal/issuetrackers"
	"github.com/feedbackhub/feedbackhub/internal/members"
	"github.com/feedbackhub/feedbackhub/internal/observability"
	"github.com/feedbackhub/feedbackhub/internal/projects"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/roles"
	"github.com/feedbackhub/feedbackhub/internal/statistics"
	"github.com/feedbackhub/feedbackhub/internal/tenants"
	"github.com/feedbackhub/feedbackhub/internal/users"
	"github.com/feedbackhub/feedbackhub/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthMiddleware auth.Middleware

	AuthHandler         *auth.Handler
	TenantsHandler      *tenants.Handler
	UsersHandler        *users.Handler
	ProjectsHandler     *projects.Handler
	RolesHandler        *roles.Handler
	MembersHandler      *members.Handler
	APIKeysHandler      *apikeys.Handler
	IssueTrackerHandler *issuetrackers.Handler
	StatisticsHandler   *statistics.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	bearer := params.AuthMiddleware.Bearer
	bearerOrAPIKey := params.AuthMiddleware.BearerOrAPIKey

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.With(bearer).Route("/tenants", params.TenantsHandler.MountRoutes)
		r.With(bearer).Route("/users", params.UsersHandler.MountRoutes)

		r.Route("/projects", func(r chi.Router) {
			params.ProjectsHandler.MountRoutes(r, bearer)
			r.Route("/{"+rbac.ProjectIDParam+"}", func(r chi.Router) {
				params.ProjectsHandler.MountProjectRoutes(r, bearer, bearerOrAPIKey)
				r.Route("/issue-tracker", func(r chi.Router) {
					params.IssueTrackerHandler.MountRoutes(r, bearerOrAPIKey, bearer)
				})
				r.Group(func(r chi.Router) {
					r.Use(bearer)
					r.Route("/roles", params.RolesHandler.MountRoutes)
					r.Route("/members", params.MembersHandler.MountRoutes)
					r.Route("/api-keys", params.APIKeysHandler.MountRoutes)
					r.Route("/statistics", params.StatisticsHandler.MountRoutes)
				})
			})
		})
	})

	return r
}
