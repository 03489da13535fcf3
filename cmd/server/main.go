package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/feedbackhub/feedbackhub/internal/apikeys"
	"github.com/feedbackhub/feedbackhub/internal/app"
	"github.com/feedbackhub/feedbackhub/internal/auth"
	"github.com/feedbackhub/feedbackhub/internal/issuetrackers"
	"github.com/feedbackhub/feedbackhub/internal/members"
	"github.com/feedbackhub/feedbackhub/internal/observability"
	"github.com/feedbackhub/feedbackhub/internal/platform/cache"
	"github.com/feedbackhub/feedbackhub/internal/platform/db"
	"github.com/feedbackhub/feedbackhub/internal/projects"
	"github.com/feedbackhub/feedbackhub/internal/rbac"
	"github.com/feedbackhub/feedbackhub/internal/roles"
	"github.com/feedbackhub/feedbackhub/internal/statistics"
	"github.com/feedbackhub/feedbackhub/internal/tenants"
	"github.com/feedbackhub/feedbackhub/internal/users"
	"github.com/feedbackhub/feedbackhub/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns, MaxConnLifetime: cfg.PGMaxConnLifetime})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	usersService := users.NewService(users.NewRepository(dbpool))
	rolesService := roles.NewService(roles.NewRepository(dbpool))
	membersService := members.NewService(members.NewRepository(dbpool), rolesService, usersService)
	apikeysService := apikeys.NewService(apikeys.NewRepository(dbpool))
	tenantsService := tenants.NewService(tenants.NewRepository(dbpool))
	trackersService := issuetrackers.NewService(issuetrackers.NewRepository(dbpool))
	statisticsService := statistics.NewService(statistics.NewRepository(dbpool))
	registry := statistics.NewRegistry(redisClient)
	projectsService := projects.NewService(projects.NewRepository(dbpool), projects.NewUnitOfWork(dbpool), registry, logger)

	rbacMiddleware := rbac.Middleware{
		Authorizer: rbac.NewAuthorizer(membersService),
		Logger:     logger,
		Recorder:   metrics,
	}

	tokens := auth.NewTokens(cfg.JWTSecret)
	authService := auth.NewService(usersService, rolesService, tokens)
	authMiddleware := auth.Middleware{
		Tokens:  tokens,
		APIKeys: auth.NewAPIKeyVerifier(apikeysService, cfg.MasterAPIKey),
		Logger:  logger,
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		AuthMiddleware:      authMiddleware,
		AuthHandler:         auth.NewHandler(logger, authService),
		TenantsHandler:      tenants.NewHandler(logger, tenantsService, rbacMiddleware),
		UsersHandler:        users.NewHandler(logger, usersService, rbacMiddleware),
		ProjectsHandler:     projects.NewHandler(logger, projectsService, rbacMiddleware),
		RolesHandler:        roles.NewHandler(logger, rolesService, rbacMiddleware),
		MembersHandler:      members.NewHandler(logger, membersService, rolesService, rbacMiddleware),
		APIKeysHandler:      apikeys.NewHandler(logger, apikeysService, rbacMiddleware),
		IssueTrackerHandler: issuetrackers.NewHandler(logger, trackersService, rbacMiddleware),
		StatisticsHandler:   statistics.NewHandler(logger, statisticsService, rbacMiddleware),
		JobHandler:          jobs.NewHandler(inspector, logger),
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
