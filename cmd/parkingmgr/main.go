package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/app"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/assignments"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/audit"
	audithttp "github.com/bfauber71/MyParkingMgr-sub002/internal/audit/http"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/auth"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/observability"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/platform/cache"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/platform/db"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/properties"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/users"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/vehicles"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
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

	sessionManager := shared.NewSessionManager(redisClient, "parkingmgr_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	metrics := observability.NewMetrics()

	usersRepo := users.NewRepository(dbpool)
	propertiesRepo := properties.NewRepository(dbpool)
	assignmentsRepo := assignments.NewRepository(dbpool)
	vehiclesRepo := vehicles.NewRepository(dbpool)
	auditRepo := audit.NewRepository(dbpool)

	scopeResolver := authz.NewScopeResolver(propertiesRepo, assignmentsRepo)
	engine := authz.NewEngine(scopeResolver)
	principalResolver := authz.NewPrincipalResolver(usersRepo)
	authzMiddleware := authz.Middleware{
		Resolver: principalResolver,
		Engine:   engine,
		Logger:   logger,
		Denials:  metrics,
	}

	auditor := audit.NewLogger(dbpool, logger, observability.NewAuditFailuresCounter(metrics.Registerer()))
	auditService := audit.NewService(auditRepo)
	auditHandler := audithttp.NewHandler(logger, auditService)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(usersRepo, authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, auditor)

	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, auditor)

	propertiesService := properties.NewService(propertiesRepo, engine)
	propertiesHandler := properties.NewHandler(logger, propertiesService, auditor)

	assignmentsService := assignments.NewService(assignmentsRepo, usersRepo, propertiesRepo)
	assignmentsHandler := assignments.NewHandler(logger, assignmentsService, auditor)

	vehiclesService := vehicles.NewService(vehiclesRepo, engine)
	vehiclesHandler := vehicles.NewHandler(logger, vehiclesService, auditor)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthzMiddleware:    authzMiddleware,
		AuthHandler:        authHandler,
		PropertiesHandler:  propertiesHandler,
		VehiclesHandler:    vehiclesHandler,
		AssignmentsHandler: assignmentsHandler,
		UsersHandler:       usersHandler,
		AuditHandler:       auditHandler,
		Pool:               dbpool,
		Metrics:            metrics,
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
