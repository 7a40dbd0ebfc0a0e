package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/startupops/startupops/internal/authz"
	"github.com/startupops/startupops/internal/config"
	"github.com/startupops/startupops/internal/execution"
	"github.com/startupops/startupops/internal/finance"
	httpserver "github.com/startupops/startupops/internal/http"
	"github.com/startupops/startupops/internal/matching"
	"github.com/startupops/startupops/internal/metrics"
	"github.com/startupops/startupops/internal/repository"
	"github.com/startupops/startupops/internal/workspace"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	profilesRepo := repository.NewProfilesRepository(db)
	workspacesRepo := repository.NewWorkspacesRepository(db)
	membershipsRepo := repository.NewMembershipsRepository(db)
	swipesRepo := repository.NewSwipesRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	tasksRepo := repository.NewTasksRepository(db)
	milestonesRepo := repository.NewMilestonesRepository(db)

	// Initialize services
	authorizer := authz.NewAuthorizer(membershipsRepo)
	metricsService := metrics.NewService(ledgerRepo, membershipsRepo, milestonesRepo)
	registry := workspace.NewRegistry(db, workspacesRepo, membershipsRepo, profilesRepo, authorizer)
	tracker := execution.NewTracker(tasksRepo, milestonesRepo, membershipsRepo, authorizer)
	financeService := finance.NewService(ledgerRepo, metricsService, authorizer)
	engine := matching.NewEngine(swipesRepo, workspacesRepo, profilesRepo, metricsService)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          logger,
		Profiles:        profilesRepo,
		Registry:        registry,
		Tracker:         tracker,
		Finance:         financeService,
		Engine:          engine,
		Metrics:         metricsService,
		JWTSecret:       []byte(cfg.JWTSecret),
		JWTIssuer:       cfg.JWTIssuer,
		RateLimitConfig: cfg.RateLimit,
		SecurityHeaders: cfg.SecurityHeaders,
		Validation:      cfg.Validation,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
