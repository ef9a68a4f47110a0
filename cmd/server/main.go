package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gametracker/internal/config"
	"gametracker/internal/database"
	"gametracker/internal/handlers"
	"gametracker/internal/logging"
	"gametracker/internal/repository"
	"gametracker/internal/scheduler"
	"gametracker/internal/security"
	"gametracker/internal/service"
	"gametracker/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connection established", "type", cfg.DatabaseType)

	if err := db.RunMigrations(ctx); err != nil {
		return err
	}
	logger.Info("migrations completed")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)
	resultRepo := repository.NewResultRepository(db)
	sessionRepo := repository.NewPlaySessionRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, cfg.SessionDuration, logger)
	userService := service.NewUserService(userRepo, logger)
	gameService := service.NewGameService(gameRepo, logger)
	resultService := service.NewResultService(resultRepo, gameRepo, userRepo, logger)
	playSessionService := service.NewPlaySessionService(sessionRepo, resultRepo, gameRepo, userRepo, logger)
	scoreboardService := service.NewScoreboardService(resultRepo, gameRepo, userRepo, logger)

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("image storage ready", "backend", cfg.Storage.Backend)

	limiter := security.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	defer limiter.Stop()

	if cfg.SessionCleanupInterval > 0 {
		sched, err := scheduler.New(logger)
		if err != nil {
			return err
		}
		if err := sched.AddSessionCleanup(authService, cfg.SessionCleanupInterval); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				logger.Error("failed to stop scheduler", "error", err)
			}
		}()
	}

	h := handlers.Handlers{
		Middleware:   handlers.NewMiddleware(authService, limiter, cfg.SessionCookieName, logger),
		Auth:         handlers.NewAuthHandler(authService, cfg.SessionCookieName, logger),
		Users:        handlers.NewUserHandler(userService, logger),
		Games:        handlers.NewGameHandler(gameService, logger),
		Uploads:      handlers.NewUploadHandler(store, cfg.UploadMaxSize, logger),
		Results:      handlers.NewResultHandler(resultService, logger),
		PlaySessions: handlers.NewPlaySessionHandler(playSessionService, logger),
		Scoreboards:  handlers.NewScoreboardHandler(scoreboardService, logger),
		Logger:       logger,
		TrustProxy:   cfg.TrustProxyHeaders,
	}
	if strings.EqualFold(cfg.Storage.Backend, "local") {
		h.UploadDir = cfg.Storage.UploadDir
		h.UploadPath = cfg.Storage.UploadBaseURL
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handlers.NewRouter(h),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
