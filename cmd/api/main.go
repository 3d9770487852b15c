// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

// Command api is the entry point for the EduSeek API server.
//
// Startup sequence:
//
//  1. Structured logging (slog, JSON).
//  2. Configuration from the environment.
//  3. PostgreSQL pool, Redis client, schema migrations.
//  4. Token codec and domain wiring (auth, school, notify).
//  5. HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/eduseek/eduseek/internal/api"
	"github.com/eduseek/eduseek/internal/auth"
	"github.com/eduseek/eduseek/internal/notify"
	"github.com/eduseek/eduseek/internal/platform/config"
	"github.com/eduseek/eduseek/internal/platform/constants"
	"github.com/eduseek/eduseek/internal/platform/migration"
	"github.com/eduseek/eduseek/internal/platform/postgres"
	"github.com/eduseek/eduseek/internal/platform/redis"
	"github.com/eduseek/eduseek/internal/platform/sec"
	"github.com/eduseek/eduseek/internal/school"
)

func main() {
	// # Logging
	logLevel := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("starting",
		slog.String("service", constants.AppName),
		slog.String("version", constants.AppVersion),
	)

	// # Configuration
	cfg, err := config.Load()
	must(logger, "config_load_failed", err)

	// Root context cancelled on SIGINT/SIGTERM; background workers (rate
	// limiter cleanup) hang off it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// # Infrastructure
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, logger)
	must(logger, "postgres_connect_failed", err)
	defer pool.Close()

	cache, err := redis.NewClient(ctx, cfg.RedisURL, logger)
	must(logger, "redis_connect_failed", err)
	defer func() { _ = cache.Close() }()

	must(logger, "migration_failed", migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger))

	// # Security Core
	codec, err := sec.NewTokenCodec(cfg.JWTSecret, constants.AuthIssuer)
	must(logger, "token_codec_init_failed", err)

	// # Domain Wiring
	userRepository := auth.NewUserRepository(pool)
	tokenRegistry := auth.NewTokenRegistry(cache)
	mailer := notify.NewLogMailer(logger)

	authService := auth.NewService(userRepository, tokenRegistry, codec, mailer, auth.TokenConfig{
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		ResetTTL:   cfg.ResetTokenTTL,
	})

	schoolService := school.NewService(school.NewRepository(pool))

	server := api.NewServer(ctx, cfg, logger, codec, authService, api.Handlers{
		Liveness:  api.Liveness,
		Readiness: api.Readiness(pool, cache),
		Auth:      auth.NewHandler(authService),
		School:    school.NewHandler(schoolService),
	})

	// # Serve & Shutdown
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_failed", slog.Any("error", err))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown_signal_received")
		if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
			logger.Error("shutdown_failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	logger.Info("stopped")
}

// must aborts startup on an unrecoverable initialization error.
func must(logger *slog.Logger, event string, err error) {
	if err != nil {
		logger.Error(event, slog.Any("error", err))
		os.Exit(1)
	}
}
