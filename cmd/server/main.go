// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

// Package main is the entry point for the Coursecast server.
//
// Coursecast is a video-learning platform backend: a BadgerDB-backed catalog
// and progress store with watch-time analytics, signal-based recommendations,
// quiz authoring and grading, and channel statistics, served over a chi REST
// API.
//
// Startup order:
//
//  1. Configuration: koanf v2 layering defaults, an optional YAML file, and
//     explicitly mapped environment variables
//  2. Logging: global zerolog setup from the loaded configuration
//  3. Document store: BadgerDB, on disk or in-memory
//  4. Domain services: progress, recommendations, quizzes, analytics
//  5. Media client: circuit-breaker-wrapped blob store (when configured)
//  6. HTTP server under a suture supervisor tree
//
// The process shuts down gracefully on SIGINT and SIGTERM: the listener
// drains in-flight requests within the configured timeout, then the store is
// closed.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coursecast/coursecast/internal/analytics"
	"github.com/coursecast/coursecast/internal/api"
	"github.com/coursecast/coursecast/internal/auth"
	"github.com/coursecast/coursecast/internal/config"
	"github.com/coursecast/coursecast/internal/logging"
	"github.com/coursecast/coursecast/internal/media"
	"github.com/coursecast/coursecast/internal/progress"
	"github.com/coursecast/coursecast/internal/quiz"
	"github.com/coursecast/coursecast/internal/recommend"
	"github.com/coursecast/coursecast/internal/store"
	"github.com/coursecast/coursecast/internal/supervisor"
	"github.com/coursecast/coursecast/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("version", api.Version).
		Str("environment", cfg.Server.Environment).
		Msg("starting coursecast")

	st, err := store.Open(store.Options{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
	})
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("failed to open document store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close document store")
		}
	}()

	jwtManager, err := auth.NewJWTManager(auth.Config{
		Secret:          cfg.Security.JWTSecret,
		AccessTokenTTL:  cfg.Security.AccessTokenTTL,
		RefreshTokenTTL: cfg.Security.RefreshTokenTTL,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize token manager")
	}

	var blobStore api.BlobStore
	if cfg.Media.BaseURL != "" {
		blobStore = media.NewClient(media.Config{
			BaseURL: cfg.Media.BaseURL,
			APIKey:  cfg.Media.APIKey,
			Timeout: cfg.Media.Timeout,
		})
		logging.Info().Str("base_url", cfg.Media.BaseURL).Msg("media store client enabled")
	} else {
		logging.Warn().Msg("no media store configured; video uploads require pre-uploaded URLs")
	}

	logger := logging.Logger()
	handler := api.NewHandler(
		st,
		progress.NewService(st, logger),
		recommend.NewEngine(st, logger),
		quiz.NewService(st, logger),
		analytics.NewService(st, logger),
		jwtManager,
		blobStore,
	)

	router := api.NewRouter(handler, api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		RateLimitRequests:  cfg.Security.RateLimitRequests,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
	}))

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(
		slog.New(logging.NewSlogHandler()),
		supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout},
	)
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))
	if !cfg.Store.InMemory {
		tree.AddStorageService(services.NewStoreGCService(st, 10*time.Minute, 0.5, logger))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", httpServer.Addr).Msg("http server listening")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree terminated")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop within timeout")
		}
	}
	logging.Info().Msg("shutdown complete")
}
