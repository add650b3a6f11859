package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duckdesk/duckdesk/internal/api"
	"github.com/duckdesk/duckdesk/internal/api/uistatic"
	"github.com/duckdesk/duckdesk/internal/auth"
	"github.com/duckdesk/duckdesk/internal/config"
	"github.com/duckdesk/duckdesk/internal/fsindex"
	"github.com/duckdesk/duckdesk/internal/observability"
	duckdbengine "github.com/duckdesk/duckdesk/internal/query/duckdb"
	"github.com/duckdesk/duckdesk/internal/render"
	s3store "github.com/duckdesk/duckdesk/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("duckdesk-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	queryEngine := duckdbengine.NewEngine(cfg.Query.BatchSize)
	indexer := fsindex.New(fsindex.Options{
		MaxDepth:       cfg.Index.MaxDepth,
		FollowSymlinks: cfg.Index.FollowSymlinks,
		Logger:         observability.Component(logger, "fsindex"),
	})

	deps := api.Dependencies{
		Logger:            logger,
		Renderer:          render.New(queryEngine, cfg.Query.NullDisplay, observability.Component(logger, "render")),
		Indexer:           indexer,
		UI:                uistatic.Handler(),
		DependencyTimeout: 2 * time.Second,
	}
	readiness := []api.ReadinessCheck{api.CheckEngine(queryEngine)}

	if cfg.ObjectStore.Enabled {
		store, err := s3store.New(s3store.Config{
			Endpoint:        cfg.ObjectStore.Endpoint,
			Region:          cfg.ObjectStore.Region,
			Bucket:          cfg.ObjectStore.Bucket,
			AccessKeyID:     cfg.ObjectStore.AccessKeyID,
			SecretAccessKey: cfg.ObjectStore.SecretAccessKey,
			UseSSL:          cfg.ObjectStore.UseSSL,
			Prefix:          cfg.ObjectStore.Prefix,
		})
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		deps.Remote = store
		readiness = append(readiness, api.CheckObjectStore(store))
	}
	deps.Readiness = api.CombineReadinessChecks(readiness...)

	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(observability.Component(logger, "auth"), validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("workspace_root", cfg.Workspace.Root),
			slog.Bool("object_store", cfg.ObjectStore.Enabled),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
