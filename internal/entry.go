// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/areaewhy/JoplinView/internal/api"
	"github.com/areaewhy/JoplinView/internal/apperr"
	"github.com/areaewhy/JoplinView/internal/cache"
	"github.com/areaewhy/JoplinView/internal/mcpserver"
	"github.com/areaewhy/JoplinView/internal/objstore"
	"github.com/areaewhy/JoplinView/internal/parser"
	"github.com/areaewhy/JoplinView/internal/sse"
	"github.com/areaewhy/JoplinView/internal/store"
	"github.com/areaewhy/JoplinView/internal/syncer"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_path", cfg.Store.Path),
		slog.String("dialect", cfg.Sync.Dialect),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	objects, err := buildObjectStore(cfg)
	if err != nil {
		return fmt.Errorf("init object store: %w", err)
	}
	if objects == nil {
		logger.Warn("no export source configured; sync requests will fail until one is set")
	}

	dialect, err := parser.For(cfg.Sync.Dialect)
	if err != nil {
		return err
	}

	snapCache := cache.New(cfg.Sync.CacheTTL)

	// SSE broker; sync lifecycle events fan out to connected clients.
	broker := sse.NewBroker()
	defer broker.Close()

	s := syncer.New(syncer.Config{
		Objects:          objects,
		Notes:            db,
		Status:           db,
		Cache:            snapCache,
		Dialect:          dialect,
		Prefix:           cfg.Bucket.Prefix,
		ParentFolder:     cfg.Sync.NotebookFilter,
		DedupeTitles:     cfg.Sync.DedupeTitles,
		FetchConcurrency: cfg.Sync.FetchConcurrency,
		Logger:           logger,
		OnEvent:          broker.PublishSyncEvent,
	})

	if app.mcp {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(s, db).ServeStdio()
	}

	// Initial fill; failure is not fatal, read paths self-heal later.
	if _, err := s.EnsureWarm(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	apiRouter := api.NewRouter(s, db, db, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Scheduled sync.
	if cfg.Sync.Interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(cfg.Sync.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-gCtx.Done():
					return nil
				case <-ticker.C:
					if _, err := s.Run(gCtx); err != nil && !errors.Is(err, apperr.ErrSyncInProgress) {
						logger.Warn("scheduled sync failed", slog.String("error", err.Error()))
					}
				}
			}
		})
	}

	// Directory mode: watch the export tree and resync on changes.
	if cfg.Bucket.Dir != "" {
		g.Go(func() error {
			if err := syncer.Watch(gCtx, s, cfg.Bucket.Dir, logger); err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// buildObjectStore picks the export source from configuration. A nil
// store (with nil error) means no source is configured yet.
func buildObjectStore(cfg *Config) (objstore.Store, error) {
	if cfg.Bucket.Dir != "" {
		return objstore.NewDir(cfg.Bucket.Dir)
	}
	if cfg.Bucket.S3Configured() {
		return objstore.NewS3(objstore.S3Config{
			Endpoint:  cfg.Bucket.Endpoint,
			Region:    cfg.Bucket.Region,
			Bucket:    cfg.Bucket.Name,
			AccessKey: cfg.Bucket.AccessKey,
			SecretKey: cfg.Bucket.SecretKey,
			UseSSL:    cfg.Bucket.UseSSL,
			Timeout:   cfg.Sync.ObjectTimeout,
		})
	}
	return nil, nil
}
