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

	"github.com/mos-jef/title-crm/internal/api"
	"github.com/mos-jef/title-crm/internal/catalog"
	"github.com/mos-jef/title-crm/internal/extract"
	"github.com/mos-jef/title-crm/internal/inbox"
	"github.com/mos-jef/title-crm/internal/models"
	"github.com/mos-jef/title-crm/internal/parcelfs"
	"github.com/mos-jef/title-crm/internal/parcelservice"
	"github.com/mos-jef/title-crm/internal/remote"
	"github.com/mos-jef/title-crm/internal/sse"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	cfg, err := app.resolveConfig()
	if err != nil {
		return err
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("parcels_root", cfg.Catalog.ParcelsRoot),
		slog.String("mirror_path", cfg.Catalog.MirrorPath),
		slog.Bool("remote_enabled", cfg.Remote.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure local directories exist.
	if err := os.MkdirAll(cfg.Catalog.ParcelsRoot, 0o755); err != nil {
		return fmt.Errorf("create parcels root: %w", err)
	}
	if cfg.Catalog.InboxPath != "" {
		if err := os.MkdirAll(cfg.Catalog.InboxPath, 0o755); err != nil {
			return fmt.Errorf("create inbox dir: %w", err)
		}
	}

	layout, err := parcelfs.NewLayout(cfg.Catalog.ParcelsRoot)
	if err != nil {
		return fmt.Errorf("init parcel layout: %w", err)
	}

	// Open the SQLite mirror.
	mirror, err := catalog.OpenMirror(cfg.Catalog.MirrorPath)
	if err != nil {
		return fmt.Errorf("init mirror: %w", err)
	}
	defer mirror.Close()

	// Optional Firestore backup.
	var remoteStore remote.Store
	if cfg.Remote.Enabled {
		fs, err := remote.NewFirestore(ctx, cfg.Remote.Project, cfg.Remote.User)
		if err != nil {
			return fmt.Errorf("init remote store: %w", err)
		}
		defer fs.Close()
		remoteStore = fs
	}

	// Bootstrap the catalog: prefer the remote copy, fall back to the
	// local mirror when the remote is unreachable or disabled.
	initial, err := bootstrapCatalog(ctx, remoteStore, mirror, logger)
	if err != nil {
		return fmt.Errorf("bootstrap catalog: %w", err)
	}
	logger.Info("Catalog loaded", slog.Int("parcels", len(initial)))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Background persistence. Tier failures surface as SSE events so
	// the UI can show a sync warning.
	syncer := catalog.NewSyncer(mirror, remoteStore, logger, func(err error) {
		broker.Publish(sse.Event{Type: "sync.error", Data: map[string]string{"error": err.Error()}})
	})
	defer syncer.Close()

	store := catalog.NewStore(initial, syncer)

	// Document extraction. Without an API key the server still serves
	// the catalog; batch runs report that extraction is unavailable.
	var extractor extract.Extractor
	if key := os.Getenv(cfg.Extraction.APIKeyEnv); key != "" {
		gem, err := extract.NewGemini(ctx, key, cfg.Extraction.Model)
		if err != nil {
			return fmt.Errorf("init extractor: %w", err)
		}
		defer gem.Close()
		extractor = gem
	} else {
		logger.Warn("Extraction API key not set, batch runs disabled",
			slog.String("env", cfg.Extraction.APIKeyEnv))
	}

	// Build the parcel service and router.
	svc := parcelservice.NewService(store, layout, extractor, logger, cfg.Batch.ItemDelay(), cfg.Batch.AutoCreate,
		broker.PublishParcelEvent, broker.PublishBatch)
	authToken := ""
	if cfg.Auth.AuthEnabled() {
		authToken = cfg.Auth.Token
	}
	apiRouter := api.NewRouter(svc, authToken)

	// Build chi router.
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

	// SSE endpoint.
	r.Get("/api/events", broker.ServeHTTP)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the inbox for incoming documents.
	if cfg.Catalog.InboxPath != "" {
		g.Go(func() error {
			if err := inbox.Watch(gCtx, cfg.Catalog.InboxPath, logger, func(path string) {
				broker.Publish(sse.Event{Type: "inbox.added", Data: map[string]string{"path": path}})
			}); err != nil {
				logger.Warn("inbox watcher failed", slog.String("error", err.Error()))
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

// bootstrapCatalog loads the initial record set. The remote copy wins
// when reachable; otherwise the local mirror serves, so the tool works
// offline.
func bootstrapCatalog(ctx context.Context, remoteStore remote.Store, mirror *catalog.Mirror, logger *slog.Logger) ([]models.Parcel, error) {
	if remoteStore != nil {
		loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		parcels, err := remoteStore.LoadAll(loadCtx)
		if err == nil {
			// Refresh the mirror so the next offline start sees the
			// same records.
			if mErr := mirror.ReplaceAll(parcels); mErr != nil {
				logger.Warn("mirror refresh failed", slog.String("error", mErr.Error()))
			}
			return parcels, nil
		}
		logger.Warn("remote load failed, falling back to local mirror",
			slog.String("error", err.Error()))
	}
	return mirror.LoadAll()
}
