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

	"github.com/mysticcoders/voicenotes-sync/internal/api"
	"github.com/mysticcoders/voicenotes-sync/internal/index"
	"github.com/mysticcoders/voicenotes-sync/internal/notes"
	"github.com/mysticcoders/voicenotes-sync/internal/sse"
	"github.com/mysticcoders/voicenotes-sync/internal/storage"
	"github.com/mysticcoders/voicenotes-sync/internal/syncer"
	"github.com/mysticcoders/voicenotes-sync/internal/voicenotes"
)

// runtime holds the wired components shared by the daemon and the one-shot
// commands.
type runtime struct {
	cfg     *Config
	log     *slog.Logger
	store   storage.Provider
	db      *index.DB
	session *voicenotes.Session
	client  *voicenotes.Client
	orch    *syncer.Orchestrator
	broker  *sse.Broker
}

func (rt *runtime) close() {
	if rt.broker != nil {
		rt.broker.Close()
	}
	if rt.db != nil {
		_ = rt.db.Close()
	}
}

// buildRuntime wires storage, index, remote client and orchestrator from the
// configuration. withBroker controls whether sync outcomes are published over
// SSE; one-shot commands run without a broker.
func buildRuntime(cfg *Config, withBroker bool) (*runtime, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.State.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Sync.Directory)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	session, err := voicenotes.NewSession(cfg.State.TokenFile(), cfg.API.Username, cfg.API.Password)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init session: %w", err)
	}

	client := voicenotes.New(cfg.API.BaseURL, session, cfg.API.RetryPolicy(), cfg.API.Timeout(), logger)

	rt := &runtime{
		cfg:     cfg,
		log:     logger,
		store:   store,
		db:      db,
		session: session,
		client:  client,
	}

	var onEvent syncer.EventFunc
	if withBroker {
		rt.broker = sse.NewBroker(2 * time.Second)
		onEvent = rt.broker.PublishNoteEvent
	}

	mat := notes.New(store, db, client, cfg.NoteOptions(), logger)
	rt.orch = syncer.New(client, store, db, mat, logger, onEvent)
	return rt, nil
}

// Run starts the sync daemon with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	rt, err := buildRuntime(cfg, true)
	if err != nil {
		return err
	}
	defer rt.close()

	logger := rt.log
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sync_directory", cfg.Sync.Directory),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("automatic", cfg.Sync.Automatic),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Reconcile the index with whatever is on disk before serving.
	if err := index.Rebuild(rt.db, rt.store, logger); err != nil {
		logger.Warn("initial index rebuild failed", slog.String("error", err.Error()))
	}

	// Build API service and router. Sync passes from any trigger (manual or
	// timer) announce their lifecycle over SSE.
	announced := &announcedSyncer{orch: rt.orch, broker: rt.broker}
	svc := api.NewService(announced, rt.db, rt.client)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, rt.broker, cfg.Sync.Directory)

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

	// Watch the sync directory so external edits and deletions are
	// reflected in the index between passes.
	g.Go(func() error {
		return index.Watch(gCtx, rt.db, rt.store, cfg.Sync.Directory, logger, func(kind, path string) {
			rt.broker.PublishNoteEvent(kind, path)
		})
	})

	// Timer-driven sync passes.
	sched := syncer.NewScheduler(func(syncCtx context.Context, full bool) error {
		_, err := announced.Sync(syncCtx, full)
		return err
	}, logger)
	if cfg.Sync.Automatic {
		sched.Start(gCtx, cfg.Sync.Interval())
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
		sched.Stop()

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

// announcedSyncer wraps the orchestrator so every pass publishes
// sync.started and sync.completed events.
type announcedSyncer struct {
	orch   *syncer.Orchestrator
	broker *sse.Broker
}

func (a *announcedSyncer) Sync(ctx context.Context, full bool) (*syncer.Report, error) {
	if a.orch.Running() {
		// Let the in-flight guard reject without a spurious started event.
		return a.orch.Sync(ctx, full)
	}
	a.broker.PublishSyncStarted(full)
	report, err := a.orch.Sync(ctx, full)
	if report != nil {
		a.broker.PublishSyncCompleted(report)
	}
	return report, err
}

func (a *announcedSyncer) Running() bool              { return a.orch.Running() }
func (a *announcedSyncer) LastReport() *syncer.Report { return a.orch.LastReport() }
