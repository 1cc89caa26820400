// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
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

	"github.com/starford/postmigrate/internal/api"
	"github.com/starford/postmigrate/internal/journal"
	"github.com/starford/postmigrate/internal/mcpserver"
	"github.com/starford/postmigrate/internal/migrator"
	"github.com/starford/postmigrate/internal/models"
	"github.com/starford/postmigrate/internal/report"
	"github.com/starford/postmigrate/internal/sse"
	"github.com/starford/postmigrate/internal/storage"
	"github.com/starford/postmigrate/internal/verify"
)

// ErrVerifyFailed is returned by verify mode when any converted post has warnings.
var ErrVerifyFailed = errors.New("converted posts have warnings")

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		mode:    ModeMigrate,
		version: "dev",
		stdout:  os.Stdout,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Logs go to stderr; stdout carries the report or the MCP protocol.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("mode", string(app.mode)),
		slog.String("input_dir", cfg.Posts.InputDir),
		slog.String("output_dir", cfg.Posts.OutputDir),
		slog.String("include", cfg.Posts.Include),
		slog.String("layout", cfg.Posts.Layout),
		slog.String("journal_path", cfg.Journal.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, closeFn, err := app.buildService(logger)
	if err != nil {
		return err
	}
	defer closeFn()

	switch app.mode {
	case ModeMigrate:
		return app.runMigrate(ctx, svc)
	case ModeWatch:
		return app.runWatch(ctx, svc)
	case ModeServe:
		return app.runServe(ctx, svc, logger)
	case ModeMCP:
		return mcpserver.New(svc, app.version).ServeStdio()
	case ModeVerify:
		return app.runVerify(ctx, svc)
	default:
		return fmt.Errorf("unknown mode %q", app.mode)
	}
}

func (a *application) buildService(logger *slog.Logger) (*migrator.Service, func(), error) {
	cfg := a.config
	noop := func() {}

	in, err := storage.NewFS(cfg.Posts.InputDir)
	if err != nil {
		return nil, noop, fmt.Errorf("init input storage: %w", err)
	}

	var out *storage.FS
	if a.mode == ModeVerify {
		out, err = storage.NewFS(cfg.Posts.OutputDir)
	} else {
		out, err = storage.EnsureFS(cfg.Posts.OutputDir)
	}
	if err != nil {
		return nil, noop, fmt.Errorf("init output storage: %w", err)
	}

	// Leave j as a nil interface when disabled; a typed nil *journal.DB
	// would look enabled to the migrator.
	var j journal.Journal
	closeFn := noop
	if cfg.Journal.Enabled() {
		db, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("init journal: %w", err)
		}
		j = db
		closeFn = func() { _ = db.Close() }
	}

	var checker *verify.Checker
	if cfg.Verify.Enabled {
		checker = verify.New(cfg.Verify.Languages)
	}

	svc := migrator.New(in, out, j, checker, migrator.Options{
		Include:     cfg.Posts.Include,
		Layout:      migrator.Layout(cfg.Posts.Layout),
		DryRun:      a.dryRun,
		Incremental: cfg.Journal.Incremental,
		Force:       a.force,
	}, logger)
	return svc, closeFn, nil
}

func (a *application) runMigrate(ctx context.Context, svc *migrator.Service) error {
	b, err := svc.RunBatch(ctx)
	if b == nil || b.Report == nil {
		return err
	}

	if a.jsonOut {
		if jerr := report.WriteJSON(a.stdout, b.Report); jerr != nil {
			return jerr
		}
		return err
	}

	p := report.NewPrinter(a.stdout, a.color)
	p.Found(len(b.Report.Outcomes))
	if a.diff {
		for _, d := range b.Diffs {
			p.DiffText(d.Filename, d.Diff)
		}
	}
	p.Report(b.Report)
	return err
}

func (a *application) runWatch(ctx context.Context, svc *migrator.Service) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.runMigrate(ctx, svc); err != nil {
		return err
	}

	p := report.NewPrinter(a.stdout, a.color)
	return svc.Watch(ctx, func(kind string, o models.Outcome) {
		if kind == migrator.EventRemoved {
			p.Removed(o.Filename)
			return
		}
		p.Outcome(o)
	})
}

func (a *application) runVerify(ctx context.Context, svc *migrator.Service) error {
	files, err := svc.VerifyOutputs(ctx)
	if err != nil {
		return err
	}

	if a.jsonOut {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(files); err != nil {
			return err
		}
	} else {
		p := report.NewPrinter(a.stdout, a.color)
		for _, f := range files {
			p.FileWarnings(f.Path, f.Warnings)
		}
		if len(files) == 0 {
			fmt.Fprintln(a.stdout, "All converted posts verified.")
		}
	}

	if len(files) > 0 {
		return fmt.Errorf("%w: %d files", ErrVerifyFailed, len(files))
	}
	return nil
}

func batchSummary(b *migrator.Batch) sse.BatchSummary {
	return sse.BatchSummary{
		Migrated:  b.Report.Migrated(),
		Skipped:   b.Report.Skipped(),
		Unchanged: b.Report.Unchanged(),
	}
}

func (a *application) runServe(ctx context.Context, svc *migrator.Service, logger *slog.Logger) error {
	cfg := a.config

	// Initial run so the output directory and journal are current.
	if b, err := svc.RunBatch(ctx); err != nil {
		logger.Warn("initial migration failed", slog.String("error", err.Error()))
	} else {
		sum := batchSummary(b)
		logger.Info("initial migration done",
			slog.Int("migrated", sum.Migrated),
			slog.Int("skipped", sum.Skipped),
			slog.Int("unchanged", sum.Unchanged))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, func(b *migrator.Batch) {
		broker.PublishBatchCompleted(batchSummary(b))
	})

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

	// Mount API routes (including GET /api/events) under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	ctx, stopAll := context.WithCancel(ctx)
	defer stopAll()
	g, gCtx := errgroup.WithContext(ctx)

	// Follow the input directory and push outcomes to SSE clients.
	g.Go(func() error {
		if err := svc.Watch(gCtx, broker.PublishPostEvent); err != nil {
			return fmt.Errorf("watcher error: %w", err)
		}
		return nil
	})

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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		stopAll() // stops the watcher

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
