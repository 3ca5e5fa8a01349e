// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ztk/internal/export"
	"github.com/starford/ztk/internal/graph"
	"github.com/starford/ztk/internal/index"
	"github.com/starford/ztk/internal/logfields"
	"github.com/starford/ztk/internal/mcpserver"
	"github.com/starford/ztk/internal/note"
	"github.com/starford/ztk/internal/render"
	"github.com/starford/ztk/internal/server"
	"github.com/starford/ztk/internal/sse"
	"github.com/starford/ztk/internal/storage"
	"github.com/starford/ztk/internal/watch"
)

func newApplication(opts ...Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := app.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Logs go to stderr: stdout carries the MCP stdio transport.
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
		slog.SetDefault(app.logger)
	}
	if app.renderer == nil {
		app.renderer = render.NewGoldmark(render.Options{SafeMode: app.config.Export.SafeMode})
	}
	return app, nil
}

// loadGraph reads every note in the input directory and builds the graph.
func (a *application) loadGraph(store storage.Provider) (*graph.Graph, error) {
	cfg := a.config

	nodes, err := note.Load(store, note.Filter{
		Required:      cfg.Filter.Required,
		Forbidden:     cfg.Filter.Forbidden,
		StripRequired: cfg.Filter.StripRequired,
	})
	if err != nil {
		return nil, err
	}

	var style string
	if cfg.Site.Style != "" {
		data, err := os.ReadFile(cfg.Site.Style)
		if err != nil {
			return nil, fmt.Errorf("read stylesheet: %w", err)
		}
		style = string(data)
	}

	return graph.New(nodes, graph.WithTitle(cfg.Site.Name), graph.WithStyle(style)), nil
}

// build runs one full load and export. The graph is returned even when some
// pages failed to export.
func (a *application) build(ctx context.Context, store storage.Provider) (*graph.Graph, *export.Result, error) {
	cfg := a.config

	g, err := a.loadGraph(store)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.Site.Output, 0o755); err != nil {
		return g, nil, fmt.Errorf("create output dir: %w", err)
	}
	out, err := storage.NewFS(cfg.Site.Output)
	if err != nil {
		return g, nil, err
	}

	exporter := export.New(a.renderer, out,
		export.WithExtension(cfg.Export.Extension),
		export.WithStyleExtension(cfg.Export.StyleExtension),
		export.WithWorkers(cfg.Export.Workers),
		export.WithLogger(a.logger),
	)
	res, err := exporter.Export(ctx, g)
	return g, res, err
}

// watchOptions fingerprints the watched files. Call it before the first
// build so edits made while that build runs still trigger a rebuild.
func (a *application) watchOptions(store storage.Provider) watch.Options {
	opts := watch.Options{Dir: a.config.Site.Input}
	if a.config.Site.Style != "" {
		opts.Extra = []string{a.config.Site.Style}
	}
	fp, err := watch.Fingerprint(store, opts.Extra)
	if err != nil {
		a.logger.Warn("watch: baseline fingerprint failed", logfields.Error(err))
	}
	opts.Baseline = fp
	return opts
}

// Build exports the site once. When Site.Watch is set it then keeps
// rebuilding on every change to the notes or the stylesheet until ctx is
// cancelled.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	if err := cfg.Site.RequireOutput(); err != nil {
		return err
	}

	app.logger.Info("build: starting",
		slog.String("input", cfg.Site.Input),
		slog.String("output", cfg.Site.Output),
		slog.Int("workers", cfg.Export.Workers))

	store, err := storage.NewFS(cfg.Site.Input)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	var watchOpts watch.Options
	if cfg.Site.Watch {
		watchOpts = app.watchOptions(store)
	}
	if _, _, err := app.build(ctx, store); err != nil {
		return err
	}
	if !cfg.Site.Watch {
		return nil
	}

	var mu sync.Mutex
	return watch.Run(ctx, store, watchOpts, app.logger, func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		_, _, err := app.build(ctx, store)
		return err
	})
}

// Serve builds the site, then serves it over HTTP together with the search
// API and a live reload event stream. The site is rebuilt on every change.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger
	if err := cfg.Site.RequireOutput(); err != nil {
		return err
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.HTTP.Address()),
		slog.String("input", cfg.Site.Input),
		slog.String("output", cfg.Site.Output),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Site.Input)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	broker := sse.NewBroker()
	defer broker.Close()

	var (
		current atomic.Pointer[graph.Graph]
		mu      sync.Mutex
	)
	rebuild := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()

		g, res, err := app.build(ctx, store)
		if g == nil {
			broker.PublishBuild(0, 0, err)
			return err
		}
		current.Store(g)
		if ierr := db.Rebuild(g); ierr != nil {
			logger.Warn("index: rebuild failed", logfields.Error(ierr))
		}
		pages := 0
		if res != nil {
			pages = res.Pages
		}
		broker.PublishBuild(pages, g.Len(), err)
		return err
	}

	watchOpts := app.watchOptions(store)
	if err := rebuild(ctx); err != nil {
		// A partial export still leaves a usable site behind.
		var pe *export.PageError
		if !errors.As(err, &pe) {
			return err
		}
		logger.Error("build: some pages failed", logfields.Error(err))
	}

	router := server.NewRouter(server.Deps{
		OutDir: cfg.Site.Output,
		Index:  db,
		Graph:  current.Load,
		Events: broker,
	})
	httpServer := &http.Server{
		Addr:    cfg.HTTP.Address(),
		Handler: router,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watch.Run(gCtx, store, watchOpts, logger, rebuild)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", logfields.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", logfields.Error(err))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ServeMCP loads the notes into a graph and an in-process index and serves
// them to an MCP client over stdio.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config

	store, err := storage.NewFS(cfg.Site.Input)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	g, err := app.loadGraph(store)
	if err != nil {
		return err
	}

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()
	if err := db.Rebuild(g); err != nil {
		return fmt.Errorf("index notes: %w", err)
	}

	app.logger.Info("mcp: serving", logfields.Notes(g.Len()), logfields.Tags(len(g.Tags())))

	err = mcpserver.New(g, db, app.version).ServeStdio(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
