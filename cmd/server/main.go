package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/iconidentify/tubegrab/internal/api"
	"github.com/iconidentify/tubegrab/internal/api/handler"
	"github.com/iconidentify/tubegrab/internal/backend"
	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/repository"
	"github.com/iconidentify/tubegrab/internal/service"
	"github.com/iconidentify/tubegrab/internal/worker"
	"github.com/iconidentify/tubegrab/pkg/ui"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.StringP("config", "c", "", "Path to config file")
	showVersion := flag.BoolP("version", "V", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tubegrab %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tubegrab",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Testimonial store is only opened when the section is shown
	var store repository.TestimonialStore
	if cfg.Features.Testimonials {
		store, err = openStore(cfg.Store)
		if err != nil {
			logger.Error("failed to open testimonial store", "driver", cfg.Store.Driver, "error", err)
			os.Exit(1)
		}
		logger.Info("testimonial store ready", "driver", cfg.Store.Driver)
	}

	// Initialize dependencies
	client := backend.NewHTTPClient(cfg.Backend)
	client.SetLogger(logger)

	pool := worker.NewPool(
		worker.Config{
			Workers:     cfg.Worker.Count,
			QueueSize:   cfg.Worker.QueueSize,
			TaskTimeout: cfg.Worker.TaskTimeout,
		},
		logger,
	)
	pool.Start()

	// Initialize services
	statsSvc := service.NewStatsService(client, logger)
	downloadSvc := service.NewDownloadService(client, pool, cfg.Download, logger)

	var testimonialSvc *service.TestimonialService
	if store != nil {
		testimonialSvc = service.NewTestimonialService(store, client, statsSvc, pool, logger)
		loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Store.Timeout)
		if err := testimonialSvc.Load(loadCtx); err != nil {
			// The page still renders with an empty board.
			logger.Warn("failed to load testimonials", "error", err)
		}
		cancelLoad()
	}

	if cfg.Features.Stats {
		statsCtx, cancelStats := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
		if _, err := statsSvc.Refresh(statsCtx); err != nil {
			logger.Warn("initial stats fetch failed, showing placeholders", "error", err)
		}
		cancelStats()
	}

	// Initialize handlers
	renderer, err := ui.NewRenderer()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	uiHandler := handler.NewUIHandler(renderer, cfg.Site, cfg.Features, statsSvc, testimonialSvc, downloadSvc, logger)
	handlers := api.Handlers{
		UI:       uiHandler,
		Download: handler.NewDownloadHandler(downloadSvc, uiHandler, logger),
		Stats:    handler.NewStatsHandler(statsSvc),
		Health:   handler.NewHealthHandler(store, dataDir(cfg)),
		Static:   ui.Static(),
	}
	if cfg.Features.Testimonials {
		handlers.Testimonials = handler.NewTestimonialHandler(testimonialSvc, uiHandler, logger)
	}

	// Setup router
	router := api.NewRouter(handlers, api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.WriteTimeout,
	}, logger)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Let queued side calls finish
	if err := pool.Stop(10 * time.Second); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func openStore(cfg config.StoreConfig) (repository.TestimonialStore, error) {
	switch cfg.Driver {
	case config.StoreDriverHosted:
		return repository.NewHostedTestimonialStore(cfg), nil
	default:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create store directory: %w", err)
			}
		}
		store, err := repository.NewSQLiteTestimonialStore(cfg.SQLitePath, cfg.Table)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// dataDir is the directory holding local state, if any.
func dataDir(cfg *config.Config) string {
	if !cfg.Features.Testimonials || cfg.Store.Driver != config.StoreDriverSQLite {
		return ""
	}
	return filepath.Dir(cfg.Store.SQLitePath)
}
