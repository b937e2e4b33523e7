package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iconidentify/vidfetch/internal/api"
	"github.com/iconidentify/vidfetch/internal/api/handler"
	"github.com/iconidentify/vidfetch/internal/config"
	"github.com/iconidentify/vidfetch/internal/extractor"
	"github.com/iconidentify/vidfetch/internal/repository"
	"github.com/iconidentify/vidfetch/internal/service"
	"github.com/iconidentify/vidfetch/internal/worker"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vidfetch %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting vidfetch",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if lvl, err := cfg.Log.SlogLevel(); err == nil {
		level.Set(lvl)
	}

	// Ensure scratch root exists
	if err := os.MkdirAll(cfg.Scratch.TempPath, 0755); err != nil {
		logger.Error("failed to create scratch directory", "error", err)
		os.Exit(1)
	}

	// Initialize dependencies
	scratchRepo := repository.NewFilesystemScratchRepository(cfg.Scratch)
	ytdlp := extractor.NewYtDlp(cfg.Extractor, logger)

	mediaSvc := service.NewMediaService(
		ytdlp,
		scratchRepo,
		cfg.Scratch,
		cfg.Extractor,
		logger,
	)

	// Initialize handlers
	mediaHandler := handler.NewMediaHandler(mediaSvc, scratchRepo, logger)
	healthHandler := handler.NewHealthHandler(scratchRepo)

	// Setup router
	router := api.NewRouter(mediaHandler, healthHandler, cfg.Server.RequestTimeout)

	// Start scratch janitor
	janitor := worker.NewJanitor(cfg.Scratch, scratchRepo, logger)
	janitor.Start()

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server",
			"addr", srv.Addr,
			"scratch", cfg.Scratch.TempPath,
		)
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

	if err := janitor.Stop(5 * time.Second); err != nil {
		logger.Error("janitor shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
