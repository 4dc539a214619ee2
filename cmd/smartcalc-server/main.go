package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/smart-calc-suite/internal/catalog"
	"github.com/iwvelando/smart-calc-suite/internal/config"
	"github.com/iwvelando/smart-calc-suite/internal/insight"
	"github.com/iwvelando/smart-calc-suite/internal/page"
	"github.com/iwvelando/smart-calc-suite/internal/server"
	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	watch := flag.Bool("watch", true, "reload the log level when the configuration file changes")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, level, err := config.NewLogger(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid server configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := insight.NewClient(ctx, cfg.Insight.ToInsightConfig(), logger)
	if err != nil {
		logger.Fatal("failed to create insight client",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	pages := page.NewRegistry(ctx, page.Options{
		Definitions:    catalog.Definitions(),
		Collaborator:   client,
		CounterOptions: cfg.Visitors.CounterOptions(logger),
		Logger:         logger,
	},
		page.WithIdleTimeout(cfg.PageIdleTimeout),
		page.WithMaxPages(cfg.MaxPages),
	)
	defer pages.CloseAll()

	// The log level follows the file unless overridden on the command line.
	if *watch && *logLevel == "" {
		go func() {
			if err := server.WatchConfig(ctx, *configLocation, logger, server.LevelUpdater(level, logger)); err != nil {
				logger.Warn("server config watch disabled",
					zap.String("op", "main"),
					zap.String("path", *configLocation),
					zap.Error(err),
				)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, pages, cfg.BodySizeBytes(), version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped",
				zap.String("op", "main"),
				zap.Error(err),
			)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", zap.String("op", "main"))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
