package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/smart-calc-suite/internal/config"
	"github.com/iwvelando/smart-calc-suite/internal/insight"
	"github.com/iwvelando/smart-calc-suite/internal/mcpserver"
	"github.com/iwvelando/smart-calc-suite/internal/visitors"
	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfigurationIfExists(*configLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration at %s: %v\n", *configLocation, err)
		os.Exit(1)
	}

	// stdout carries the protocol, so logs must go elsewhere.
	if conf.Logging.OutputFile == "stdout" {
		conf.Logging.OutputFile = "stderr"
	}
	logger, _, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := insight.NewClient(ctx, conf.Insight.ToInsightConfig(), logger)
	if err != nil {
		logger.Fatal("failed to create insight client",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	counter := visitors.New(conf.Visitors.CounterOptions(logger)...)
	if err := counter.Start(ctx); err != nil {
		logger.Fatal("failed to start visitor counter",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer counter.Stop()

	if err := mcpserver.New(client, counter, version, logger).Serve(); err != nil {
		logger.Fatal("MCP server stopped",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
