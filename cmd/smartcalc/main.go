package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/iwvelando/smart-calc-suite/internal/calculator"
	"github.com/iwvelando/smart-calc-suite/internal/catalog"
	"github.com/iwvelando/smart-calc-suite/internal/config"
	"github.com/iwvelando/smart-calc-suite/internal/insight"
	"github.com/iwvelando/smart-calc-suite/internal/visitors"
	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"github.com/iwvelando/smart-calc-suite/pkg/output"
	"github.com/iwvelando/smart-calc-suite/pkg/validation"
	"go.uber.org/zap"
)

// inputFlags collects repeated -input key=value flags.
type inputFlags map[string]string

func (f inputFlags) String() string {
	pairs := make([]string, 0, len(f))
	for k, v := range f {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (f inputFlags) Set(value string) error {
	key, raw, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	f[strings.TrimSpace(key)] = raw
	return nil
}

func main() {
	inputs := inputFlags{}

	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	calculatorID := flag.String("calculator", "", "calculator to run: "+strings.Join(catalog.IDs(), ", "))
	flag.Var(inputs, "input", "calculator input as key=value (repeat for each input)")
	withInsight := flag.Bool("insight", false, "request an AI insight on the result")
	list := flag.Bool("list", false, "list the available calculators and exit")
	showVisitors := flag.Bool("visitors", false, "include the simulated live visitor count")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json, yaml")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// A missing config file is fine; every setting has a default.
	conf, err := config.LoadConfigurationIfExists(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, _, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	if *outputFormatFlag != "" {
		conf.Output.Format = *outputFormatFlag
	}
	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	warnings, err := conf.ValidateConfiguration()
	if err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	for _, warning := range warnings {
		logger.Debug("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if *list {
		if err := output.WriteCatalog(os.Stdout, conf.Output.Format, catalog.Definitions()); err != nil {
			logger.Fatal("failed to list calculators",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	if *calculatorID == "" {
		logger.Fatal("a calculator is required; use -list to see them",
			zap.String("op", "main"),
		)
	}
	def, err := catalog.Lookup(*calculatorID)
	if err != nil {
		logger.Fatal("unknown calculator",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var collaborator insight.Collaborator
	if *withInsight {
		client, err := insight.NewClient(ctx, conf.Insight.ToInsightConfig(), logger)
		if err != nil {
			logger.Fatal("failed to create insight client",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		collaborator = client
	}

	unit, err := calculator.New(def, collaborator, logger)
	if err != nil {
		logger.Fatal("failed to create calculator",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	for key, raw := range inputs {
		accepted, err := unit.SetInput(key, raw)
		if err != nil {
			logger.Fatal("invalid input",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		if !accepted {
			logger.Fatal("input is not a plain non-negative number",
				zap.String("op", "main"),
				zap.String("input", key),
				zap.String("value", raw),
			)
		}
	}

	if *withInsight {
		if _, err := unit.RequestInsight(ctx); err != nil {
			if !errors.Is(err, calculator.ErrNoResult) {
				logger.Fatal("insight request failed",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
			logger.Warn("no result to request an insight for",
				zap.String("op", "main"),
				zap.String("calculator", def.ID),
			)
		}
	}

	report := output.NewReport(unit.Definition(), unit.Snapshot())
	if *showVisitors {
		counter := visitors.New(conf.Visitors.CounterOptions(logger)...)
		report = report.WithVisitors(counter.Mount())
	}

	if err := output.Write(os.Stdout, conf.Output.Format, []output.Report{report}); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
