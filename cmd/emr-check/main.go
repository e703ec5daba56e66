// Package main provides the emr-check command, which validates clinical
// resource files and classifies vital-sign readings.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/afmhelaluddin77/EMR/internal/config"
	"github.com/afmhelaluddin77/EMR/internal/intake"
	"github.com/afmhelaluddin77/EMR/internal/observability/metrics"
	"github.com/afmhelaluddin77/EMR/internal/observability/tracing"
)

// Exit codes.
const (
	exitOK           = 0
	exitInvalid      = 1
	exitPrecondition = 2
)

// app carries the state shared by all commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer

	configPath  string
	logLevel    string
	metricsFile string
	workers     int

	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	provider *tracing.Provider
	service  *intake.Service

	// code is the exit code raised by per-payload outcomes. Commands report
	// outcomes here and return nil so that teardown still runs.
	code int
}

// raise records an exit code, keeping the most severe one.
func (a *app) raise(code int) {
	a.code = max(a.code, code)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "emr-check:", err)
		return exitPrecondition
	}
	return a.code
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "emr-check",
		Short:             "Validate clinical resources and classify vital signs",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (.env or YAML)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
	flags.IntVar(&a.workers, "workers", 0, "concurrent validation workers")

	root.AddCommand(a.validateCmd())
	root.AddCommand(a.classifyCmd())
	root.AddCommand(a.extensionCmd())
	return root
}

// setup loads configuration and builds the logger, metrics, tracing and
// intake service. Flags override configured values.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = a.metricsFile
	}
	if flags.Changed("workers") {
		cfg.Workers = a.workers
	}
	if flags.Lookup("require-id") != nil && flags.Changed("require-id") {
		cfg.RequireID, _ = flags.GetBool("require-id")
	}
	if flags.Lookup("derived-bmi") != nil && flags.Changed("derived-bmi") {
		cfg.DerivedBMI, _ = flags.GetBool("derived-bmi")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.logger = logger.With(zap.String("command", cmd.Name()))

	tc := tracing.DefaultConfig(cfg.ServiceName)
	tc.Environment = cfg.Environment
	tc.OTLPEndpoint = cfg.OTLPEndpoint
	tc.SampleRate = cfg.TraceSampleRate
	a.provider, err = tracing.Init(cmd.Context(), tc, a.logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	a.metrics = metrics.New(nil)
	a.service = intake.New(intake.Config{
		Workers:    cfg.Workers,
		CacheSize:  cfg.CacheSize,
		RequireID:  cfg.RequireID,
		DerivedBMI: cfg.DerivedBMI,
	}, a.metrics, a.logger)
	return nil
}

// teardown flushes metrics, spans and logs.
func (a *app) teardown(ctx context.Context) error {
	var errs []error
	if a.cfg != nil && a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.provider != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := a.provider.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}
