// Package main is the entry point for the agemon host-metrics agent.
// It loads configuration, wires the sampler, collectors, sender and
// scheduler, and runs either as a Windows service or a foreground process.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sakti/agemon/internal/collector"
	"github.com/sakti/agemon/internal/config"
	"github.com/sakti/agemon/internal/platform"
	"github.com/sakti/agemon/internal/remotewrite"
	"github.com/sakti/agemon/internal/sampler"
	"github.com/sakti/agemon/internal/scheduler"
	"github.com/sakti/agemon/internal/sender"
	"github.com/sakti/agemon/internal/service"
	"github.com/sakti/agemon/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// options collects the raw flag values before they are layered onto the
// file and environment configuration.
type options struct {
	configPath  string
	intervalSec int
	cli         config.CLIOverrides
	showVersion bool
}

func newRootCommand() *cobra.Command {
	return buildRootCommand(&options{})
}

func buildRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agemon",
		Short:         "Push host metrics to a Prometheus remote-write endpoint",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "agemon %s\n", version)
				return nil
			}

			cfg, err := opts.load(cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to configuration file (default: auto-discover)")
	flags.IntVar(&opts.intervalSec, "interval", 15, "Collection interval in seconds")
	flags.StringVar(&opts.cli.URL, "remote-write-url", "",
		"Remote write endpoint (env "+config.EnvRemoteWriteURL+", default http://localhost:9090/api/v1/write)")
	flags.StringVar(&opts.cli.Username, "username", "", "Basic auth username (env "+config.EnvRemoteWriteUsername+")")
	flags.StringVar(&opts.cli.Password, "password", "", "Basic auth password (env "+config.EnvRemoteWritePassword+")")
	flags.StringVar(&opts.cli.Hostname, "hostname", "", "Override the hostname label (env "+config.EnvHostname+")")
	flags.StringVar(&opts.cli.LogLevel, "log-level", "", "Log level: debug, info, warn, error (env "+config.EnvLogLevel+")")
	flags.StringVar(&opts.cli.LogFile, "log-file", "", "Also write JSON logs to this file")
	flags.StringVar(&opts.cli.TelemetryAddress, "telemetry-address", "",
		"Serve agent self-metrics on this address, e.g. :9101 (env "+config.EnvTelemetryAddress+")")
	flags.BoolVar(&opts.showVersion, "version", false, "Show version and exit")

	return cmd
}

// load layers explicitly set flags over env, file and defaults.
func (o *options) load(flags *pflag.FlagSet) (*config.Config, error) {
	if flags.Changed("interval") {
		if o.intervalSec <= 0 {
			return nil, fmt.Errorf("--interval must be a positive number of seconds (got %d)", o.intervalSec)
		}
		o.cli.Interval = time.Duration(o.intervalSec) * time.Second
	}

	if flags.Changed("config") {
		return config.LoadLayered(o.cli, o.configPath)
	}
	return config.LoadLayered(o.cli)
}

func run(cfg *config.Config) error {
	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logStartup(logger, cfg)

	if service.IsWindowsService() {
		logger.Info("Running as Windows service")
		svc := service.New(logger, func(ctx context.Context) {
			runAgent(ctx, cfg, logger)
		})
		if err := svc.Run(); err != nil {
			logger.Error("Service failed", zap.Error(err))
			return err
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		cancel()
	}()

	runAgent(ctx, cfg, logger)
	logger.Info("Agent stopped")
	return nil
}

// runAgent wires every component and blocks in the scheduler loop until the
// context is cancelled.
func runAgent(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	metrics := telemetry.New()
	if cfg.Telemetry.Address != "" {
		go func() {
			if err := telemetry.Serve(ctx, cfg.Telemetry.Address, metrics, logger); err != nil {
				logger.Error("Telemetry server failed", zap.Error(err))
			}
		}()
	}

	// Collector order is part of the output contract.
	registry := collector.NewRegistry(sampler.New(platform.New(), logger), cfg.Collection.Hostname, logger)
	registry.Register(collector.NewCPUCollector())
	registry.Register(collector.NewMemoryCollector())
	registry.Register(collector.NewDiskCollector())
	registry.Register(collector.NewNetworkCollector())
	registry.Register(collector.NewSystemCollector())

	snd := sender.New(cfg.RemoteWrite, remotewrite.NewEncoder(version), logger,
		sender.WithMetrics(metrics))

	sched := scheduler.New(cfg.Collection.Interval.Duration, func(ctx context.Context) error {
		return snd.Push(ctx, registry.Collect(ctx))
	}, logger)
	sched.OnCycleDone(metrics.ObserveCycle)

	logger.Info("Agent running",
		zap.Duration("interval", cfg.Collection.Interval.Duration),
		zap.String("remote_write_url", cfg.RemoteWrite.URL))
	sched.Run(ctx)
}
