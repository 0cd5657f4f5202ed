package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"provider-balancer/balancer/pkg/cli"
	"provider-balancer/balancer/pkg/config"
	"provider-balancer/balancer/pkg/server"
	"provider-balancer/balancer/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the balancer proxy server",
	Long: `Start the balancer proxy server with the specified configuration.

The server listens on the configured address and proxies the Anthropic
Messages API across the configured provider pool.

Examples:
  # Start with default config
  balancer run

  # Start with a custom config file
  balancer run --config /etc/balancer/balancer.yaml

  # Override listen address
  balancer run --listen 0.0.0.0:8080

  # Validate config without starting the server
  balancer run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	appLogger, err := configureLogging(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to configure logging: %v", err))
	}
	defer appLogger.Shutdown()

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	slog.Info("initializing server", "providers", len(cfg.Providers))
	srv, err := server.New(cfg, cfgFile, server.VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to build server: %w", err))
	}
	fmt.Printf("✓ Providers loaded (%d configured)\n", len(cfg.Providers))

	watcher, err := config.WatchFile(cfgFile, func(newCfg *config.Config) {
		providers := config.BuildProviders(newCfg.Providers)
		routes := config.BuildRoutes(newCfg.ModelRoutes)
		if err := srv.Registry().Reload(providers, routes); err != nil {
			slog.Error("provider registry reload rejected", "error", err)
			return
		}
		slog.Info("provider registry reloaded", "providers", len(providers))
	})
	if err != nil {
		slog.Warn("config hot-reload disabled: failed to watch config file", "path", cfgFile, "error", err)
	} else {
		defer watcher.Close()
		fmt.Println("✓ Config hot-reload watching", cfgFile)
	}

	sweeper := cron.New()
	sweepID, err := sweeper.AddFunc("@every 10s", srv.Tracker().SweepIdle)
	if err != nil {
		slog.Warn("failed to schedule health sweep", "error", err)
	} else {
		sweeper.Start()
		defer sweeper.Stop()
		_ = sweepID
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Proxy.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Proxy.ListenAddress)
	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Proxy.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Proxy.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}

// configureLogging builds the process's structured logger from the loaded
// config (level, format, source location, buffer size, PII redaction) and
// installs it as the slog default so every package logging through
// slog.InfoContext/ErrorContext picks up the same handler.
func configureLogging(cfg config.LoggingConfig) (*logging.Logger, error) {
	appLogger, err := logging.New(logging.Config{
		Level:          cfg.Level,
		Format:         cfg.Format,
		AddSource:      cfg.AddSource,
		RedactPII:      cfg.RedactSecrets,
		BufferSize:     cfg.BufferSize,
		RedactPatterns: cfg.RedactPatterns,
		Writer:         os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(appLogger.SlogHandler()))
	return appLogger, nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("balancer %s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")
	slog.Debug("providers configured", "count", len(cfg.Providers))
}
