package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/w93163red/LivCap-Translate/pkg/backend/gemini"
	"github.com/w93163red/LivCap-Translate/pkg/cli"
	"github.com/w93163red/LivCap-Translate/pkg/config"
	"github.com/w93163red/LivCap-Translate/pkg/limits"
	limitstorage "github.com/w93163red/LivCap-Translate/pkg/limits/storage"
	"github.com/w93163red/LivCap-Translate/pkg/models"
	"github.com/w93163red/LivCap-Translate/pkg/server"
	"github.com/w93163red/LivCap-Translate/pkg/session"
	"github.com/w93163red/LivCap-Translate/pkg/telemetry/logging"
	"github.com/w93163red/LivCap-Translate/pkg/telemetry/metrics"
	"github.com/w93163red/LivCap-Translate/pkg/usage/recorder"
	"github.com/w93163red/LivCap-Translate/pkg/usage/retention"
	usagestorage "github.com/w93163red/LivCap-Translate/pkg/usage/storage"
)

var runFlags struct {
	host     string
	port     int
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the LivCap Translate gateway",
	Long: `Start the LivCap Translate gateway with the specified configuration.

The gateway listens on the configured address and serves OpenAI-compatible
chat completion requests from a single shared Gemini session.

Examples:
  # Start with built-in defaults (reads GEMINI_API_KEY)
  livcap-translate run

  # Start with a custom config
  livcap-translate run --config /etc/livcap/config.yaml

  # Override the listen port
  livcap-translate run --port 8080

  # Validate config without starting the gateway
  livcap-translate run --dry-run`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.host, "host", "", "override listen host")
	runCmd.Flags().IntVarP(&runFlags.port, "port", "p", 0, "override listen port")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the gateway")
}

func runGateway(cmd *cobra.Command, args []string) error {
	// A .env file is optional; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.LoadWithEnv(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Errorf("failed to load config: %w", err))
	}

	// Apply flag overrides
	if runFlags.host != "" {
		cfg.Server.Host = runFlags.host
	}
	if runFlags.port != 0 {
		cfg.Server.Port = runFlags.port
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	} else if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, closeLogs, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err)
	}
	defer closeLogs()
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	ctx := cli.ShutdownContext()

	collector := metrics.NewCollector(metrics.Config{
		Enabled: cfg.Telemetry.Metrics.Enabled,
	}, nil)

	// Create the shared backend session
	client := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Backend.APIKey,
		Timeout: cfg.Backend.Timeout,
	}, logger)

	manager := session.NewManager(client, session.Config{
		MinInterval: cfg.Session.MinInterval,
		Metrics:     collector,
	}, logger)
	defer manager.Stop()

	// Warm the session so the first request does not pay for setup. A
	// missing API key is not fatal here: /health reports client_ready
	// false and completions fail with an auth error until a key arrives.
	if err := manager.Start(ctx); err != nil {
		slog.Warn("backend session not ready at startup", "error", err)
	} else {
		fmt.Println("✓ Gemini session ready")
	}

	// Model registry with the built-in table, optionally replaced from a
	// file and hot-reloaded on change
	registry := models.NewRegistry(logger)
	if cfg.Models.File != "" {
		if err := registry.LoadFile(cfg.Models.File); err != nil {
			slog.Warn("model table load failed, keeping built-in table",
				"path", cfg.Models.File,
				"error", err,
			)
		} else {
			fmt.Printf("✓ Model table loaded (%d models)\n", len(registry.List()))
		}

		if cfg.Models.Watch {
			watcher := models.NewTableWatcher(cfg.Models.File, logger)
			go func() {
				if err := watcher.Run(ctx, func() error {
					return registry.LoadFile(cfg.Models.File)
				}); err != nil {
					slog.Error("model table watch stopped", "error", err)
				}
			}()
		}
	}

	opts := server.Options{
		Sessions:  manager,
		Models:    registry,
		Collector: collector,
	}

	// Daily request caps (if configured)
	if cfg.Limits.DailyCap > 0 || len(cfg.Limits.PerModel) > 0 {
		limitsConfig := limits.Config{
			DailyCap:         cfg.Limits.DailyCap,
			PerModel:         cfg.Limits.PerModel,
			SnapshotInterval: cfg.Limits.SnapshotInterval,
		}
		if cfg.Limits.Database != "" {
			if err := ensureParentDir(cfg.Limits.Database); err != nil {
				return cli.NewCommandError("run", fmt.Errorf("failed to create limits database directory: %w", err))
			}
			store, err := limitstorage.NewSQLiteStore(cfg.Limits.Database)
			if err != nil {
				return cli.NewCommandError("run", fmt.Errorf("failed to open limits database: %w", err))
			}
			limitsConfig.Store = store
		}

		tracker, err := limits.NewTracker(limitsConfig)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to start usage limiter: %w", err))
		}
		defer tracker.Close()
		opts.Limiter = tracker

		fmt.Println("✓ Daily request caps enforced")
	}

	// Usage recording (if enabled)
	if cfg.Usage.Enabled {
		if err := ensureParentDir(cfg.Usage.Database); err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to create usage database directory: %w", err))
		}

		store, err := usagestorage.OpenSQLite(usagestorage.SQLiteConfig{Path: cfg.Usage.Database})
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open usage database: %w", err))
		}
		defer store.Close()

		rec := recorder.NewRecorder(store, &recorder.Config{
			Enabled:   true,
			QueueSize: cfg.Usage.Buffer,
		})
		defer rec.Close()
		opts.Recorder = rec

		// Scheduled retention sweeps
		if cfg.Usage.PruneSchedule != "" {
			janitor := retention.NewJanitor(store, retention.Policy{
				MaxAgeDays: cfg.Usage.RetentionDays,
				MaxRows:    cfg.Usage.MaxRecords,
				Schedule:   cfg.Usage.PruneSchedule,
			})
			if err := janitor.Start(ctx); err != nil {
				slog.Warn("failed to arm retention sweeps", "error", err)
			} else {
				defer janitor.Stop()
				if next := janitor.NextSweep(); next != nil {
					slog.Debug("usage retention sweeps armed", "next_sweep", next)
				}
			}
		}

		fmt.Println("✓ Usage recording enabled")
	}

	srv := server.NewServer(cfg, opts)

	fmt.Println()
	fmt.Printf("✓ Listening on %s\n", cfg.Server.ListenAddress())
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress())
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress(), cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("LivCap Translate v%s\n", Version)
	if cfgFile != "" {
		fmt.Printf("Loading configuration from: %s\n", cfgFile)
	} else {
		fmt.Println("Using built-in configuration defaults")
	}
	fmt.Println("✓ Configuration loaded")

	if cfg.Models.File != "" {
		slog.Debug("model table configured", "path", cfg.Models.File, "watch", cfg.Models.Watch)
	}
	if cfg.Usage.Enabled {
		slog.Debug("usage recording configured", "database", cfg.Usage.Database)
	}
	if cfg.Limits.DailyCap > 0 || len(cfg.Limits.PerModel) > 0 {
		slog.Debug("daily caps configured",
			"default_cap", cfg.Limits.DailyCap,
			"overrides", len(cfg.Limits.PerModel),
		)
	}
}

// ensureParentDir creates the directory holding path so SQLite can create
// the database file on first open.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0750)
}
