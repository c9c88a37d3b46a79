package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/w93163red/LivCap-Translate/pkg/cli"
	"github.com/w93163red/LivCap-Translate/pkg/config"
	"github.com/w93163red/LivCap-Translate/pkg/models"
)

var validateFlags struct {
	checkModels bool
	format      string
}

// validationResult is the machine-readable outcome of a validate run.
type validationResult struct {
	Source   string   `json:"source"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
	Models   int      `json:"models,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the configuration without starting the gateway.

The validate command loads the configuration (including LIVCAP_* environment
overrides), reports every validation failure it finds, and optionally checks
that the configured model table parses.

Examples:
  # Validate the default configuration
  livcap-translate validate

  # Validate a specific file
  livcap-translate validate --config /etc/livcap/config.yaml

  # Also check the model table
  livcap-translate validate --models

  # Machine-readable output
  livcap-translate validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.checkModels, "models", false, "also check that the model table parses")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	result := validationResult{Source: cfgFile, Valid: true}
	if result.Source == "" {
		result.Source = "built-in defaults"
	}

	cfg, err := config.LoadWithEnv(cfgFile)
	if err != nil {
		result.Valid = false

		var validationErr config.ValidationError
		if errors.As(err, &validationErr) {
			for _, fieldErr := range validationErr.Errors {
				result.Problems = append(result.Problems, fieldErr.Error())
			}
		} else {
			result.Problems = append(result.Problems, err.Error())
		}
	}

	if result.Valid && validateFlags.checkModels && cfg.Models.File != "" {
		// Keep registry logging out of command output
		registry := models.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
		if loadErr := registry.LoadFile(cfg.Models.File); loadErr != nil {
			result.Valid = false
			result.Problems = append(result.Problems, fmt.Sprintf("model table: %v", loadErr))
		} else {
			result.Models = len(registry.List())
		}
	}

	if cli.ParseFormat(validateFlags.format) == cli.FormatJSON {
		if err := cli.Write(os.Stdout, cli.FormatJSON, result); err != nil {
			return err
		}
	} else {
		printValidationResult(cfg, result)
	}

	if !result.Valid {
		return cli.NewCommandError("validate", fmt.Errorf("validation failed"))
	}
	return nil
}

func printValidationResult(cfg *config.Config, result validationResult) {
	if !result.Valid {
		fmt.Printf("✗ Configuration invalid (%s)\n", result.Source)
		for _, problem := range result.Problems {
			fmt.Printf("  - %s\n", problem)
		}
		return
	}

	fmt.Printf("✓ Configuration valid (%s)\n", result.Source)
	if result.Models > 0 {
		fmt.Printf("✓ Model table valid (%d models)\n", result.Models)
	}

	if verbose {
		fmt.Println()
		fmt.Printf("  listen address:   %s\n", cfg.Server.ListenAddress())
		fmt.Printf("  session pacing:   %s\n", cfg.Session.MinInterval)
		fmt.Printf("  backend timeout:  %s\n", cfg.Backend.Timeout)
		if cfg.Models.File != "" {
			fmt.Printf("  model table:      %s (watch: %v)\n", cfg.Models.File, cfg.Models.Watch)
		}
		if cfg.Usage.Enabled {
			fmt.Printf("  usage database:   %s\n", cfg.Usage.Database)
		}
		if cfg.Limits.DailyCap > 0 || len(cfg.Limits.PerModel) > 0 {
			fmt.Printf("  daily cap:        %d (%d overrides)\n", cfg.Limits.DailyCap, len(cfg.Limits.PerModel))
		}
		if cfg.Telemetry.Metrics.Enabled {
			fmt.Printf("  metrics path:     %s\n", cfg.Telemetry.Metrics.Path)
		}
	}
}
