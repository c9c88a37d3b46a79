package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Targets for the persistent flags shared by every subcommand.
var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "livcap-translate",
	Short: "LivCap Translate - OpenAI-compatible gateway for a shared Gemini session",
	Long: `LivCap Translate is an HTTP gateway that speaks the OpenAI chat completion
wire format and serves every request from a single long-lived Gemini session.

It provides:
  - OpenAI-compatible /v1/chat/completions with bulk and SSE streaming
  - Model aliasing (gpt-4o and friends map onto Gemini models)
  - Daily per-model request caps with persistent counters
  - Usage recording with scheduled retention pruning
  - Prometheus metrics and structured logging

For more information, visit: https://github.com/w93163red/LivCap-Translate`,
	Version: Version,
}

// Execute dispatches to the subcommands, exiting nonzero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (built-in defaults apply when unset)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
