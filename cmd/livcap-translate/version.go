package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, overridable at link time:
//
//	go build -ldflags "-X main.Version=1.2.3 -X main.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// versionBanner renders the full version report.
func versionBanner() string {
	return fmt.Sprintf("LivCap Translate %s\ncommit %s, built %s\n%s %s/%s\n",
		Version, GitCommit, BuildDate,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the gateway version and build metadata",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionBanner())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
