// Package main is the entry point for the a11y-triage CLI. It analyzes
// accessibility scan reports, enriches issues from the rule database and an
// optional AI provider, and serves the same pipeline over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/a11y-tools/a11y-triage/cmd/analyze"
	"github.com/a11y-tools/a11y-triage/cmd/cachecmd"
	"github.com/a11y-tools/a11y-triage/cmd/serve"
	"github.com/a11y-tools/a11y-triage/pkg/logger"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var (
		debug     bool
		logFormat string
	)

	root := &cobra.Command{
		Use:     "a11y-triage",
		Short:   "Prioritize and enrich accessibility scan results",
		Version: fmt.Sprintf("%s (built %s)", version, buildTime),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.SetupLogger(debug, logFormat)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text or json)")

	root.AddCommand(analyze.NewAnalyzeCommand())
	root.AddCommand(serve.NewServeCommand())
	root.AddCommand(cachecmd.NewCacheCommand())

	if err := root.Execute(); err != nil {
		logger.GetGlobalLogger().Error("command failed", "error", err)
		os.Exit(1)
	}
}
