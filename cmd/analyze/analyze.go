// Package analyze implements the analyze command: run the enrichment
// pipeline over a scan report file and print the result.
package analyze

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/a11y-tools/a11y-triage/internal/analyzer"
	"github.com/a11y-tools/a11y-triage/internal/config"
	"github.com/a11y-tools/a11y-triage/internal/enrichment/ai"
	"github.com/a11y-tools/a11y-triage/internal/enrichment/cache"
	"github.com/a11y-tools/a11y-triage/internal/report"
	"github.com/a11y-tools/a11y-triage/internal/rules"
	"github.com/a11y-tools/a11y-triage/pkg/logger"
)

var (
	configFile  string
	reportFile  string
	framework   string
	url         string
	output      string
	noAI        bool
	noCache     bool
	maxAIIssues int
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze an accessibility scan report",
		Long: `Analyze a scan report (axe-core, Pa11y, or generic JSON) and enrich each
issue with priority, user impact, fix guidance, and effort estimates.

Known rules resolve instantly from the built-in rule database. Unknown or
context-dependent rules escalate to the AI provider, bounded by a per-run
budget, with results cached across runs.`,
		Example: `  # Analyze an axe-core report
  a11y-triage analyze --file axe-results.json

  # React-specific fixes, no AI
  a11y-triage analyze --file report.json --framework react --no-ai

  # Raise the AI budget and emit JSON
  a11y-triage analyze --file report.json --max-ai-issues 10 --output json`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&reportFile, "file", "f", "", "Scan report JSON file, or - for stdin (required)")
	cmd.Flags().StringVar(&framework, "framework", "", "Frontend framework for fix guidance (html, react, vue, angular)")
	cmd.Flags().StringVar(&url, "url", "", "Scanned page URL, for the report header")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text or json)")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "Disable AI enrichment")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the persistent cache")
	cmd.Flags().IntVar(&maxAIIssues, "max-ai-issues", 0, "Per-run AI budget (0 = configured default)")

	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	log := logger.GetGlobalLogger()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	rawReport, err := readReport(reportFile)
	if err != nil {
		return err
	}

	db, err := loadRules(cfg)
	if err != nil {
		return err
	}

	var store cache.Store
	if !noCache {
		sqlStore, err := cache.NewSQLiteStore(cfg.Cache.Path, cache.WithTTL(cfg.CacheTTL()))
		if err != nil {
			log.Warn("cache unavailable, continuing without it", "error", err)
		} else {
			if removed, err := sqlStore.CleanupExpired(cmd.Context()); err == nil && removed > 0 {
				log.Debug("removed expired cache entries", "count", removed)
			}
			store = sqlStore
			defer func() { _ = sqlStore.Close() }()
		}
	}

	var provider ai.Provider
	useAI := cfg.AI.Enabled && !noAI
	if useAI {
		provider = ai.NewOpenRouterProvider(ai.OpenRouterConfig{
			APIKey:  cfg.APIKey(),
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Timeout: cfg.AITimeout(),
		}, db, log)
		if !provider.Available() {
			log.Info("no API key configured, using rule database only",
				"env", config.APIKeyEnv)
		}
	}

	budget := maxAIIssues
	if budget <= 0 {
		budget = cfg.AI.MaxAIIssues
	}
	var maxIssues *int
	if budget > 0 {
		maxIssues = &budget
	}
	fw := framework
	if fw == "" {
		fw = cfg.Framework
	}

	result, err := analyzer.New(db, store, provider, log).AnalyzeReport(
		cmd.Context(), rawReport, analyzer.Options{
			UseAI:       useAI,
			MaxAIIssues: maxIssues,
			Framework:   fw,
			URL:         url,
		})
	if err != nil {
		return err
	}

	if output == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	return report.WriteText(os.Stdout, result)
}

func readReport(path string) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parsing report JSON: %w", err)
	}
	return decoded, nil
}

func loadRules(cfg *config.Config) (*rules.DB, error) {
	if cfg.RulesPath != "" {
		return rules.LoadFile(cfg.RulesPath)
	}
	return rules.LoadDefault()
}
