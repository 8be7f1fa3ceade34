// Package serve implements the serve command: run the triage HTTP API.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/a11y-tools/a11y-triage/internal/analyzer"
	"github.com/a11y-tools/a11y-triage/internal/config"
	"github.com/a11y-tools/a11y-triage/internal/enrichment/ai"
	"github.com/a11y-tools/a11y-triage/internal/enrichment/cache"
	"github.com/a11y-tools/a11y-triage/internal/rules"
	"github.com/a11y-tools/a11y-triage/internal/server"
	"github.com/a11y-tools/a11y-triage/pkg/logger"
)

var (
	configFile string
	addr       string
	noCache    bool
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the triage pipeline over HTTP",
		Long: `Start the HTTP API: POST /analyze runs the enrichment pipeline over a
submitted report, GET /health reports provider availability, and the /cache
routes expose cache statistics and maintenance.`,
		Example: `  # Serve on the configured address
  a11y-triage serve

  # Override the listen address
  a11y-triage serve --addr :9090`,
		RunE: runServe,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the persistent cache")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.GetGlobalLogger()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	var db *rules.DB
	if cfg.RulesPath != "" {
		db, err = rules.LoadFile(cfg.RulesPath)
	} else {
		db, err = rules.LoadDefault()
	}
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
	if cfg.AI.Enabled {
		provider = ai.NewOpenRouterProvider(ai.OpenRouterConfig{
			APIKey:  cfg.APIKey(),
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Timeout: cfg.AITimeout(),
		}, db, log)
	}

	aiAvailable := provider != nil && provider.Available()
	triageServer := server.New(
		analyzer.New(db, store, provider, log), store, db, aiAvailable, log)

	listenAddr := addr
	if listenAddr == "" {
		listenAddr = cfg.Server.Addr
	}
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           triageServer.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", listenAddr, "ai_configured", aiAvailable)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
