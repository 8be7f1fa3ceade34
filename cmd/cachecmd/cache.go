// Package cachecmd implements the cache maintenance commands.
package cachecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a11y-tools/a11y-triage/internal/config"
	"github.com/a11y-tools/a11y-triage/internal/enrichment/cache"
)

var (
	configFile string
	cachePath  string
)

// NewCacheCommand creates the cache command with its subcommands.
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the enrichment cache",
	}
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	cmd.PersistentFlags().StringVar(&cachePath, "path", "", "Cache database path (overrides config)")

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE:  runStats,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired cache entries",
		RunE:  runCleanup,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all cache entries",
		RunE:  runClear,
	})
	return cmd
}

func openStore() (*cache.SQLiteStore, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	path := cachePath
	if path == "" {
		path = cfg.Cache.Path
	}
	return cache.NewSQLiteStore(path, cache.WithTTL(cfg.CacheTTL()))
}

func runStats(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Entries: %d total, %d valid, %d expired\n",
		stats.TotalEntries, stats.ValidEntries, stats.ExpiredEntries)
	fmt.Printf("TTL:     %s\n", stats.TTL)
	if stats.OldestEntry != nil {
		fmt.Printf("Oldest:  %s\n", stats.OldestEntry.Format("2006-01-02 15:04:05"))
	}
	if stats.NewestEntry != nil {
		fmt.Printf("Newest:  %s\n", stats.NewestEntry.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	removed, err := store.CleanupExpired(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d expired entries\n", removed)
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	removed, err := store.Clear(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d entries\n", removed)
	return nil
}
