package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stackabletech/stackable/internal/core/fetch"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Interact with locally cached files",
}

var cacheListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List cached files",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache()
		if err != nil {
			return err
		}
		entries, err := cache.List()
		if err != nil {
			return fmt.Errorf("failed to list cache: %w", err)
		}

		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No cached files")
			return nil
		}

		w := newTable(cmd.OutOrStdout())
		if err := writeRow(w, "FILE", "LAST MODIFIED"); err != nil {
			return err
		}
		for _, entry := range entries {
			if err := writeRow(w, entry.Path, entry.LastModified.Format("2006-01-02 15:04:05")); err != nil {
				return err
			}
		}
		return w.Flush()
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all cached files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache()
		if err != nil {
			return err
		}
		removed, err := cache.Purge()
		if err != nil {
			return fmt.Errorf("failed to clean cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached file(s)\n", removed)
		return nil
	},
}

// openCache opens the cache directory even when --no-cache is set.
func openCache() (*fetch.Cache, error) {
	cache, err := fetch.NewCache(settings.Cache.BaseDir, settings.Cache.MaxAge)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return cache, nil
}

func init() {
	cacheCmd.AddCommand(cacheListCmd, cacheCleanCmd)
	rootCmd.AddCommand(cacheCmd)
}
