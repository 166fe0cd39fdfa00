package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ewise123/insurance-pricing-engine/internal/insight"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the insight cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show insight cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := insight.NewFileCache(cfg.Cache.Dir, cfg.Cache.TTL())
		if err != nil {
			return eris.Wrap(err, "cache: open")
		}
		dir, entries := c.Stats()
		fmt.Printf("Directory: %s\n", dir)
		fmt.Printf("Entries:   %d\n", entries)
		fmt.Printf("TTL:       %s\n", cfg.Cache.TTL())
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired insight cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := insight.NewFileCache(cfg.Cache.Dir, cfg.Cache.TTL())
		if err != nil {
			return eris.Wrap(err, "cache: open")
		}
		removed, err := c.PurgeExpired()
		if err != nil {
			return eris.Wrap(err, "cache: purge")
		}
		fmt.Printf("Removed %d expired entries\n", removed)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
