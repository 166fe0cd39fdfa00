package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ewise123/insurance-pricing-engine/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pricing-engine",
	Short: "Life insurance applicant scoring and pricing",
	Long:  "Scores applicants across twelve weighted risk factors against a historical policy book, derives premium bands, and optionally enriches pricing with Claude pattern analysis.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
