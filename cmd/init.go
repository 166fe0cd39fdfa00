package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat("config.yaml"); err == nil && !force {
			return eris.New("init: config.yaml already exists (use --force to overwrite)")
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return eris.Wrap(err, "init: marshal config")
		}

		if err := os.WriteFile("config.yaml", data, 0o644); err != nil {
			return eris.Wrap(err, "init: write config.yaml")
		}

		fmt.Println("Wrote config.yaml with current defaults.")
		fmt.Println("Set PRICING_ANALYSIS_KEY (or analysis.key) to enable pattern analysis.")
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config.yaml")
	rootCmd.AddCommand(initCmd)
}
