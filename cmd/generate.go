package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ewise123/insurance-pricing-engine/internal/datagen"
	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic applicant datasets",
	Long: `Generate a seeded synthetic historical policy book and a batch of new
applicant profiles, written as CSV files.

Examples:
  pricing-engine generate --historical 1000 --profiles 50
  pricing-engine generate --historical 5000 --seed 7 --out-dir ./data`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.Int("historical", 1000, "number of historical records to generate")
	f.Int("profiles", 50, "number of new applicant profiles to generate")
	f.Int64("seed", 42, "random seed")
	f.String("out-dir", ".", "output directory")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	historical, _ := cmd.Flags().GetInt("historical")
	profiles, _ := cmd.Flags().GetInt("profiles")
	seed, _ := cmd.Flags().GetInt64("seed")
	outDir, _ := cmd.Flags().GetString("out-dir")

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return eris.Wrapf(err, "generate: create %s", outDir)
	}

	gen := datagen.New(seed)

	if historical > 0 {
		path := filepath.Join(outDir, "historical_customers.csv")
		if err := writeCSV(path, func(f *os.File) error {
			return model.WriteHistorical(f, gen.Historical(historical))
		}); err != nil {
			return err
		}
		fmt.Printf("Wrote %d historical records to %s\n", historical, path)
	}

	if profiles > 0 {
		path := filepath.Join(outDir, "new_customers.csv")
		if err := writeCSV(path, func(f *os.File) error {
			return model.WriteProfiles(f, gen.Profiles(profiles))
		}); err != nil {
			return err
		}
		fmt.Printf("Wrote %d applicant profiles to %s\n", profiles, path)
	}

	return nil
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "generate: create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return eris.Wrapf(err, "generate: write %s", path)
	}
	return f.Close()
}
