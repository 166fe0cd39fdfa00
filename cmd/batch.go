package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score a CSV of applicants concurrently",
	Long: `Score every applicant in a CSV file and write the assessments as a JSON
array. Invalid rows are reported and skipped; they never abort the batch.

Examples:
  pricing-engine batch -f new_customers.csv -o assessments.json
  pricing-engine batch -f new_customers.csv --concurrency 10`,
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringP("file", "f", "", "applicant CSV file")
	f.StringP("output", "o", "", "output file path (default: stdout)")
	f.Int("concurrency", 0, "max concurrent assessments (default from config)")
	batchCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(batchCmd)
}

type batchFailure struct {
	CustomerID string `json:"customer_id"`
	Error      string `json:"error"`
}

type batchOutput struct {
	Total       int                 `json:"total"`
	Succeeded   int                 `json:"succeeded"`
	Failed      int                 `json:"failed"`
	Assessments []*model.Assessment `json:"assessments"`
	Failures    []batchFailure      `json:"failures,omitempty"`
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("file")
	outputPath, _ := cmd.Flags().GetString("output")
	if concurrency, _ := cmd.Flags().GetInt("concurrency"); concurrency > 0 {
		cfg.Batch.MaxConcurrent = concurrency
	}

	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "batch: open %s", path)
	}
	profiles, err := model.ReadProfiles(f)
	f.Close()
	if err != nil {
		return eris.Wrapf(err, "batch: parse %s", path)
	}
	if len(profiles) == 0 {
		return eris.Errorf("batch: %s contains no profiles", path)
	}

	env, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	zap.L().Info("batch: starting",
		zap.Int("profiles", len(profiles)),
		zap.Int("concurrency", cfg.Batch.MaxConcurrent),
	)

	items := env.Pipeline.AssessBatch(ctx, profiles)

	out := batchOutput{Total: len(items)}
	for i, item := range items {
		if item.Err != nil {
			out.Failed++
			out.Failures = append(out.Failures, batchFailure{
				CustomerID: profiles[i].CustomerID,
				Error:      item.Err.Error(),
			})
			continue
		}
		out.Succeeded++
		out.Assessments = append(out.Assessments, item.Assessment)
	}

	w := os.Stdout
	if outputPath != "" {
		w, err = os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "batch: create %s", outputPath)
		}
		defer w.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return eris.Wrap(err, "batch: encode output")
	}

	if outputPath != "" {
		fmt.Printf("Scored %d/%d applicants -> %s\n", out.Succeeded, out.Total, outputPath)
	}
	return nil
}
