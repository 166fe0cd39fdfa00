package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score and price a single applicant",
	Long: `Score one applicant profile against the historical book and print the
assessment.

The profile is read from a JSON file (or stdin with -). Output is either the
full assessment as JSON or the underwriter-facing executive summary.

Examples:
  # Full assessment as JSON
  pricing-engine score -f applicant.json

  # Human-readable summary
  pricing-engine score -f applicant.json --format summary

  # Pipe a profile through stdin
  cat applicant.json | pricing-engine score -f -`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.StringP("file", "f", "", "applicant profile JSON file (- for stdin)")
	f.String("format", "json", "output format: json or summary")
	scoreCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("file")
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "summary" {
		return eris.Errorf("score: --format must be json or summary (got %q)", format)
	}

	profile, err := readProfile(path)
	if err != nil {
		return err
	}

	env, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	assessment, err := env.Pipeline.Assess(ctx, profile)
	if err != nil {
		return eris.Wrapf(err, "score: %s", profile.CustomerID)
	}

	switch format {
	case "summary":
		fmt.Println(assessment.Summary)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(assessment); err != nil {
			return eris.Wrap(err, "score: encode output")
		}
	}
	return nil
}

func readProfile(path string) (*model.CustomerProfile, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "score: read %s", path)
	}

	var p model.CustomerProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "score: parse %s", path)
	}
	return &p, nil
}
