package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/GiGiDKR/tokenwatch/internal/engine"
	"github.com/GiGiDKR/tokenwatch/internal/model"
)

var flagStatusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Evaluate current token usage once and print the report",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&flagStatusJSON, "json", false, "Print the raw report as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	logger := newLogger()

	cfg, plan, dataDir, err := resolveSettings()
	if err != nil {
		return err
	}

	src, closeCache := newSource(dataDir, logger)
	if closeCache != nil {
		defer func() { _ = closeCache() }()
	}

	now := time.Now().UTC()
	data := src.Fetch(now)

	eval := engine.NewEvaluator()
	if cfg.Limits.CustomBuffer > 0 {
		eval.Limits.CustomBuffer = cfg.Limits.CustomBuffer
	}

	report, err := eval.Evaluate(data, plan, now)
	if err != nil {
		return err
	}

	if flagStatusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

func printReport(r model.Report) {
	fmt.Println()
	switch r.Status {
	case model.StatusNoData:
		fmt.Println("  No usage data found.")
		fmt.Printf("  Plan: %s (limit %d tokens)\n", r.Plan, r.TokenLimit)
		fmt.Println()
		return
	case model.StatusNoActiveSession:
		fmt.Println("  No active session.")
		fmt.Printf("  Plan: %s (limit %d tokens)\n", r.Plan, r.TokenLimit)
		fmt.Println()
		return
	}

	planLabel := string(r.Plan)
	if r.PlanAutoSwitched {
		planLabel += " (auto-switched to historical peak)"
	}

	fmt.Printf("  Plan:        %s\n", planLabel)
	fmt.Printf("  Tokens:      %d / %d (%.1f%%)\n", r.TokensUsed, r.TokenLimit, r.UsagePercent)
	fmt.Printf("  Remaining:   %d\n", r.TokensLeft)
	fmt.Printf("  Burn rate:   %.1f tokens/min\n", r.BurnRatePerMin)
	fmt.Printf("  Session:     started %s\n", r.SessionStart.Format(time.RFC3339))
	fmt.Printf("  Resets:      %s\n", r.ResetTime.Format(time.RFC3339))

	if r.Prediction.MinutesToDepletion > 0 {
		fmt.Printf("  Depletion:   %s at current rate (%s)\n",
			fmtMinutes(r.Prediction.MinutesToDepletion),
			r.Prediction.PredictedEndTime.Format(time.RFC3339))
	}
	if r.Prediction.WillExhaustBeforeReset {
		fmt.Println("  Warning:     tokens will run out before the session resets")
	}
	if r.Notifications.ExceedMaxLimit {
		fmt.Println("  Warning:     token limit exceeded")
	}
	fmt.Println()
}
