package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GiGiDKR/tokenwatch/internal/pipeline"
	"github.com/GiGiDKR/tokenwatch/internal/store"
)

var (
	flagHistoryPage     int
	flagHistoryPageSize int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored evaluation reports, newest first",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryPage, "page", 1, "Page number")
	historyCmd.Flags().IntVar(&flagHistoryPageSize, "page-size", 20, "Reports per page")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return fmt.Errorf("open report history: %w", err)
	}
	defer func() { _ = cache.Close() }()

	hp, err := cache.History(flagHistoryPage, flagHistoryPageSize)
	if err != nil {
		return err
	}

	if hp.TotalItems == 0 {
		fmt.Println()
		fmt.Println("  No reports recorded yet. Run the daemon to collect history.")
		fmt.Println()
		return nil
	}

	fmt.Println()
	fmt.Printf("  %-25s %-18s %-8s %12s %12s %8s\n",
		"TIMESTAMP", "STATUS", "PLAN", "USED", "LIMIT", "RATE")
	for _, r := range hp.Reports {
		fmt.Printf("  %-25s %-18s %-8s %12d %12d %8.1f\n",
			r.Timestamp.Format(time.RFC3339),
			r.Status,
			r.Plan,
			r.TokensUsed,
			r.TokenLimit,
			r.BurnRatePerMin,
		)
	}
	fmt.Println()
	fmt.Printf("  Page %d of %d (%d reports)\n", hp.Page, hp.TotalPages, hp.TotalItems)
	fmt.Println()
	return nil
}
