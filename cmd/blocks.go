package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GiGiDKR/tokenwatch/internal/model"
)

var flagBlocksLimit int

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "List recent 5-hour session blocks",
	RunE:  runBlocks,
}

func init() {
	blocksCmd.Flags().IntVarP(&flagBlocksLimit, "limit", "n", 10, "Max blocks to show, newest last")
	rootCmd.AddCommand(blocksCmd)
}

func runBlocks(_ *cobra.Command, _ []string) error {
	logger := newLogger()

	_, _, dataDir, err := resolveSettings()
	if err != nil {
		return err
	}

	src, closeCache := newSource(dataDir, logger)
	if closeCache != nil {
		defer func() { _ = closeCache() }()
	}

	now := time.Now().UTC()
	data := src.Fetch(now)
	if data == nil || len(data.Blocks) == 0 {
		fmt.Println()
		fmt.Println("  No usage data found.")
		fmt.Println()
		return nil
	}

	blocks := data.Blocks
	if flagBlocksLimit > 0 && len(blocks) > flagBlocksLimit {
		blocks = blocks[len(blocks)-flagBlocksLimit:]
	}

	fmt.Println()
	fmt.Printf("  %-25s %-25s %12s %8s  %s\n", "START", "END", "TOKENS", "ENTRIES", "STATE")
	for _, b := range blocks {
		fmt.Printf("  %-25s %-25s %12d %8d  %s\n",
			b.StartTime.Format(time.RFC3339),
			b.PeriodEnd().Format(time.RFC3339),
			b.TotalTokens,
			b.Entries,
			blockState(b),
		)
	}
	fmt.Println()
	return nil
}

func blockState(b model.UsageBlock) string {
	switch {
	case b.IsGap:
		return "gap"
	case b.IsActive:
		return "active"
	default:
		return "closed"
	}
}
