// Package cmd implements the tokenwatch CLI commands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/GiGiDKR/tokenwatch/internal/config"
	"github.com/GiGiDKR/tokenwatch/internal/fetch"
	"github.com/GiGiDKR/tokenwatch/internal/logging"
	"github.com/GiGiDKR/tokenwatch/internal/model"
	"github.com/GiGiDKR/tokenwatch/internal/pipeline"
	"github.com/GiGiDKR/tokenwatch/internal/store"
)

var (
	flagPlan    string
	flagDataDir string
	flagNoCache bool
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "tokenwatch",
	Short: "Claude token quota monitor",
	Long:  "Track token usage against your plan's 5-hour session quota: burn rate, depletion prediction, and limit alerts.",
	RunE:  runStatus,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagPlan, "plan", "p", "", "Plan: pro, max5, max20, or custom (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Claude data directory (default from config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

func newLogger() zerolog.Logger {
	return logging.New(os.Stderr, true, flagDebug)
}

// resolveSettings merges config file values with command-line flag
// overrides.
func resolveSettings() (config.Config, model.Plan, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, "", "", err
	}

	planName := cfg.General.Plan
	if flagPlan != "" {
		planName = flagPlan
	}
	plan, err := model.ParsePlan(planName)
	if err != nil {
		return cfg, "", "", err
	}

	dataDir := config.DataDir(cfg)
	if flagDataDir != "" {
		dataDir = flagDataDir
	}

	return cfg, plan, dataDir, nil
}

// newSource builds the usage data source, cache-assisted unless --no-cache.
// The returned closer is nil when no cache was opened.
func newSource(dataDir string, logger zerolog.Logger) (fetch.Source, func() error) {
	src := &fetch.FileSource{DataDir: dataDir, Logger: logger}

	if flagNoCache {
		return src, nil
	}

	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		logger.Warn().Err(err).Msg("cache unavailable, doing full parse")
		return src, nil
	}
	src.Cache = cache
	return src, cache.Close
}

func fmtMinutes(m float64) string {
	d := time.Duration(m * float64(time.Minute))
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
