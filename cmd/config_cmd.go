package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GiGiDKR/tokenwatch/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	path := config.ConfigPath()
	fmt.Printf("  Config file: %s\n", path)
	if _, err := os.Stat(path); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [general]")
	fmt.Printf("    Plan:          %s\n", cfg.General.Plan)
	fmt.Printf("    Data dir:      %s\n", config.DataDir(cfg))
	fmt.Printf("    Poll interval: %s\n", config.PollInterval(cfg))
	fmt.Println()

	fmt.Println("  [limits]")
	fmt.Printf("    Custom buffer: %.2f\n", cfg.Limits.CustomBuffer)
	fmt.Println()

	fmt.Println("  [daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Printf("    History keep:  %d\n", cfg.Daemon.HistoryKeep)
	fmt.Println()

	fmt.Println("  [alerts]")
	fmt.Printf("    Desktop:       %v\n", cfg.Alerts.Desktop)
	fmt.Println()

	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := config.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := config.Save(config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("  Wrote %s\n", path)
	return nil
}
