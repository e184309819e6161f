// Package config loads and persists tokenwatch configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all tokenwatch configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Limits  LimitsConfig  `toml:"limits"`
	Daemon  DaemonConfig  `toml:"daemon"`
	Alerts  AlertsConfig  `toml:"alerts"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Plan         string `toml:"plan"`
	DataDir      string `toml:"data_dir,omitempty"`
	PollInterval string `toml:"poll_interval,omitempty"`
}

// LimitsConfig holds quota resolution settings.
type LimitsConfig struct {
	// CustomBuffer scales the adaptive custom ceiling derived from the
	// historical peak. 1.0 means no headroom, 1.1 adds 10%.
	CustomBuffer float64 `toml:"custom_buffer"`
}

// DaemonConfig holds daemon runtime settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
	HistoryKeep  int    `toml:"history_keep"`
}

// AlertsConfig holds desktop notification settings.
type AlertsConfig struct {
	Desktop bool `toml:"desktop"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Plan:         "pro",
			PollInterval: "3s",
		},
		Limits: LimitsConfig{
			CustomBuffer: 1.0,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8707",
			EventsBuffer: 200,
			HistoryKeep:  5000,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tokenwatch")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tokenwatch")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config file
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// DataDir returns the Claude data directory: env var, then config, then
// the default ~/.claude.
func DataDir(cfg Config) string {
	if dir := os.Getenv("TOKENWATCH_DATA_DIR"); dir != "" {
		return dir
	}
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude")
}

// PollInterval parses the configured poll interval, falling back to 3s on
// a missing or malformed value.
func PollInterval(cfg Config) time.Duration {
	d, err := time.ParseDuration(cfg.General.PollInterval)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}
	return d
}
