// Package config loads and saves ledgercast's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all ledgercast configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Categories CategoriesConfig `toml:"categories"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir       string `toml:"data_dir,omitempty"`
	UserID        string `toml:"user_id"`
	HistoryMonths int    `toml:"history_months"`
	MonthsAhead   int    `toml:"months_ahead"`
}

// CategoriesConfig points at a custom keyword table.
type CategoriesConfig struct {
	KeywordFile string `toml:"keyword_file,omitempty"`
}

// AppearanceConfig holds theme and display settings.
type AppearanceConfig struct {
	Theme    string `toml:"theme"`
	Currency string `toml:"currency"`
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	Addr      string   `toml:"addr"`
	Schedule  string   `toml:"schedule"`
	RedisAddr string   `toml:"redis_addr,omitempty"`
	ReportTTL Duration `toml:"report_ttl"`
}

// Duration is a time.Duration that reads and writes as a string like "10m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			UserID:        "local",
			HistoryMonths: 12,
			MonthsAhead:   3,
		},
		Appearance: AppearanceConfig{
			Theme:    "flexoki-dark",
			Currency: "$",
		},
		Daemon: DaemonConfig{
			Addr:      "127.0.0.1:8787",
			Schedule:  "@every 5m",
			ReportTTL: Duration{time.Hour},
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ledgercast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ledgercast")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DefaultDataDir is where ledgers live when nothing else is configured.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "ledgercast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "ledgercast")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
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

// GetDataDir returns the ledger directory from env var, config, or the default, in that order.
func GetDataDir(cfg Config) string {
	if dir := os.Getenv("LEDGERCAST_DATA_DIR"); dir != "" {
		return dir
	}
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	return DefaultDataDir()
}

// GetRedisAddr returns the Redis address from env var or config, in that order.
// Empty means the in-memory report cache.
func GetRedisAddr(cfg Config) string {
	if addr := os.Getenv("LEDGERCAST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return cfg.Daemon.RedisAddr
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
