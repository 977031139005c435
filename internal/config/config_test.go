package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.General.MonthsAhead != 3 || cfg.Daemon.Schedule != "@every 5m" {
		t.Errorf("defaults = %+v", cfg)
	}
	if Exists() {
		t.Error("Exists() = true before Save")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.DataDir = "/srv/ledger"
	cfg.General.MonthsAhead = 6
	cfg.Daemon.ReportTTL = Duration{15 * time.Minute}
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config mode = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.General.DataDir != "/srv/ledger" || got.General.MonthsAhead != 6 {
		t.Errorf("General = %+v", got.General)
	}
	if got.Daemon.ReportTTL.Duration != 15*time.Minute {
		t.Errorf("ReportTTL = %v, want 15m", got.Daemon.ReportTTL)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := os.MkdirAll(ConfigDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ConfigPath(), []byte("[general\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.DataDir = "/from/config"
	cfg.Daemon.RedisAddr = "config:6379"

	t.Setenv("LEDGERCAST_DATA_DIR", "")
	t.Setenv("LEDGERCAST_REDIS_ADDR", "")
	if got := GetDataDir(cfg); got != "/from/config" {
		t.Errorf("GetDataDir = %q, want config value", got)
	}
	if got := GetRedisAddr(cfg); got != "config:6379" {
		t.Errorf("GetRedisAddr = %q, want config value", got)
	}

	t.Setenv("LEDGERCAST_DATA_DIR", "/from/env")
	t.Setenv("LEDGERCAST_REDIS_ADDR", "env:6379")
	if got := GetDataDir(cfg); got != "/from/env" {
		t.Errorf("GetDataDir = %q, want env value", got)
	}
	if got := GetRedisAddr(cfg); got != "env:6379" {
		t.Errorf("GetRedisAddr = %q, want env value", got)
	}

	t.Setenv("LEDGERCAST_DATA_DIR", "")
	t.Setenv("XDG_DATA_HOME", "/xdg")
	cfg.General.DataDir = ""
	if got := GetDataDir(cfg); got != filepath.Join("/xdg", "ledgercast") {
		t.Errorf("GetDataDir = %q, want XDG default", got)
	}
}
