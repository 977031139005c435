// Package cmd implements the ledgercast CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory:  %s\n", config.GetDataDir(cfg))
	fmt.Printf("    User:            %s\n", cfg.General.UserID)
	fmt.Printf("    History months:  %d\n", cfg.General.HistoryMonths)
	fmt.Printf("    Months ahead:    %d\n", cfg.General.MonthsAhead)
	fmt.Println()

	fmt.Println("  [Categories]")
	if cfg.Categories.KeywordFile != "" {
		fmt.Printf("    Keyword file: %s\n", cfg.Categories.KeywordFile)
	} else {
		fmt.Println("    Keyword file: built-in table")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:    %s\n", cfg.Appearance.Theme)
	fmt.Printf("    Currency: %s\n", cfg.Appearance.Currency)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Listen:     %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Schedule:   %s\n", cfg.Daemon.Schedule)
	fmt.Printf("    Report TTL: %s\n", cfg.Daemon.ReportTTL.Duration)
	if addr := config.GetRedisAddr(cfg); addr != "" {
		fmt.Printf("    Redis:      %s\n", addr)
	} else {
		fmt.Println("    Redis:      not configured (in-memory cache)")
	}
	fmt.Println()

	fmt.Println("  Run `ledgercast setup` to reconfigure.")
	return nil
}
