package cmd

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/config"
	"github.com/theirongolddev/ledgercast/internal/tui"
	"github.com/theirongolddev/ledgercast/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	asOf, err := resolveAsOf()
	if err != nil {
		return err
	}
	load, err := loadOptions(cfg)
	if err != nil {
		return err
	}
	// Log lines would tear the alt screen.
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	load.Logger = quiet

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = config.GetDataDir(cfg)
	}
	months := flagMonths
	if months < 1 {
		months = cfg.General.HistoryMonths
	}
	ahead := flagAhead
	if ahead < 1 {
		ahead = cfg.General.MonthsAhead
	}

	app := tui.NewApp(tui.Options{
		DataDir:       dataDir,
		Load:          load,
		UseCache:      !flagNoCache,
		AsOf:          asOf,
		HistoryMonths: months,
		MonthsAhead:   ahead,
		Category:      flagCategory,
		Currency:      cfg.Appearance.Currency,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
