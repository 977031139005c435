package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/ledgercast/internal/config"
	"github.com/theirongolddev/ledgercast/internal/tui/theme"
)

// setupValues holds the form-bound values for the setup wizard.
type setupValues struct {
	dataDir     string
	monthsAhead int
	theme       string
	currency    string
}

var currencyOptions = []string{"$", "€", "£", "¥", "CHF "}

func defaultSetupValues(opts Options) setupValues {
	cfg, _ := config.Load()
	vals := setupValues{
		dataDir:     opts.DataDir,
		monthsAhead: cfg.General.MonthsAhead,
		theme:       cfg.Appearance.Theme,
		currency:    cfg.Appearance.Currency,
	}
	if vals.dataDir == "" {
		vals.dataDir = config.GetDataDir(cfg)
	}
	if opts.MonthsAhead > 0 {
		vals.monthsAhead = opts.MonthsAhead
	}
	if opts.Currency != "" {
		vals.currency = opts.Currency
	}
	return vals
}

// apply merges the form values into the saved config.
func (v setupValues) apply() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if v.monthsAhead < 1 || v.monthsAhead > 12 {
		return cfg, fmt.Errorf("months ahead must be 1-12, got %d", v.monthsAhead)
	}
	cfg.General.DataDir = strings.TrimSpace(v.dataDir)
	cfg.General.MonthsAhead = v.monthsAhead
	cfg.Appearance.Theme = v.theme
	cfg.Appearance.Currency = v.currency
	return cfg, nil
}

// newSetupForm builds the huh form for first-run configuration.
func newSetupForm(vals *setupValues, found int) *huh.Form {
	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themeOpts[i] = huh.NewOption(t.Label, t.Name)
	}

	currencyOpts := make([]huh.Option[string], len(currencyOptions))
	for i, c := range currencyOptions {
		currencyOpts[i] = huh.NewOption(strings.TrimSpace(c), c)
	}

	monthsOpts := []huh.Option[int]{
		huh.NewOption("1 month", 1),
		huh.NewOption("3 months", 3),
		huh.NewOption("6 months", 6),
		huh.NewOption("12 months", 12),
	}

	welcome := "Let's set up a few things."
	if found > 0 {
		welcome = fmt.Sprintf("Found %d transactions. Let's set up a few things.", found)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to ledgercast").
				Description(welcome),

			huh.NewInput().
				Title("Ledger directory").
				Description("Where your CSV, JSONL, CAMT.053 and plan files live.").
				Value(&vals.dataDir).
				Validate(validateDataDir),

			huh.NewSelect[int]().
				Title("Forecast horizon").
				Options(monthsOpts...).
				Value(&vals.monthsAhead),

			huh.NewSelect[string]().
				Title("Currency symbol").
				Options(currencyOpts...).
				Value(&vals.currency),

			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(false)
}

func validateDataDir(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("directory is required")
	}
	info, err := os.Stat(s)
	if err != nil {
		if os.IsNotExist(err) {
			// Created on first save; nothing to load yet is fine.
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s)
	}
	return nil
}

// RunSetup runs the setup form standalone and writes the config file.
func RunSetup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	vals := defaultSetupValues(Options{
		MonthsAhead: cfg.General.MonthsAhead,
		Currency:    cfg.Appearance.Currency,
	})
	if err := newSetupForm(&vals, 0).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	cfg, err = vals.apply()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(config.GetDataDir(cfg), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("\n  Saved to %s\n", config.ConfigPath())
	fmt.Printf("  Months ahead: %d\n", cfg.General.MonthsAhead)
	fmt.Println("  Run `ledgercast` to see your forecast.")
	return nil
}
