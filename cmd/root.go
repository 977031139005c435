package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/categorize"
	"github.com/theirongolddev/ledgercast/internal/cli"
	"github.com/theirongolddev/ledgercast/internal/config"
	"github.com/theirongolddev/ledgercast/internal/engine"
	"github.com/theirongolddev/ledgercast/internal/model"
	"github.com/theirongolddev/ledgercast/internal/pipeline"
	"github.com/theirongolddev/ledgercast/internal/store"
)

var (
	flagDataDir  string
	flagAsOf     string
	flagMonths   int
	flagAhead    int
	flagCategory string
	flagNoCache  bool
	flagQuiet    bool
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "ledgercast",
	Short: "Personal finance forecasts and insights",
	Long:  "Forecast spending, track savings goals, and surface patterns in your ledger files.",
	RunE:  runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Ledger data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagAsOf, "as-of", "", "Reference date YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().IntVarP(&flagMonths, "months", "n", 0, "History window in months (default from config)")
	rootCmd.PersistentFlags().IntVar(&flagAhead, "ahead", 0, "Months to forecast (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Filter expenses to category (substring match)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Log per-file parse details")
}

// session bundles what every report command needs after loading.
type session struct {
	cfg    config.Config
	result *pipeline.LoadResult
	input  engine.Input
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func resolveAsOf() (time.Time, error) {
	if flagAsOf == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", flagAsOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", flagAsOf)
	}
	return t, nil
}

func loadOptions(cfg config.Config) (pipeline.LoadOptions, error) {
	table, err := categorize.LoadTable(cfg.Categories.KeywordFile)
	if err != nil {
		return pipeline.LoadOptions{}, err
	}
	return pipeline.LoadOptions{
		UserID:   cfg.General.UserID,
		Keywords: table,
		Logger:   newLogger(),
	}, nil
}

// loadData is the shared data loading path used by all report commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData(cfg config.Config) (*pipeline.LoadResult, error) {
	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = config.GetDataDir(cfg)
	}
	opts, err := loadOptions(cfg)
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", dataDir)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%20 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			opts.Logger.WithError(err).Debug("cache unavailable")
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
			}
		} else {
			defer cache.Close()

			cr, err := pipeline.LoadWithCache(dataDir, cache, opts, progressFn)
			if err == nil {
				if !flagQuiet && cr.TotalFiles > 0 {
					fmt.Fprintf(os.Stderr, "\r  %s transactions (%d cached files, %d reparsed)    \n",
						cli.FormatNumber(int64(len(cr.Transactions))), cr.CacheHits, cr.Reparsed)
				}
				return &cr.LoadResult, nil
			}
			// A malformed ledger fails both paths; don't hide it behind a reparse.
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				return nil, err
			}
			opts.Logger.WithError(err).Warn("cache load failed, falling back to full parse")
		}
	}

	result, err := pipeline.Load(dataDir, opts, progressFn)
	if err != nil {
		return nil, err
	}
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  %s transactions across %d files    \n",
			cli.FormatNumber(int64(len(result.Transactions))), result.ParsedFiles)
	}
	return result, nil
}

// loadSession loads config and ledgers and builds the engine input for the
// selected window: the history months up to and including the as-of day.
func loadSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	asOf, err := resolveAsOf()
	if err != nil {
		return nil, err
	}
	result, err := loadData(cfg)
	if err != nil {
		return nil, err
	}

	months := flagMonths
	if months < 1 {
		months = cfg.General.HistoryMonths
	}
	ahead := flagAhead
	if ahead < 1 {
		ahead = cfg.General.MonthsAhead
	}

	return &session{
		cfg:    cfg,
		result: result,
		input:  buildInput(result, asOf, months, ahead, flagCategory),
	}, nil
}

func buildInput(result *pipeline.LoadResult, asOf time.Time, historyMonths, ahead int, category string) engine.Input {
	txs := pipeline.Window(result.Transactions, asOf, historyMonths)
	if category != "" {
		txs = pipeline.FilterExpensesByCategory(txs, category)
	}

	return engine.Input{
		Transactions: txs,
		Budgets:      result.Budgets,
		Goals:        result.Goals,
		AsOf:         asOf,
		MonthsAhead:  ahead,
	}
}

// runReport loads everything and runs the engine once.
func runReport() (*session, *model.Report, error) {
	s, err := loadSession()
	if err != nil {
		return nil, nil, err
	}
	report, err := engine.Run(s.input)
	if err != nil {
		return nil, nil, err
	}
	return s, report, nil
}

func noData(s *session) bool {
	if len(s.result.Transactions) == 0 {
		fmt.Println("\n  No transactions found.")
		fmt.Println("  Drop CSV, JSONL or CAMT.053 files into your data directory, then come back!")
		return true
	}
	if len(s.input.Transactions) == 0 {
		fmt.Println("\n  No transactions found in the selected window.")
		return true
	}
	return false
}

func (s *session) money(v float64) string {
	return cli.FormatMoney(v, s.cfg.Appearance.Currency)
}
