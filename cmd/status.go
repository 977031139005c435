package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/cli"
	"github.com/theirongolddev/ledgercast/internal/config"
	"github.com/theirongolddev/ledgercast/internal/pipeline"
	"github.com/theirongolddev/ledgercast/internal/source"
	"github.com/theirongolddev/ledgercast/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show data directory, discovered ledgers and cache state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = config.GetDataDir(cfg)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("LEDGERCAST STATUS"))
	fmt.Println()

	files, err := source.ScanDir(dataDir)
	if err != nil {
		fmt.Printf("  Data directory %s is not readable: %v\n", dataDir, err)
		fmt.Println("  Run `ledgercast setup` or pass --data-dir.")
		return nil
	}

	counts := make(map[source.Format]int)
	for _, f := range files {
		counts[f.Format]++
	}
	rows := [][]string{
		{"Data directory", dataDir},
		{"CSV ledgers", cli.FormatNumber(int64(counts[source.FormatCSV]))},
		{"JSONL ledgers", cli.FormatNumber(int64(counts[source.FormatJSONL]))},
		{"CAMT.053 statements", cli.FormatNumber(int64(counts[source.FormatCAMT]))},
		{"Plan file", planState(counts[source.FormatPlan])},
		{"---"},
	}

	cachePath := pipeline.CachePath()
	if fi, statErr := os.Stat(cachePath); statErr == nil {
		rows = append(rows, []string{"Cache", cachePath})
		rows = append(rows, []string{"Cache size", cli.FormatBytes(fi.Size())})
		if cache, openErr := store.Open(cachePath); openErr == nil {
			if n, countErr := cache.RecordCount(); countErr == nil {
				rows = append(rows, []string{"Cached records", cli.FormatNumber(int64(n))})
			}
			_ = cache.Close()
		}
	} else {
		rows = append(rows, []string{"Cache", "empty"})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Item", "Value"},
		Rows:    rows,
	}))
	return nil
}

func planState(n int) string {
	switch n {
	case 0:
		return "none (budgets and goals disabled)"
	case 1:
		return "found"
	default:
		return fmt.Sprintf("%d found, first wins", n)
	}
}
