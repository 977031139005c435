package cmd

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/categorize"
	"github.com/theirongolddev/ledgercast/internal/cli"
	"github.com/theirongolddev/ledgercast/internal/config"
)

var flagSuggestAmount string

var suggestCmd = &cobra.Command{
	Use:   "suggest <description>",
	Short: "Suggest a category for a transaction description",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().StringVar(&flagSuggestAmount, "amount", "0", "Transaction amount, used by amount-bounded rules")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(_ *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(flagSuggestAmount)
	if err != nil {
		return fmt.Errorf("invalid --amount %q: %w", flagSuggestAmount, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	table, err := categorize.LoadTable(cfg.Categories.KeywordFile)
	if err != nil {
		return err
	}

	// Past categorizations outrank keywords, so learn from the ledgers too.
	result, err := loadData(cfg)
	if err != nil {
		return err
	}

	desc := strings.Join(args, " ")
	sug := categorize.Suggest(desc, amount, result.Transactions, table)

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Description", "Category", "Confidence", "Source"},
		Rows: [][]string{{
			desc,
			sug.Category,
			cli.FormatPercent(sug.Confidence * 100),
			sug.Source,
		}},
	}))
	return nil
}
