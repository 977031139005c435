package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/cli"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Per-category averages, trends and next-month outlook",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	s, report, err := runReport()
	if err != nil {
		return err
	}
	if noData(s) {
		return nil
	}
	if len(report.CategoryPredictions) == 0 {
		fmt.Println("\n  No expenses in the selected window.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CATEGORY OUTLOOK"))
	fmt.Println()

	var maxAvg float64
	for _, c := range report.CategoryPredictions {
		if c.CurrentAverage > maxAvg {
			maxAvg = c.CurrentAverage
		}
	}

	rows := make([][]string, 0, len(report.CategoryPredictions))
	for _, c := range report.CategoryPredictions {
		rows = append(rows, []string{
			c.Category,
			s.money(c.CurrentAverage),
			s.money(c.PredictedNextPeriod),
			cli.FormatTrend(c.TrendPercent),
			cli.FormatPercent(c.ConfidencePercent),
			cli.Title(c.Variability),
			fmt.Sprintf("%d", c.SampleSize),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Avg/mo", "Next", "Trend", "Conf", "Pattern", "Months"},
		Rows:    rows,
	}))

	fmt.Println()
	for _, c := range report.CategoryPredictions {
		fmt.Println(cli.RenderHorizontalBar(c.Category, c.CurrentAverage, maxAvg, 30))
	}
	return nil
}
