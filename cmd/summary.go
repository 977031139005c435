package cmd

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/cli"
	"github.com/theirongolddev/ledgercast/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Monthly income, spending and the headline forecast",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	s, report, err := runReport()
	if err != nil {
		return err
	}
	if noData(s) {
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LEDGER SUMMARY  As of %s", report.AsOf.Format("Jan 2, 2006"))))
	fmt.Println()

	var income, expenses decimal.Decimal
	rows := make([][]string, 0, len(report.History)+4)
	for _, m := range report.History {
		income = income.Add(m.Income)
		expenses = expenses.Add(m.Expenses)
		rows = append(rows, []string{
			m.MonthKey,
			s.money(m.Income.InexactFloat64()),
			s.money(m.Expenses.InexactFloat64()),
			s.money(m.Net().InexactFloat64()),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{
		"Total",
		s.money(income.InexactFloat64()),
		s.money(expenses.InexactFloat64()),
		s.money(income.Sub(expenses).InexactFloat64()),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("History (%s)", cli.FormatMonths(len(report.History))),
		Headers: []string{"Month", "Income", "Expenses", "Net"},
		Rows:    rows,
	}))

	spend := pipeline.ExpenseSeries(report.History)
	if len(spend) > 1 {
		fmt.Printf("\n  Spending  %s\n", cli.RenderSparkline(spend))
	}

	if len(report.MonthlyPredictions) > 0 {
		next := report.MonthlyPredictions[0]
		fmt.Printf("  Next month (%s): %s at %s confidence\n",
			next.MonthLabel, s.money(next.PredictedAmount), cli.FormatPercent(next.ConfidencePercent))
	}

	if len(report.Insights) > 0 {
		fmt.Println()
		fmt.Printf("  %d insights, top: %s\n", len(report.Insights), strings.TrimSpace(report.Insights[0].Title))
		fmt.Println("  Run `ledgercast insights` for the full list.")
	}
	return nil
}
