package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/cli"
	"github.com/theirongolddev/ledgercast/internal/model"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Seasonally adjusted spending and income forecast",
	RunE:  runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(_ *cobra.Command, _ []string) error {
	s, report, err := runReport()
	if err != nil {
		return err
	}
	if noData(s) {
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FORECAST  Next %s", cli.FormatMonths(len(report.MonthlyPredictions)))))
	fmt.Println()

	if len(report.History) < 2 {
		fmt.Println("  Only one month of history; forecasts repeat it with seasonal adjustment.")
		fmt.Println()
	}

	fmt.Print(cli.RenderTable(forecastTable("Spending", report.MonthlyPredictions, s)))
	fmt.Println()
	fmt.Print(cli.RenderTable(forecastTable("Income", report.IncomePredictions, s)))

	if len(report.MonthlyPredictions) > 0 && len(report.IncomePredictions) > 0 {
		fmt.Println()
		fmt.Println("  Projected net")
		for i, p := range report.MonthlyPredictions {
			if i >= len(report.IncomePredictions) {
				break
			}
			net := report.IncomePredictions[i].PredictedAmount - p.PredictedAmount
			fmt.Printf("    %-9s %s\n", p.MonthLabel, s.money(net))
		}
	}
	return nil
}

func forecastTable(title string, points []model.ForecastPoint, s *session) cli.Table {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			p.MonthLabel,
			s.money(p.PredictedAmount),
			s.money(p.BasePrediction),
			fmt.Sprintf("x%.2f", p.SeasonalFactor),
			cli.FormatPercent(p.ConfidencePercent),
		})
	}
	return cli.Table{
		Title:   title,
		Headers: []string{"Month", "Predicted", "Base", "Season", "Confidence"},
		Rows:    rows,
	}
}
