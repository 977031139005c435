package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/cli"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Spending patterns, budget alerts and month comparisons",
	RunE:  runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(_ *cobra.Command, _ []string) error {
	s, report, err := runReport()
	if err != nil {
		return err
	}
	if noData(s) {
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("INSIGHTS  %s", report.AsOf.Format("January 2006"))))
	fmt.Println()

	if len(report.Insights) == 0 {
		fmt.Println("  Nothing stands out this month.")
		return nil
	}
	for _, in := range report.Insights {
		fmt.Println(cli.RenderInsight(in))
		fmt.Println()
	}
	return nil
}
