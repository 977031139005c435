package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/cli"
	"github.com/theirongolddev/ledgercast/internal/model"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Savings goal projections from the plan file",
	RunE:  runGoals,
}

func init() {
	rootCmd.AddCommand(goalsCmd)
}

func runGoals(_ *cobra.Command, _ []string) error {
	s, report, err := runReport()
	if err != nil {
		return err
	}
	if noData(s) {
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVINGS GOALS"))
	fmt.Println()

	if len(report.Goals) == 0 {
		fmt.Println("  No goals configured. Add a goals: section to plan.yaml in your data directory.")
		return nil
	}

	rows := make([][]string, 0, len(report.Goals))
	for _, g := range report.Goals {
		eta := "-"
		switch g.Status {
		case model.GoalOnTrack, model.GoalBehind, model.GoalReached:
			eta = g.EstimatedDate.Format("Jan 2006")
		}
		rows = append(rows, []string{
			g.Goal,
			cli.Title(string(g.Status)),
			s.money(g.Remaining),
			s.money(g.MonthlySavingsAverage),
			neededCell(g, s),
			eta,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Goal", "Status", "Remaining", "Saving/mo", "Needed/mo", "ETA"},
		Rows:    rows,
	}))

	for _, g := range report.Goals {
		if g.Message != "" {
			fmt.Printf("\n  %s: %s", g.Goal, g.Message)
		}
	}
	fmt.Println()
	return nil
}

func neededCell(g model.GoalProjection, s *session) string {
	if g.MonthlySavingsNeeded <= 0 {
		return "-"
	}
	return s.money(g.MonthlySavingsNeeded)
}
