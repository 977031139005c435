package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ledgercast/internal/cli"
	"github.com/theirongolddev/ledgercast/internal/tui/components"
	"github.com/theirongolddev/ledgercast/internal/tui/theme"
)

func (a App) renderCategoriesTab(cw int) string {
	t := theme.Active
	preds := a.report.CategoryPredictions
	innerW := components.CardInnerWidth(cw)

	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if len(preds) == 0 {
		return components.ContentCard("Categories", dimStyle.Render("No expense categories in this window."), cw)
	}

	headStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	numStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	// Fixed columns: avg, next, trend, conf, variability; the rest is
	// shared between the name and the sparkline.
	const amtW, trendW, confW, varW = 11, 10, 5, 12
	fixed := 2*amtW + trendW + confW + varW + 6
	sparkW := min(max(a.opts.HistoryMonths, 6), 12)
	nameW := max(innerW-fixed-sparkW-1, 10)

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-*s %*s %*s %*s %*s %-*s %s",
		nameW, "Category", amtW, "Avg/mo", amtW, "Next", trendW, "Trend", confW, "Conf", varW, "Pattern", "History")))
	b.WriteString("\n")
	b.WriteString(headStyle.Render(strings.Repeat("─", innerW)))
	b.WriteString("\n")

	var rows strings.Builder
	for _, p := range preds {
		trendStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		switch p.Direction {
		case "increasing":
			trendStyle = trendStyle.Foreground(t.Red)
		case "decreasing":
			trendStyle = trendStyle.Foreground(t.Green)
		}

		varColor := t.Green
		switch p.Variability {
		case "moderate":
			varColor = t.Yellow
		case "volatile":
			varColor = t.Orange
		}
		varStyle := lipgloss.NewStyle().Foreground(varColor).Background(t.Surface)

		series := a.catSpend[p.Category]
		if len(series) > sparkW {
			series = series[len(series)-sparkW:]
		}

		rows.WriteString(nameStyle.Render(fmt.Sprintf("%-*s ", nameW, truncStr(p.Category, nameW))))
		rows.WriteString(numStyle.Render(fmt.Sprintf("%*s %*s ",
			amtW, a.money(p.CurrentAverage), amtW, a.money(p.PredictedNextPeriod))))
		rows.WriteString(trendStyle.Render(fmt.Sprintf("%*s ", trendW, cli.FormatTrend(p.TrendPercent))))
		rows.WriteString(numStyle.Render(fmt.Sprintf("%*s ", confW, cli.FormatPercent(p.ConfidencePercent))))
		rows.WriteString(varStyle.Render(fmt.Sprintf("%-*s ", varW, p.Variability)))
		rows.WriteString(components.Sparkline(series, t.Expense))
		rows.WriteString("\n")
	}

	title := fmt.Sprintf("Categories · %d tracked · next period outlook", len(preds))
	b.WriteString(scrollLines(strings.TrimRight(rows.String(), "\n"), a.scroll))
	return components.ContentCard(title, b.String(), cw)
}
