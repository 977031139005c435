package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ledgercast/internal/tui/theme"
)

// ProgressBar renders the loading bar with a percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = min(max(pct, 0), 1)
	filled := int(pct * float64(width))

	barColor := t.Cyan
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		pctStyle.Render(fmt.Sprintf(" %.0f%%", pct*100))
}

// ColorForPct returns green/yellow/orange/red for a usage ratio where 1.0 is
// the full budget.
func ColorForPct(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1.0:
		return t.Red
	case pct >= 0.9:
		return t.Orange
	case pct >= 0.7:
		return t.Yellow
	default:
		return t.Green
	}
}

// UsageBar renders a labeled bar for spent out of planned, such as a category
// budget. The percentage is not capped so overspend reads as e.g. 130%.
func UsageBar(label string, used, total float64, detail string, labelW, barWidth int) string {
	pct := 0.0
	if total > 0 {
		pct = used / total
	}
	return labeledBar(label, pct, ColorForPct(pct), detail, labelW, barWidth)
}

// GoalBar renders progress toward a savings target in the goal's status color.
func GoalBar(label string, saved, target float64, detail string, color lipgloss.Color, labelW, barWidth int) string {
	pct := 0.0
	if target > 0 {
		pct = max(saved/target, 0)
	}
	return labeledBar(label, min(pct, 1), color, detail, labelW, barWidth)
}

func labeledBar(label string, pct float64, color lipgloss.Color, detail string, labelW, barWidth int) string {
	t := theme.Active

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	detailStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		space +
		bar.ViewAs(min(pct, 1)) +
		space +
		pctStyle.Render(fmt.Sprintf("%4.0f%%", pct*100)) +
		space + space +
		detailStyle.Render(detail)
}
