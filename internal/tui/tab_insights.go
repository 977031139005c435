package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ledgercast/internal/cli"
	"github.com/theirongolddev/ledgercast/internal/model"
	"github.com/theirongolddev/ledgercast/internal/tui/components"
	"github.com/theirongolddev/ledgercast/internal/tui/theme"
)

func (a App) renderInsightsTab(cw int) string {
	t := theme.Active
	insights := a.report.Insights
	innerW := components.CardInnerWidth(cw)

	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if len(insights) == 0 {
		body := dimStyle.Render("No alerts, warnings or patterns for " + a.opts.AsOf.Format("January 2006") + ".")
		return components.ContentCard("Insights", body, cw)
	}

	counts := make(map[model.Impact]int)
	for _, in := range insights {
		counts[in.Impact]++
	}
	summary := fmt.Sprintf("Insights · %d high · %d medium · %d low · %d positive",
		counts[model.ImpactHigh], counts[model.ImpactMedium], counts[model.ImpactLow], counts[model.ImpactPositive])

	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Width(innerW - 4)
	indent := lipgloss.NewStyle().Background(t.Surface).Render("    ")

	var b strings.Builder
	for i, in := range insights {
		if i > 0 {
			b.WriteString("\n")
		}
		impact := lipgloss.NewStyle().Foreground(t.ImpactColor(in.Impact)).Background(t.Surface).Bold(true)
		b.WriteString(impact.Render(" " + cli.KindIcon(in.Kind) + "  "))
		b.WriteString(titleStyle.Render(truncStr(in.Title, innerW-16)))
		b.WriteString(dimStyle.Render("  "))
		b.WriteString(impact.Render("[" + string(in.Impact) + "]"))
		b.WriteString("\n")

		// Description wraps to the card width; every wrapped line keeps the indent.
		for _, line := range strings.Split(descStyle.Render(in.Description), "\n") {
			b.WriteString(indent + line + "\n")
		}
	}

	return components.ContentCard(summary, scrollLines(strings.TrimRight(b.String(), "\n"), a.scroll), cw)
}
