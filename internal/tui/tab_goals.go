package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ledgercast/internal/cli"
	"github.com/theirongolddev/ledgercast/internal/model"
	"github.com/theirongolddev/ledgercast/internal/tui/components"
	"github.com/theirongolddev/ledgercast/internal/tui/theme"
)

func (a App) renderGoalsTab(cw int) string {
	var b strings.Builder
	b.WriteString(a.renderGoalsCard(cw))
	b.WriteString("\n")
	b.WriteString(a.renderBudgetsCard(cw))
	return scrollLines(b.String(), a.scroll)
}

func (a App) renderGoalsCard(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(a.report.Goals) == 0 {
		return components.ContentCard("Savings Goals", dimStyle.Render("No goals in the plan file."), cw)
	}

	targets := make(map[string]model.GoalRecord, len(a.input.Goals))
	for _, g := range a.input.Goals {
		targets[g.Name] = g
	}

	labelW := min(max(innerW/5, 12), 24)
	barW := max(innerW-labelW-36, 10)

	var lines []string
	for _, p := range a.report.Goals {
		g := targets[p.Goal]
		saved := g.Current.InexactFloat64()
		target := g.Target.InexactFloat64()

		detail := fmt.Sprintf("%s of %s", a.money(saved), a.money(target))
		lines = append(lines, components.GoalBar(p.Goal, saved, target, detail, t.GoalColor(p.Status), labelW, barW))

		status := lipgloss.NewStyle().Foreground(t.GoalColor(p.Status)).Background(t.Surface).
			Render(strings.ReplaceAll(string(p.Status), "_", " "))
		lines = append(lines, dimStyle.Render(strings.Repeat(" ", labelW+1))+status+msgStyle.Render(" · "+a.goalDetail(p)))
	}
	return components.ContentCard("Savings Goals", strings.Join(lines, "\n"), cw)
}

func (a App) goalDetail(p model.GoalProjection) string {
	switch p.Status {
	case model.GoalReached:
		return "target reached"
	case model.GoalOnTrack, model.GoalBehind:
		s := fmt.Sprintf("%s left · ~%s at %s/mo · %s",
			a.money(p.Remaining), cli.FormatMonths(p.EstimatedMonths),
			a.money(p.MonthlySavingsAverage), p.EstimatedDate.Format("Jan 2006"))
		if p.Status == model.GoalBehind && p.MonthlySavingsNeeded > 0 {
			s += fmt.Sprintf(" · need %s/mo", a.money(p.MonthlySavingsNeeded))
		}
		return s
	default:
		if p.Message != "" {
			return p.Message
		}
		return a.money(p.Remaining) + " left"
	}
}

func (a App) renderBudgetsCard(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	title := "Budgets · " + a.opts.AsOf.Format("January 2006")

	spent := a.monthSpendByCategory()

	labelW := min(max(innerW/5, 12), 24)
	barW := max(innerW-labelW-36, 10)

	var lines []string
	for _, bud := range a.input.Budgets {
		if !bud.Applies(a.opts.AsOf) || !bud.Planned.IsPositive() {
			continue
		}
		used := spent[strings.ToLower(bud.Category)]
		planned := bud.Planned.InexactFloat64()
		detail := fmt.Sprintf("%s of %s", a.money(used), a.money(planned))
		if left := planned - used; left >= 0 {
			detail += " · " + a.money(left) + " left"
		} else {
			detail += " · " + a.money(-left) + " over"
		}
		lines = append(lines, components.UsageBar(bud.Category, used, planned, detail, labelW, barW))
	}

	if len(lines) == 0 {
		return components.ContentCard(title, dimStyle.Render("No active budgets for this month."), cw)
	}
	return components.ContentCard(title, strings.Join(lines, "\n"), cw)
}

// monthSpendByCategory sums expenses from the first of the as-of month
// through the as-of day, keyed by lowercased category.
func (a App) monthSpendByCategory() map[string]float64 {
	asOf := a.opts.AsOf
	start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	end := time.Date(asOf.Year(), asOf.Month(), asOf.Day()+1, 0, 0, 0, 0, asOf.Location())

	out := make(map[string]float64)
	for _, tx := range a.input.Transactions {
		if tx.Kind != model.KindExpense || tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		out[strings.ToLower(tx.Category)] += tx.Amount.InexactFloat64()
	}
	return out
}
