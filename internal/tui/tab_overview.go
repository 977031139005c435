package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ledgercast/internal/cli"
	"github.com/theirongolddev/ledgercast/internal/model"
	"github.com/theirongolddev/ledgercast/internal/pipeline"
	"github.com/theirongolddev/ledgercast/internal/tui/components"
	"github.com/theirongolddev/ledgercast/internal/tui/theme"
)

const overviewInsights = 3

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	r := a.report
	var b strings.Builder

	// Row 1: metric cards
	b.WriteString(components.MetricCardRow(a.overviewMetrics(), cw))
	b.WriteString("\n")

	// Row 2: spending history with the forecast appended
	history := pipeline.ExpenseSeries(r.History)
	values := make([]float64, 0, len(history)+len(r.MonthlyPredictions))
	labels := make([]string, 0, cap(values))
	values = append(values, history...)
	for _, m := range r.History {
		labels = append(labels, monthShort(m.MonthKey))
	}
	for _, p := range r.MonthlyPredictions {
		values = append(values, p.PredictedAmount)
		labels = append(labels, strings.Fields(p.MonthLabel)[0])
	}

	chartW := components.CardInnerWidth(cw)
	legend := lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface).Render("█ actual") +
		lipgloss.NewStyle().Background(t.Surface).Render("  ") +
		lipgloss.NewStyle().Foreground(t.Forecast).Background(t.Surface).Render("█ forecast")
	chart := components.MonthBars(values, labels, len(history), chartW, 8)
	b.WriteString(components.ContentCard("Monthly Spending", chart+"\n"+legend, cw))
	b.WriteString("\n")

	// Row 3: forecast table beside top insights
	widths := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		a.renderForecastCard(widths[0]),
		a.renderTopInsightsCard(widths[1]),
	}))

	return b.String()
}

func (a App) overviewMetrics() []components.Metric {
	t := theme.Active
	r := a.report

	cur, _ := a.currentMonth()
	spent := cur.Expenses.InexactFloat64()
	income := cur.Income.InexactFloat64()

	// Average over the completed months before the as-of month.
	var prior []float64
	key := pipeline.MonthKey(a.opts.AsOf)
	for _, m := range r.History {
		if m.MonthKey < key {
			prior = append(prior, m.Expenses.InexactFloat64())
		}
	}
	if len(prior) > 3 {
		prior = prior[len(prior)-3:]
	}

	spentDelta := components.Metric{Label: "Spent this month", Value: a.money(spent)}
	if avg := mean(prior); avg > 0 {
		pct := (spent - avg) / avg * 100
		spentDelta.Delta = cli.FormatTrend(pct) + " vs 3-mo avg"
		spentDelta.Tone = t.Green
		if pct > 0 {
			spentDelta.Tone = t.Red
		}
	}

	net := income - spent
	netMetric := components.Metric{Label: "Net this month", Value: a.money(net), Tone: t.Green}
	if income > 0 {
		netMetric.Delta = fmt.Sprintf("saving %s of income", cli.FormatPercent(net/income*100))
	}
	if net < 0 {
		netMetric.Tone = t.Red
	}

	next := components.Metric{Label: "Next month", Value: "n/a", Delta: "not enough history"}
	if len(r.MonthlyPredictions) > 0 {
		p := r.MonthlyPredictions[0]
		next.Value = a.money(p.PredictedAmount)
		next.Delta = fmt.Sprintf("%s · %s confidence", p.MonthLabel, cli.FormatPercent(p.ConfidencePercent))
		next.Tone = t.Forecast
	}

	alerts := 0
	for _, in := range r.Insights {
		if in.Impact == model.ImpactHigh {
			alerts++
		}
	}
	insights := components.Metric{
		Label: "Insights",
		Value: cli.FormatNumber(int64(len(r.Insights))),
		Delta: fmt.Sprintf("%d high impact", alerts),
	}
	if alerts > 0 {
		insights.Tone = t.Red
	}

	return []components.Metric{
		spentDelta,
		{Label: "Income this month", Value: a.money(income), Tone: t.Income},
		netMetric,
		next,
		insights,
	}
}

func (a App) renderForecastCard(outerW int) string {
	t := theme.Active
	r := a.report
	innerW := components.CardInnerWidth(outerW)

	headStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(r.MonthlyPredictions) == 0 {
		return components.ContentCard("Forecast", dimStyle.Render("No forecast for this window."), outerW)
	}

	incomeByMonth := make(map[string]float64, len(r.IncomePredictions))
	for _, p := range r.IncomePredictions {
		incomeByMonth[p.MonthLabel] = p.PredictedAmount
	}

	amtW := max((innerW-10-6)/3, 8)
	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-9s %*s %*s %*s %5s",
		"Month", amtW, "Spend", amtW, "Income", amtW, "Net", "Conf")))
	b.WriteString("\n")
	for _, p := range r.MonthlyPredictions {
		inc := incomeByMonth[p.MonthLabel]
		net := inc - p.PredictedAmount
		netStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
		if net < 0 {
			netStyle = netStyle.Foreground(t.Red)
		}
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-9s %*s %*s ",
			p.MonthLabel, amtW, a.money(p.PredictedAmount), amtW, a.money(inc))))
		b.WriteString(netStyle.Render(fmt.Sprintf("%*s", amtW, a.money(net))))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" %5s", cli.FormatPercent(p.ConfidencePercent))))
		b.WriteString("\n")
	}
	return components.ContentCard("Forecast", strings.TrimRight(b.String(), "\n"), outerW)
}

func (a App) renderTopInsightsCard(outerW int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(outerW)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(a.report.Insights) == 0 {
		return components.ContentCard("Top Insights", dimStyle.Render("Nothing stands out this month."), outerW)
	}

	var lines []string
	for i, in := range a.report.Insights {
		if i == overviewInsights {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("+%d more · press i", len(a.report.Insights)-i)))
			break
		}
		icon := lipgloss.NewStyle().Foreground(t.ImpactColor(in.Impact)).Background(t.Surface).Bold(true).
			Render(cli.KindIcon(in.Kind))
		title := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).
			Render(" " + truncStr(in.Title, innerW-2))
		lines = append(lines, icon+title)
	}
	return components.ContentCard("Top Insights", strings.Join(lines, "\n"), outerW)
}

// monthShort turns "2026-03" into "Mar".
func monthShort(key string) string {
	m, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return m.Format("Jan")
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
