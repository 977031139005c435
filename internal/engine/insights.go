package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgercast/internal/model"
)

// Rule thresholds.
const (
	weekendSkewRatio    = 0.4
	categoryChangePct   = 20.0
	budgetWarnPct       = 90.0
	budgetUnderPct      = 50.0
	budgetUnderAfterDay = 20
	busyDayRatio        = 1.5
	historyMonths       = 3
	historyOverRatio    = 1.15
	historyUnderRatio   = 0.85
)

// period is a half-open date range [start, end).
type period struct {
	start, end time.Time
}

func (p period) contains(t time.Time) bool {
	return !t.Before(p.start) && t.Before(p.end)
}

// currentPeriod runs from the first of asOf's month through the end of asOf's day.
func currentPeriod(asOf time.Time) period {
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	return period{start: monthStart(asOf), end: day.AddDate(0, 0, 1)}
}

// fullMonth is the whole calendar month offset months away from asOf's.
func fullMonth(asOf time.Time, offset int) period {
	start := monthStart(asOf).AddDate(0, offset, 0)
	return period{start: start, end: start.AddDate(0, 1, 0)}
}

// GenerateInsights evaluates every rule in a fixed order over the month
// containing asOf. Each rule contributes zero or more insights; none stops
// the others.
func GenerateInsights(transactions []model.TransactionRecord, budgets []model.BudgetRecord, asOf time.Time) []model.Insight {
	cur := currentPeriod(asOf)

	insights := make([]model.Insight, 0)
	insights = append(insights, weekendSkew(transactions, cur)...)
	insights = append(insights, categoryChanges(transactions, cur, fullMonth(asOf, -1))...)
	insights = append(insights, budgetUsage(transactions, budgets, cur, asOf)...)
	insights = append(insights, busyDays(transactions, cur)...)
	insights = append(insights, historyComparison(transactions, cur, asOf)...)
	return insights
}

func weekendSkew(transactions []model.TransactionRecord, p period) []model.Insight {
	var weekend, weekday decimal.Decimal
	for _, t := range transactions {
		if t.Kind != model.KindExpense || !p.contains(t.Date) {
			continue
		}
		switch t.Date.Weekday() {
		case time.Saturday, time.Sunday:
			weekend = weekend.Add(t.Amount)
		default:
			weekday = weekday.Add(t.Amount)
		}
	}

	we, wd := weekend.InexactFloat64(), weekday.InexactFloat64()
	if we <= wd*weekendSkewRatio {
		return nil
	}
	return []model.Insight{{
		Kind:        model.InsightPattern,
		Title:       "Weekend spending is high",
		Description: fmt.Sprintf("You spent %.2f on weekends against %.2f on weekdays this month.", we, wd),
		Impact:      model.ImpactMedium,
		Tag:         "weekend-spending",
	}}
}

func categoryChanges(transactions []model.TransactionRecord, cur, prev period) []model.Insight {
	current := expensesByCategory(transactions, cur)
	prior := expensesByCategory(transactions, prev)

	var insights []model.Insight
	for _, cat := range sortedKeys(current) {
		before, ok := prior[cat]
		if !ok || !before.IsPositive() {
			continue
		}
		now := current[cat].InexactFloat64()
		was := before.InexactFloat64()
		change := (now - was) / was * 100

		switch {
		case change > categoryChangePct:
			insights = append(insights, model.Insight{
				Kind:        model.InsightAlert,
				Title:       fmt.Sprintf("%s spending up %.0f%%", cat, change),
				Description: fmt.Sprintf("%s rose from %.2f last month to %.2f this month.", cat, was, now),
				Impact:      model.ImpactHigh,
				Tag:         "category-change:" + cat,
			})
		case change < -categoryChangePct:
			insights = append(insights, model.Insight{
				Kind:        model.InsightPositive,
				Title:       fmt.Sprintf("%s spending down %.0f%%", cat, -change),
				Description: fmt.Sprintf("%s fell from %.2f last month to %.2f this month.", cat, was, now),
				Impact:      model.ImpactPositive,
				Tag:         "category-change:" + cat,
			})
		}
	}
	return insights
}

func budgetUsage(transactions []model.TransactionRecord, budgets []model.BudgetRecord, cur period, asOf time.Time) []model.Insight {
	spentBy := expensesByCategory(transactions, cur)
	spentFold := make(map[string]decimal.Decimal, len(spentBy))
	for cat, amt := range spentBy {
		key := strings.ToLower(cat)
		spentFold[key] = spentFold[key].Add(amt)
	}

	var insights []model.Insight
	for _, b := range budgets {
		if !b.Applies(asOf) || !b.Planned.IsPositive() {
			continue
		}
		spent := spentFold[strings.ToLower(b.Category)].InexactFloat64()
		planned := b.Planned.InexactFloat64()
		usage := spent / planned * 100

		switch {
		case usage > budgetWarnPct:
			title := fmt.Sprintf("%s budget almost used", b.Category)
			if usage > 100 {
				title = fmt.Sprintf("%s budget exceeded", b.Category)
			}
			insights = append(insights, model.Insight{
				Kind:        model.InsightWarning,
				Title:       title,
				Description: fmt.Sprintf("You have used %.0f%% of your %s budget (%.2f of %.2f).", usage, b.Category, spent, planned),
				Impact:      model.ImpactHigh,
				Tag:         "budget:" + b.Category,
			})
		case usage < budgetUnderPct && asOf.Day() > budgetUnderAfterDay:
			insights = append(insights, model.Insight{
				Kind:        model.InsightPositive,
				Title:       fmt.Sprintf("%s budget well under control", b.Category),
				Description: fmt.Sprintf("Only %.0f%% of your %s budget is used with %d days left.", usage, b.Category, daysLeft(asOf)),
				Impact:      model.ImpactPositive,
				Tag:         "budget:" + b.Category,
			})
		}
	}
	return insights
}

func busyDays(transactions []model.TransactionRecord, p period) []model.Insight {
	counts := make(map[string]int)
	total := 0
	for _, t := range transactions {
		if !p.contains(t.Date) {
			continue
		}
		counts[t.Date.Format("2006-01-02")]++
		total++
	}
	if len(counts) == 0 {
		return nil
	}

	avg := float64(total) / float64(len(counts))
	var flagged []string
	for _, day := range sortedKeys(counts) {
		if float64(counts[day]) > avg*busyDayRatio {
			d, _ := time.Parse("2006-01-02", day)
			flagged = append(flagged, fmt.Sprintf("%s (%d)", d.Format("Jan 2"), counts[day]))
		}
	}
	if len(flagged) == 0 {
		return nil
	}
	return []model.Insight{{
		Kind:        model.InsightInfo,
		Title:       "Unusually busy days",
		Description: fmt.Sprintf("More transactions than usual (%.1f per active day) on %s.", avg, strings.Join(flagged, ", ")),
		Impact:      model.ImpactLow,
		Tag:         "frequency",
	}}
}

func historyComparison(transactions []model.TransactionRecord, cur period, asOf time.Time) []model.Insight {
	var history decimal.Decimal
	for i := 1; i <= historyMonths; i++ {
		history = history.Add(expenseTotal(transactions, fullMonth(asOf, -i)))
	}
	avg := history.InexactFloat64() / historyMonths
	if avg <= 0 {
		return nil
	}
	current := expenseTotal(transactions, cur).InexactFloat64()

	switch {
	case current > avg*historyOverRatio:
		return []model.Insight{{
			Kind:        model.InsightWarning,
			Title:       "Spending above your usual month",
			Description: fmt.Sprintf("This month's spending of %.2f is %.0f%% above your 3-month average of %.2f.", current, (current/avg-1)*100, avg),
			Impact:      model.ImpactMedium,
			Tag:         "monthly-comparison",
		}}
	case current < avg*historyUnderRatio:
		return []model.Insight{{
			Kind:        model.InsightPositive,
			Title:       "Spending below your usual month",
			Description: fmt.Sprintf("This month's spending of %.2f is %.0f%% below your 3-month average of %.2f.", current, (1-current/avg)*100, avg),
			Impact:      model.ImpactPositive,
			Tag:         "monthly-comparison",
		}}
	}
	return nil
}

func expensesByCategory(transactions []model.TransactionRecord, p period) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if t.Kind != model.KindExpense || !p.contains(t.Date) {
			continue
		}
		cat := strings.TrimSpace(t.Category)
		if cat == "" {
			cat = model.Uncategorized
		}
		out[cat] = out[cat].Add(t.Amount)
	}
	return out
}

func expenseTotal(transactions []model.TransactionRecord, p period) decimal.Decimal {
	var total decimal.Decimal
	for _, t := range transactions {
		if t.Kind == model.KindExpense && p.contains(t.Date) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

func daysLeft(asOf time.Time) int {
	return monthStart(asOf).AddDate(0, 1, -1).Day() - asOf.Day()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
