package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/theirongolddev/ledgercast/internal/model"
)

const fallbackSavingsMonths = 12

// ProjectSavings estimates how long it takes to save the rest of target,
// given monthly expense and income totals keyed by "YYYY-MM".
//
// Only months with a positive net (income - expenses) count toward the
// average; deficit months are left out rather than counted as zero.
func ProjectSavings(expenses, income map[string]float64, target, current float64, asOf time.Time) model.GoalProjection {
	remaining := target - current
	if remaining <= 0 {
		return model.GoalProjection{
			Status:        model.GoalReached,
			Message:       "goal reached",
			EstimatedDate: asOf,
		}
	}

	keys := make([]string, 0, len(expenses)+len(income))
	seen := make(map[string]struct{}, len(expenses)+len(income))
	for _, m := range []map[string]float64{expenses, income} {
		for k := range m {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	var sum float64
	var positive int
	for _, k := range keys {
		if net := income[k] - expenses[k]; net > 0 {
			sum += net
			positive++
		}
	}

	if positive == 0 {
		return model.GoalProjection{
			Status:               model.GoalInsufficientData,
			Message:              "insufficient data",
			Remaining:            remaining,
			MonthlySavingsNeeded: remaining / fallbackSavingsMonths,
		}
	}

	avg := sum / float64(positive)
	if avg <= 0 {
		return model.GoalProjection{
			Status:    model.GoalUnreachable,
			Message:   "unreachable",
			Remaining: remaining,
		}
	}

	months := int(math.Ceil(remaining / avg))
	return model.GoalProjection{
		Status:                model.GoalOnTrack,
		Remaining:             remaining,
		EstimatedMonths:       months,
		EstimatedDate:         addMonths(asOf, months),
		MonthlySavingsAverage: avg,
	}
}

// ProjectGoal projects a goal record from month buckets and, when the goal
// has a deadline, compares the estimate against it.
func ProjectGoal(goal model.GoalRecord, months []model.MonthBucket, asOf time.Time) model.GoalProjection {
	expenses := make(map[string]float64, len(months))
	income := make(map[string]float64, len(months))
	for _, m := range months {
		expenses[m.MonthKey] = m.Expenses.InexactFloat64()
		income[m.MonthKey] = m.Income.InexactFloat64()
	}

	// Subtract in decimal so cents don't drift before the float math.
	p := ProjectSavings(expenses, income, goal.Remaining().InexactFloat64(), 0, asOf)
	p.Goal = goal.Name

	if p.Status != model.GoalOnTrack || goal.Deadline.IsZero() {
		return p
	}

	left := monthsUntil(asOf, goal.Deadline)
	p.MonthlySavingsNeeded = p.Remaining / float64(left)
	if p.EstimatedDate.After(goal.Deadline) {
		p.Status = model.GoalBehind
		p.Message = fmt.Sprintf("save %.2f a month to finish by %s", p.MonthlySavingsNeeded, goal.Deadline.Format("Jan 2006"))
	}
	return p
}

// monthsUntil counts the calendar months from asOf to deadline, at least one.
func monthsUntil(asOf, deadline time.Time) int {
	n := (deadline.Year()-asOf.Year())*12 + int(deadline.Month()) - int(asOf.Month())
	if deadline.Day() > asOf.Day() {
		n++
	}
	if n < 1 {
		return 1
	}
	return n
}
