package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgercast/internal/model"
)

func TestProjectSavings_Scenario(t *testing.T) {
	expenses := map[string]float64{"2026-01": 2000, "2026-02": 1800, "2026-03": 1900}
	income := map[string]float64{"2026-01": 3000, "2026-02": 3000, "2026-03": 3000}

	p := ProjectSavings(expenses, income, 6000, 0, asOf)
	if p.Status != model.GoalOnTrack {
		t.Fatalf("Status = %s, want on_track", p.Status)
	}
	if !approx(p.MonthlySavingsAverage, 1100) {
		t.Errorf("MonthlySavingsAverage = %v, want 1100", p.MonthlySavingsAverage)
	}
	if p.EstimatedMonths != 6 {
		t.Errorf("EstimatedMonths = %d, want 6", p.EstimatedMonths)
	}
	if want := mustDate(t, "2027-04-17"); !p.EstimatedDate.Equal(want) {
		t.Errorf("EstimatedDate = %v, want %v", p.EstimatedDate, want)
	}
}

func TestProjectSavings_DeficitMonthsExcluded(t *testing.T) {
	expenses := map[string]float64{"2026-01": 1000, "2026-02": 2500}
	income := map[string]float64{"2026-01": 2000, "2026-02": 2000, "2026-03": 500}

	// nets: 1000, -500, 500; only the positive months average
	p := ProjectSavings(expenses, income, 3000, 0, asOf)
	if !approx(p.MonthlySavingsAverage, 750) {
		t.Errorf("MonthlySavingsAverage = %v, want 750", p.MonthlySavingsAverage)
	}
	if p.EstimatedMonths != 4 {
		t.Errorf("EstimatedMonths = %d, want 4", p.EstimatedMonths)
	}
}

func TestProjectSavings_InsufficientData(t *testing.T) {
	tests := []struct {
		name     string
		expenses map[string]float64
		income   map[string]float64
	}{
		{"no history", nil, nil},
		{"only deficits", map[string]float64{"2026-01": 900}, map[string]float64{"2026-01": 800}},
		{"break even", map[string]float64{"2026-01": 800}, map[string]float64{"2026-01": 800}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProjectSavings(tt.expenses, tt.income, 1200, 0, asOf)
			if p.Status != model.GoalInsufficientData || p.Message != "insufficient data" {
				t.Errorf("got %s %q, want insufficient data", p.Status, p.Message)
			}
			if !approx(p.MonthlySavingsNeeded, 100) {
				t.Errorf("MonthlySavingsNeeded = %v, want 100", p.MonthlySavingsNeeded)
			}
		})
	}
}

func TestProjectSavings_Reached(t *testing.T) {
	p := ProjectSavings(nil, nil, 100, 150, asOf)
	if p.Status != model.GoalReached || p.EstimatedMonths != 0 || !p.EstimatedDate.Equal(asOf) {
		t.Errorf("got %+v, want reached now", p)
	}
}

func TestProjectGoal_Deadline(t *testing.T) {
	months := []model.MonthBucket{
		{MonthKey: "2026-07", Income: decimal.NewFromInt(1100), Expenses: decimal.NewFromInt(1000)},
		{MonthKey: "2026-08", Income: decimal.NewFromInt(1100), Expenses: decimal.NewFromInt(1000)},
	}

	behind := ProjectGoal(model.GoalRecord{
		Name:     "Trip",
		Target:   decimal.NewFromInt(1200),
		Deadline: mustDate(t, "2027-01-31"),
	}, months, asOf)
	if behind.Goal != "Trip" || behind.Status != model.GoalBehind {
		t.Fatalf("got %s %s, want Trip behind", behind.Goal, behind.Status)
	}
	if behind.EstimatedMonths != 12 {
		t.Errorf("EstimatedMonths = %d, want 12", behind.EstimatedMonths)
	}
	// Oct 17 -> Jan 31 spans four calendar months
	if !approx(behind.MonthlySavingsNeeded, 300) {
		t.Errorf("MonthlySavingsNeeded = %v, want 300", behind.MonthlySavingsNeeded)
	}

	onTrack := ProjectGoal(model.GoalRecord{
		Name:     "Cushion",
		Target:   decimal.NewFromInt(300),
		Deadline: mustDate(t, "2027-06-30"),
	}, months, asOf)
	if onTrack.Status != model.GoalOnTrack || onTrack.EstimatedMonths != 3 {
		t.Errorf("got %s in %d months, want on_track in 3", onTrack.Status, onTrack.EstimatedMonths)
	}
}

func TestProjectGoal_RemainingInDecimal(t *testing.T) {
	months := []model.MonthBucket{
		{MonthKey: "2026-08", Income: decimal.NewFromInt(1100), Expenses: decimal.NewFromInt(1000)},
	}

	p := ProjectGoal(model.GoalRecord{
		Name:    "Coins",
		Target:  decimal.RequireFromString("0.3"),
		Current: decimal.RequireFromString("0.1"),
	}, months, asOf)
	if p.Remaining != 0.2 {
		t.Errorf("Remaining = %v, want exactly 0.2", p.Remaining)
	}

	over := ProjectGoal(model.GoalRecord{
		Name:    "Done",
		Target:  decimal.NewFromInt(500),
		Current: decimal.NewFromInt(650),
	}, months, asOf)
	if over.Status != model.GoalReached || over.Remaining != 0 || over.Goal != "Done" {
		t.Errorf("got %+v, want Done reached with nothing remaining", over)
	}
}

func TestAddMonths_ClampsDay(t *testing.T) {
	got := addMonths(mustDate(t, "2026-01-31"), 1)
	if want := mustDate(t, "2026-02-28"); !got.Equal(want) {
		t.Errorf("addMonths = %v, want %v", got, want)
	}
}
