package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgercast/internal/model"
)

func budget(category string, planned int64, month time.Month, year int) model.BudgetRecord {
	return model.BudgetRecord{Category: category, Planned: decimal.NewFromInt(planned), Month: month, Year: year, IsActive: true}
}

func TestInsights_BudgetWarning(t *testing.T) {
	txs := []model.TransactionRecord{expense(t, "2026-10-05", "Food", 480)}
	budgets := []model.BudgetRecord{budget("Food", 500, time.October, 2026)}

	got := GenerateInsights(txs, budgets, asOf)
	food := byTag(got, "budget:Food")
	if len(food) != 1 {
		t.Fatalf("got %d budget insights, want 1: %+v", len(food), got)
	}
	if food[0].Kind != model.InsightWarning || food[0].Impact != model.ImpactHigh {
		t.Errorf("insight = %s/%s, want warning/high", food[0].Kind, food[0].Impact)
	}
	if !strings.Contains(food[0].Description, "96%") {
		t.Errorf("Description = %q, want usage 96%%", food[0].Description)
	}
	for _, in := range got {
		if in.Kind == model.InsightPositive {
			t.Errorf("unexpected positive insight: %+v", in)
		}
	}
}

func TestInsights_BudgetUnderUsed(t *testing.T) {
	txs := []model.TransactionRecord{expense(t, "2026-10-05", "food", 100)}
	budgets := []model.BudgetRecord{
		budget("Food", 500, time.October, 2026),
		budget("Food", 10, time.September, 2026), // other month
	}
	inactive := budget("Food", 50, time.October, 2026)
	inactive.IsActive = false
	budgets = append(budgets, inactive)

	early := byTag(GenerateInsights(txs, budgets, asOf), "budget:Food")
	if len(early) != 0 {
		t.Errorf("day 17: got %+v, want no budget insight", early)
	}

	late := byTag(GenerateInsights(txs, budgets, mustDate(t, "2026-10-25")), "budget:Food")
	if len(late) != 1 || late[0].Kind != model.InsightPositive {
		t.Errorf("day 25: got %+v, want one positive", late)
	}
}

func TestInsights_WeekendSkew(t *testing.T) {
	tests := []struct {
		name    string
		weekend float64
		fires   bool
	}{
		{"above 40 percent", 300, true},
		{"below 40 percent", 150, false},
		{"exactly 40 percent", 200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []model.TransactionRecord{
				expense(t, "2026-10-03", "Fun", tt.weekend), // Saturday
				expense(t, "2026-10-05", "Food", 500),       // Monday
			}
			got := byTag(GenerateInsights(txs, nil, asOf), "weekend-spending")
			if fired := len(got) == 1; fired != tt.fires {
				t.Fatalf("fired = %v, want %v", fired, tt.fires)
			}
			if tt.fires && (got[0].Kind != model.InsightPattern || got[0].Impact != model.ImpactMedium) {
				t.Errorf("insight = %s/%s, want pattern/medium", got[0].Kind, got[0].Impact)
			}
		})
	}
}

func TestInsights_CategoryChange(t *testing.T) {
	txs := []model.TransactionRecord{
		expense(t, "2026-09-08", "Food", 100),
		expense(t, "2026-09-08", "Fun", 100),
		expense(t, "2026-09-08", "Rent", 100),
		expense(t, "2026-09-08", "Gone", 100),
		expense(t, "2026-10-05", "Food", 130),
		expense(t, "2026-10-06", "Fun", 70),
		expense(t, "2026-10-07", "Rent", 110),
		expense(t, "2026-10-07", "New", 500),
	}

	got := GenerateInsights(txs, nil, asOf)
	var changes []model.Insight
	for _, in := range got {
		if strings.HasPrefix(in.Tag, "category-change:") {
			changes = append(changes, in)
		}
	}
	if len(changes) != 2 {
		t.Fatalf("got %d change insights, want 2: %+v", len(changes), changes)
	}
	if changes[0].Tag != "category-change:Food" || changes[0].Kind != model.InsightAlert || changes[0].Impact != model.ImpactHigh {
		t.Errorf("first = %+v, want Food alert/high", changes[0])
	}
	if changes[1].Tag != "category-change:Fun" || changes[1].Kind != model.InsightPositive {
		t.Errorf("second = %+v, want Fun positive", changes[1])
	}
}

func TestInsights_BusyDays(t *testing.T) {
	txs := []model.TransactionRecord{
		expense(t, "2026-10-06", "A", 1),
		expense(t, "2026-10-07", "B", 1),
	}
	for i := 0; i < 4; i++ {
		r := expense(t, "2026-10-05", "C", 1)
		r.ID += string(rune('a' + i))
		txs = append(txs, r)
	}

	got := byTag(GenerateInsights(txs, nil, asOf), "frequency")
	if len(got) != 1 {
		t.Fatalf("got %d frequency insights, want 1", len(got))
	}
	if got[0].Kind != model.InsightInfo {
		t.Errorf("Kind = %s, want info", got[0].Kind)
	}
	if !strings.Contains(got[0].Description, "Oct 5 (4)") || strings.Contains(got[0].Description, "Oct 6") {
		t.Errorf("Description = %q, want only Oct 5 flagged", got[0].Description)
	}
}

func TestInsights_HistoryComparison(t *testing.T) {
	history := []model.TransactionRecord{
		expense(t, "2026-07-15", "Food", 300),
		expense(t, "2026-08-14", "Food", 300),
		expense(t, "2026-09-15", "Other", 300),
	}

	tests := []struct {
		name    string
		current float64
		kind    model.InsightKind
	}{
		{"above", 400, model.InsightWarning},
		{"below", 200, model.InsightPositive},
		{"within band", 300, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := append([]model.TransactionRecord{expense(t, "2026-10-06", "Food", tt.current)}, history...)
			got := byTag(GenerateInsights(txs, nil, asOf), "monthly-comparison")
			if tt.kind == "" {
				if len(got) != 0 {
					t.Errorf("got %+v, want none", got)
				}
				return
			}
			if len(got) != 1 || got[0].Kind != tt.kind {
				t.Errorf("got %+v, want one %s", got, tt.kind)
			}
		})
	}
}

func TestInsights_AllRulesInOrder(t *testing.T) {
	txs := []model.TransactionRecord{
		expense(t, "2026-07-15", "Food", 100),
		expense(t, "2026-08-14", "Food", 100),
		expense(t, "2026-09-15", "Food", 100),
		expense(t, "2026-10-03", "Food", 200), // Saturday
		expense(t, "2026-10-06", "Food", 10),
	}
	for i := 0; i < 4; i++ {
		r := expense(t, "2026-10-05", "Food", 10)
		r.ID += string(rune('a' + i))
		txs = append(txs, r)
	}
	budgets := []model.BudgetRecord{budget("Food", 260, time.October, 2026)}

	got := GenerateInsights(txs, budgets, asOf)
	want := []string{"weekend-spending", "category-change:Food", "budget:Food", "frequency", "monthly-comparison"}
	if len(got) != len(want) {
		t.Fatalf("got %d insights, want %d: %+v", len(got), len(want), got)
	}
	for i, tag := range want {
		if got[i].Tag != tag {
			t.Errorf("insight %d tag = %q, want %q", i, got[i].Tag, tag)
		}
	}
}

func TestInsights_IgnoresFutureAndIncome(t *testing.T) {
	txs := []model.TransactionRecord{
		expense(t, "2026-10-24", "Fun", 900), // after asOf
		income(t, "2026-10-03", 5000),
		expense(t, "2026-10-05", "Food", 100),
	}
	if got := byTag(GenerateInsights(txs, nil, asOf), "weekend-spending"); len(got) != 0 {
		t.Errorf("got %+v, want no weekend insight", got)
	}
}
