package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgercast/internal/model"
)

func tx(id string, kind model.Kind, category, amount, date string) model.TransactionRecord {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return model.TransactionRecord{ID: id, Kind: kind, Category: category, Amount: decimal.RequireFromString(amount), Date: d}
}

func TestAggregate_Buckets(t *testing.T) {
	records := []model.TransactionRecord{
		tx("1", model.KindExpense, "Food", "10.10", "2026-01-05"),
		tx("2", model.KindExpense, "Food", "0.20", "2026-01-20"),
		tx("3", model.KindIncome, "Salary", "3000", "2026-01-01"),
		tx("4", model.KindExpense, "", "5", "2026-03-02"),
	}

	b, err := Aggregate(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(b.Months) != 2 {
		t.Fatalf("got %d month buckets, want 2 (no empty February)", len(b.Months))
	}
	jan := b.Months["2026-01"]
	if !jan.Expenses.Equal(decimal.RequireFromString("10.30")) {
		t.Errorf("Jan expenses = %s, want 10.30", jan.Expenses)
	}
	if !jan.Income.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Jan income = %s, want 3000", jan.Income)
	}

	if _, ok := b.Categories["Salary"]; ok {
		t.Error("income should not create a category bucket")
	}
	if got := b.Categories[model.Uncategorized].Months["2026-03"]; !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Uncategorized Mar = %s, want 5", got)
	}

	months := b.MonthList()
	if months[0].MonthKey != "2026-01" || months[1].MonthKey != "2026-03" {
		t.Errorf("MonthList order = %s,%s", months[0].MonthKey, months[1].MonthKey)
	}
	if got := ExpenseSeries(months); got[0] != 10.3 || got[1] != 5 {
		t.Errorf("ExpenseSeries = %v, want [10.3 5]", got)
	}

	series := b.CategorySeries()
	if len(series) != 2 || series[0].Category != "Food" || series[1].Category != model.Uncategorized {
		t.Errorf("CategorySeries = %+v", series)
	}
}

func TestAggregate_RejectsInvalidAmount(t *testing.T) {
	tests := []struct {
		name string
		rec  model.TransactionRecord
	}{
		{"missing amount", model.TransactionRecord{ID: "m", Kind: model.KindExpense, Date: time.Now()}},
		{"negative amount", tx("n", model.KindExpense, "Food", "-1", "2026-01-01")},
		{"unknown kind", model.TransactionRecord{ID: "k", Amount: decimal.NewFromInt(1), Date: time.Now()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []model.TransactionRecord{tx("ok", model.KindIncome, "", "1", "2026-01-01"), tt.rec}
			_, err := Aggregate(records)
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Source != tt.rec.ID {
				t.Errorf("Source = %q, want %q", ve.Source, tt.rec.ID)
			}
		})
	}
}

func TestFilterByTime(t *testing.T) {
	records := []model.TransactionRecord{
		tx("a", model.KindExpense, "", "1", "2026-01-31"),
		tx("b", model.KindExpense, "", "1", "2026-02-01"),
		tx("c", model.KindExpense, "", "1", "2026-03-01"),
	}
	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	got := FilterByTime(records, since, until)
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("FilterByTime = %+v, want only b", got)
	}
	if got := FilterByTime(records, time.Time{}, time.Time{}); len(got) != 3 {
		t.Errorf("open window kept %d, want 3", len(got))
	}
}

func TestFilterExpensesByCategory(t *testing.T) {
	records := []model.TransactionRecord{
		tx("a", model.KindExpense, "Groceries", "1", "2026-01-01"),
		tx("b", model.KindExpense, "Dining", "1", "2026-01-01"),
		tx("c", model.KindIncome, "Salary", "100", "2026-01-01"),
	}
	got := FilterExpensesByCategory(records, "GROC")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("FilterExpensesByCategory = %+v, want a and income c", got)
	}
}

func TestWindow(t *testing.T) {
	records := []model.TransactionRecord{
		tx("old", model.KindExpense, "Food", "1", "2026-07-31"),
		tx("first", model.KindExpense, "Food", "1", "2026-08-01"),
		tx("asof", model.KindExpense, "Food", "1", "2026-10-17"),
		tx("future", model.KindExpense, "Food", "1", "2026-10-18"),
	}
	asOf := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	got := Window(records, asOf, 3)
	if len(got) != 2 || got[0].ID != "first" || got[1].ID != "asof" {
		t.Errorf("Window(3) = %v, want [first asof]", ids(got))
	}

	if got := Window(records, asOf, 0); len(got) != 1 || got[0].ID != "asof" {
		t.Errorf("Window(0) = %v, want only the current month", ids(got))
	}
}

func ids(records []model.TransactionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
