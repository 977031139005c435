// Package pipeline orchestrates ledger loading, caching, and month bucketing.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgercast/internal/model"
)

// Buckets holds the month and month x category sums built from a ledger.
type Buckets struct {
	Months     map[string]*model.MonthBucket
	Categories map[string]*model.CategoryBucket
}

// MonthKey truncates t to its "YYYY-MM" bucket key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// Aggregate groups records into month buckets and, for expenses, per-category
// month buckets. A record with a missing, zero or negative amount fails the
// whole call with a *model.ValidationError.
func Aggregate(records []model.TransactionRecord) (Buckets, error) {
	b := Buckets{
		Months:     make(map[string]*model.MonthBucket),
		Categories: make(map[string]*model.CategoryBucket),
	}

	for _, r := range records {
		if err := r.Validate(); err != nil {
			return Buckets{}, err
		}

		key := MonthKey(r.Date)
		mb, ok := b.Months[key]
		if !ok {
			mb = &model.MonthBucket{MonthKey: key}
			b.Months[key] = mb
		}

		switch r.Kind {
		case model.KindExpense:
			mb.Expenses = mb.Expenses.Add(r.Amount)

			cat := categoryOf(r)
			cb, ok := b.Categories[cat]
			if !ok {
				cb = &model.CategoryBucket{Category: cat, Months: make(map[string]decimal.Decimal)}
				b.Categories[cat] = cb
			}
			cb.Months[key] = cb.Months[key].Add(r.Amount)
		case model.KindIncome:
			mb.Income = mb.Income.Add(r.Amount)
		}
	}

	return b, nil
}

// MonthList returns the month buckets sorted by key.
func (b Buckets) MonthList() []model.MonthBucket {
	result := make([]model.MonthBucket, 0, len(b.Months))
	for _, mb := range b.Months {
		result = append(result, *mb)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MonthKey < result[j].MonthKey
	})
	return result
}

// ExpenseSeries returns monthly expense totals in chronological order.
func ExpenseSeries(months []model.MonthBucket) []float64 {
	out := make([]float64, len(months))
	for i, m := range months {
		out[i] = m.Expenses.InexactFloat64()
	}
	return out
}

// IncomeSeries returns monthly income totals in chronological order.
func IncomeSeries(months []model.MonthBucket) []float64 {
	out := make([]float64, len(months))
	for i, m := range months {
		out[i] = m.Income.InexactFloat64()
	}
	return out
}

// CategorySeries flattens the category buckets into chronological series,
// ordered by category name.
func (b Buckets) CategorySeries() []model.CategorySeries {
	result := make([]model.CategorySeries, 0, len(b.Categories))
	for _, cb := range b.Categories {
		keys := make([]string, 0, len(cb.Months))
		for k := range cb.Months {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		values := make([]float64, len(keys))
		for i, k := range keys {
			values[i] = cb.Months[k].InexactFloat64()
		}
		result = append(result, model.CategorySeries{Category: cb.Category, Values: values})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Category < result[j].Category
	})
	return result
}

// FilterByTime returns records whose date falls within [since, until).
// A zero bound is open.
func FilterByTime(records []model.TransactionRecord, since, until time.Time) []model.TransactionRecord {
	var result []model.TransactionRecord
	for _, r := range records {
		if !since.IsZero() && r.Date.Before(since) {
			continue
		}
		if !until.IsZero() && !r.Date.Before(until) {
			continue
		}
		result = append(result, r)
	}
	return result
}

// Window returns the records in the historyMonths calendar months ending with
// asOf's month, up to and including the asOf day.
func Window(records []model.TransactionRecord, asOf time.Time, historyMonths int) []model.TransactionRecord {
	if historyMonths < 1 {
		historyMonths = 1
	}
	first := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	since := first.AddDate(0, -(historyMonths - 1), 0)
	until := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return FilterByTime(records, since, until)
}

// FilterExpensesByCategory keeps expenses whose category contains substr
// (case-insensitive). Income is always kept so income forecasts and goal
// savings rates still see the whole inflow.
func FilterExpensesByCategory(records []model.TransactionRecord, substr string) []model.TransactionRecord {
	var result []model.TransactionRecord
	for _, r := range records {
		if r.Kind != model.KindExpense || containsIgnoreCase(r.Category, substr) {
			result = append(result, r)
		}
	}
	return result
}

func categoryOf(r model.TransactionRecord) string {
	if c := strings.TrimSpace(r.Category); c != "" {
		return c
	}
	return model.Uncategorized
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
