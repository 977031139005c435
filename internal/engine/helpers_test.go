package engine

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgercast/internal/model"
)

var asOf = time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC) // a Saturday

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parsing date %q: %v", s, err)
	}
	return d
}

func expense(t *testing.T, date, category string, amount float64) model.TransactionRecord {
	t.Helper()
	return model.TransactionRecord{
		ID:       date + category,
		Kind:     model.KindExpense,
		Category: category,
		Amount:   decimal.NewFromFloat(amount),
		Date:     mustDate(t, date),
	}
}

func income(t *testing.T, date string, amount float64) model.TransactionRecord {
	t.Helper()
	return model.TransactionRecord{
		ID:     date + "income",
		Kind:   model.KindIncome,
		Amount: decimal.NewFromFloat(amount),
		Date:   mustDate(t, date),
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func byTag(insights []model.Insight, tag string) []model.Insight {
	var out []model.Insight
	for _, in := range insights {
		if in.Tag == tag {
			out = append(out, in)
		}
	}
	return out
}
