package categorize

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgercast/internal/model"
)

func TestSuggest_Keywords(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name   string
		desc   string
		amount string
		want   string
	}{
		{"grocery", "ALDI SUPERMARKET 123", "54.20", "Groceries"},
		{"coffee", "Starbucks Coffee", "4.50", "Dining"},
		{"rent above floor", "Monthly rent October", "1200", "Housing"},
		{"rent below floor", "rent share", "20", Fallback},
		{"no match", "zzz", "10", Fallback},
		{"empty", "   ", "10", Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.desc, decimal.RequireFromString(tt.amount), nil, table)
			if got.Category != tt.want {
				t.Errorf("Suggest(%q) = %q, want %q", tt.desc, got.Category, tt.want)
			}
			if got.Confidence < 0 || got.Confidence > 1 {
				t.Errorf("Confidence = %v, want within [0,1]", got.Confidence)
			}
		})
	}
}

func TestSuggest_HistoryWins(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	history := []model.TransactionRecord{
		{Description: "Corner Shop", Category: "Snacks", Date: day},
		{Description: "corner  shop", Category: "Snacks", Date: day},
		{Description: "Corner Shop", Category: "Groceries", Date: day},
	}

	got := Suggest("CORNER SHOP", decimal.NewFromInt(5), history, DefaultTable())
	if got.Category != "Snacks" {
		t.Errorf("Category = %q, want Snacks", got.Category)
	}
	if got.Source != "history" {
		t.Errorf("Source = %q, want history", got.Source)
	}
	if math.Abs(got.Confidence-0.8) > 1e-9 {
		t.Errorf("Confidence = %v, want 0.8", got.Confidence)
	}
}

func TestSuggest_MoreHitsWin(t *testing.T) {
	table := KeywordTable{Rules: []Rule{
		{Category: "A", Keywords: []string{"shop"}},
		{Category: "B", Keywords: []string{"shop", "online"}},
	}}
	got := Suggest("online shop order", decimal.NewFromInt(1), nil, table)
	if got.Category != "B" {
		t.Errorf("Category = %q, want B", got.Category)
	}
	if math.Abs(got.Confidence-0.6) > 1e-9 {
		t.Errorf("Confidence = %v, want 0.6", got.Confidence)
	}
}

func TestParseTable_MissingCategory(t *testing.T) {
	_, err := ParseTable([]byte("categories:\n  - keywords: [x]\n"))
	if err == nil {
		t.Fatal("expected error for rule without category")
	}
}
