package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetRecord is a planned spend ceiling for one category in one calendar month.
type BudgetRecord struct {
	UserID   string          `json:"user_id,omitempty"`
	Category string          `json:"category"`
	Planned  decimal.Decimal `json:"planned"`
	Month    time.Month      `json:"month"`
	Year     int             `json:"year"`
	IsActive bool            `json:"active"`
}

// Applies reports whether the budget is active for the month containing t.
func (b BudgetRecord) Applies(t time.Time) bool {
	return b.IsActive && b.Year == t.Year() && b.Month == t.Month()
}

// GoalRecord is a savings target.
type GoalRecord struct {
	UserID   string          `json:"user_id,omitempty"`
	Name     string          `json:"name"`
	Target   decimal.Decimal `json:"target"`
	Current  decimal.Decimal `json:"current"`
	Deadline time.Time       `json:"deadline"` // zero when open-ended
}

// Remaining is the amount still to save, never negative.
func (g GoalRecord) Remaining() decimal.Decimal {
	r := g.Target.Sub(g.Current)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
