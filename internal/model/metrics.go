package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthBucket holds income and expense totals for one calendar month.
type MonthBucket struct {
	MonthKey string          `json:"month"` // "2006-01"
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Net is income minus expenses.
func (b MonthBucket) Net() decimal.Decimal {
	return b.Income.Sub(b.Expenses)
}

// Uncategorized is the category assigned to expenses that carry none.
const Uncategorized = "Uncategorized"

// CategoryBucket holds per-month spend for one category.
type CategoryBucket struct {
	Category string
	Months   map[string]decimal.Decimal
}

// CategorySeries is a category's monthly amounts in chronological order.
type CategorySeries struct {
	Category string
	Values   []float64
}

// ForecastPoint is one month of an aggregate forecast.
type ForecastPoint struct {
	MonthLabel        string  `json:"month"`
	PredictedAmount   float64 `json:"predicted"`
	ConfidencePercent float64 `json:"confidence"`
	SeasonalFactor    float64 `json:"seasonal_factor"`
	BasePrediction    float64 `json:"base_prediction"`
}

// CategoryForecast is the next-period outlook for one spending category.
type CategoryForecast struct {
	Category            string  `json:"category"`
	CurrentAverage      float64 `json:"current_average"`
	PredictedNextPeriod float64 `json:"predicted_next_period"`
	TrendPercent        float64 `json:"trend_percent"`
	ConfidencePercent   float64 `json:"confidence"`
	SampleSize          int     `json:"sample_size"`
	StdDev              float64 `json:"std_dev"`
	ConsistencyScore    float64 `json:"consistency_score"`
	Direction           string  `json:"direction"`   // increasing, decreasing, stable
	Variability         string  `json:"variability"` // consistent, moderate, volatile
}

// GoalStatus classifies a savings projection.
type GoalStatus string

const (
	GoalOnTrack          GoalStatus = "on_track"
	GoalBehind           GoalStatus = "behind"
	GoalReached          GoalStatus = "reached"
	GoalInsufficientData GoalStatus = "insufficient_data"
	GoalUnreachable      GoalStatus = "unreachable"
)

// GoalProjection estimates when a savings goal completes.
// EstimatedMonths and EstimatedDate are only meaningful for on_track, behind and reached.
type GoalProjection struct {
	Goal                  string     `json:"goal"`
	Status                GoalStatus `json:"status"`
	Message               string     `json:"message,omitempty"`
	Remaining             float64    `json:"remaining"`
	EstimatedMonths       int        `json:"estimated_months"`
	EstimatedDate         time.Time  `json:"estimated_date"`
	MonthlySavingsAverage float64    `json:"monthly_savings_average"`
	MonthlySavingsNeeded  float64    `json:"monthly_savings_needed,omitempty"`
}

// Report is the composite result of one engine run.
type Report struct {
	AsOf                time.Time          `json:"as_of"`
	History             []MonthBucket      `json:"history"`
	MonthlyPredictions  []ForecastPoint    `json:"monthly_predictions"`
	IncomePredictions   []ForecastPoint    `json:"income_predictions"`
	CategoryPredictions []CategoryForecast `json:"category_predictions"`
	Insights            []Insight          `json:"insights"`
	Goals               []GoalProjection   `json:"goals,omitempty"`
}
