package engine

import (
	"testing"

	"github.com/theirongolddev/ledgercast/internal/model"
)

func TestForecastCategories_SortedByAverage(t *testing.T) {
	series := []model.CategorySeries{
		{Category: "Fun", Values: []float64{50, 50}},
		{Category: "Rent", Values: []float64{1200, 1200, 1200}},
		{Category: "Bills", Values: []float64{100}},
		{Category: "Food", Values: []float64{100, 100}},
		{Category: "Empty"},
	}

	got := ForecastCategories(series)
	var order []string
	for _, f := range got {
		order = append(order, f.Category)
	}

	want := []string{"Rent", "Bills", "Food", "Fun"} // Bills before Food: equal average, input order
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].CurrentAverage > got[i-1].CurrentAverage {
			t.Errorf("not descending at %d: %v > %v", i, got[i].CurrentAverage, got[i-1].CurrentAverage)
		}
	}
}

func TestForecastCategories_Values(t *testing.T) {
	tests := []struct {
		name        string
		values      []float64
		predicted   float64
		trendPct    float64
		confidence  float64
		direction   string
		variability string
	}{
		{"steady", []float64{100, 100, 100}, 100, 0, 90, "stable", "consistent"},
		{"single point uses average", []float64{80}, 80, 0, 90, "stable", "consistent"},
		// avg 55, slope -90: 10 - 90 floors at 0
		{"floored at zero", []float64{100, 10}, 0, -100, 50, "decreasing", "volatile"},
		// avg 150, slope 100, last 200 + 100 = 300
		{"rising", []float64{100, 200}, 300, 100, 66.66666666666667, "increasing", "moderate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForecastCategories([]model.CategorySeries{{Category: "X", Values: tt.values}})[0]
			if !approx(got.PredictedNextPeriod, tt.predicted) {
				t.Errorf("PredictedNextPeriod = %v, want %v", got.PredictedNextPeriod, tt.predicted)
			}
			if !approx(got.TrendPercent, tt.trendPct) {
				t.Errorf("TrendPercent = %v, want %v", got.TrendPercent, tt.trendPct)
			}
			if !approx(got.ConfidencePercent, tt.confidence) {
				t.Errorf("ConfidencePercent = %v, want %v", got.ConfidencePercent, tt.confidence)
			}
			if got.Direction != tt.direction || got.Variability != tt.variability {
				t.Errorf("Direction/Variability = %s/%s, want %s/%s", got.Direction, got.Variability, tt.direction, tt.variability)
			}
			if got.SampleSize != len(tt.values) {
				t.Errorf("SampleSize = %d, want %d", got.SampleSize, len(tt.values))
			}
		})
	}
}

func TestForecastCategories_ZeroAverage(t *testing.T) {
	got := ForecastCategories([]model.CategorySeries{{Category: "Z", Values: []float64{0, 0}}})[0]
	if got.TrendPercent != 0 || got.ConsistencyScore != 50 || got.ConfidencePercent != 50 {
		t.Errorf("zero average = %+v, want trend 0, consistency 50, confidence 50", got)
	}
}
