package engine

import (
	"math"
	"sort"

	"github.com/theirongolddev/ledgercast/internal/model"
)

const (
	categoryConfidenceMin = 50.0
	categoryConfidenceMax = 90.0
	neutralConsistency    = 50.0
	directionThreshold    = 5.0 // percent
)

// ForecastCategories extrapolates each category's next month from its own
// history. Categories without observations are skipped. The result is sorted
// by current average, largest first; equal averages keep input order.
func ForecastCategories(series []model.CategorySeries) []model.CategoryForecast {
	result := make([]model.CategoryForecast, 0, len(series))

	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		result = append(result, forecastCategory(s))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CurrentAverage > result[j].CurrentAverage
	})
	return result
}

func forecastCategory(s model.CategorySeries) model.CategoryForecast {
	values := s.Values
	avg := mean(values)
	trend := Slope(values)

	predicted := avg
	if len(values) >= 2 {
		predicted = values[len(values)-1] + trend
	}
	predicted = math.Max(predicted, 0)

	var trendPct float64
	if avg > 0 {
		trendPct = (predicted - avg) / avg * 100
	}

	stdDev := math.Sqrt(variance(values, avg))
	consistency := neutralConsistency
	if avg > 0 {
		consistency = math.Max(0, 100-stdDev/avg*100)
	}

	return model.CategoryForecast{
		Category:            s.Category,
		CurrentAverage:      avg,
		PredictedNextPeriod: predicted,
		TrendPercent:        trendPct,
		ConfidencePercent:   clamp(consistency, categoryConfidenceMin, categoryConfidenceMax),
		SampleSize:          len(values),
		StdDev:              stdDev,
		ConsistencyScore:    consistency,
		Direction:           direction(trendPct),
		Variability:         variability(consistency),
	}
}

func direction(trendPct float64) string {
	switch {
	case trendPct > directionThreshold:
		return "increasing"
	case trendPct < -directionThreshold:
		return "decreasing"
	default:
		return "stable"
	}
}

func variability(consistency float64) string {
	switch {
	case consistency >= 80:
		return "consistent"
	case consistency >= 50:
		return "moderate"
	default:
		return "volatile"
	}
}
