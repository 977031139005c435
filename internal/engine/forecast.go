package engine

import (
	"math"
	"time"

	"github.com/theirongolddev/ledgercast/internal/model"
)

// DefaultMonthsAhead is the forecast horizon used when none is given.
const DefaultMonthsAhead = 3

const (
	forecastConfidenceStart = 90.0
	forecastConfidenceStep  = 10.0
	forecastConfidenceFloor = 60.0
	forecastFloorRatio      = 0.5
)

// Forecast projects monthlyTotals (chronological, one per month) monthsAhead
// months past the month containing asOf. Confidence decays by 10 points per
// step down to 60, and no prediction falls below half the historical average.
func Forecast(monthlyTotals []float64, monthsAhead int, asOf time.Time) []model.ForecastPoint {
	if monthsAhead < 1 {
		return nil
	}

	avg := mean(monthlyTotals)
	trend := Slope(monthlyTotals)
	n := float64(len(monthlyTotals))
	start := monthStart(asOf)

	points := make([]model.ForecastPoint, 0, monthsAhead)
	for i := 1; i <= monthsAhead; i++ {
		target := start.AddDate(0, i, 0)
		base := avg + trend*(n+float64(i))
		factor := SeasonalFactor(int(target.Month()))
		confidence := math.Max(forecastConfidenceFloor, forecastConfidenceStart-forecastConfidenceStep*float64(i))

		points = append(points, model.ForecastPoint{
			MonthLabel:        target.Format("Jan 2006"),
			PredictedAmount:   math.Max(base*factor, avg*forecastFloorRatio),
			ConfidencePercent: clamp(confidence, 0, 100),
			SeasonalFactor:    factor,
			BasePrediction:    base,
		})
	}
	return points
}
