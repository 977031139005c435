// Package engine turns a user's transaction history into forecasts, category
// outlooks, savings-goal projections and rule-based insights.
//
// Every function here is pure: the caller supplies the records and the as-of
// date, and identical input always yields identical output.
package engine

import (
	"math"
	"time"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance around avg.
func variance(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - avg
		sum += d * d
	}
	return sum / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// monthStart returns midnight on the first day of t's month, in t's location.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// addMonths moves t by n calendar months, pinning the day to the end of the
// target month instead of overflowing into the next one.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, n, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}
