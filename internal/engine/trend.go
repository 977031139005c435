package engine

// Slope returns the ordinary least-squares slope of values against their
// indices 0..n-1. Fewer than two values have no trend.
func Slope(values []float64) float64 {
	n := float64(len(values))
	if len(values) < 2 {
		return 0
	}

	var sumI, sumY, sumIY, sumI2 float64
	for i, y := range values {
		x := float64(i)
		sumI += x
		sumY += y
		sumIY += x * y
		sumI2 += x * x
	}

	return (n*sumIY - sumI*sumY) / (n*sumI2 - sumI*sumI)
}
