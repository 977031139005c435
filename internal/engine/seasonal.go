package engine

// seasonalFactors holds the typical spending multiplier per calendar month.
var seasonalFactors = [12]float64{
	1.05, // Jan
	0.95, // Feb
	1.00, // Mar
	1.00, // Apr
	1.00, // May
	1.05, // Jun
	1.10, // Jul
	1.10, // Aug
	1.00, // Sep
	1.00, // Oct
	1.05, // Nov
	1.20, // Dec
}

// SeasonalFactor maps a calendar month (1-12) to its multiplier.
// Anything outside that range is neutral.
func SeasonalFactor(month int) float64 {
	if month < 1 || month > 12 {
		return 1.00
	}
	return seasonalFactors[month-1]
}
