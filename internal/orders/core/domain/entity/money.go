package entity

import "math"

// Monetary figures are float64 in the store's base currency unit,
// rounded half-away-from-zero at fixed precisions. Aggregates derived
// from independently rounded figures may accumulate cent-level drift;
// callers that sum N rounded allocations should tolerate ±(n−1) cents.

// Round2 rounds to 2 decimal places (money).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to 1 decimal place (display rates).
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round0 rounds to the nearest integer.
func Round0(v float64) float64 {
	return math.Round(v)
}
