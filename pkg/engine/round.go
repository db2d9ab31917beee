package engine

import "math"

// RoundTo rounds v to the given number of decimal digits using
// round-half-to-even (banker's rounding). A digit count of zero or less is the
// identity: the value keeps float64's native precision.
//
// RoundTo is idempotent: rounding an already-rounded value at the same
// precision returns it unchanged, which is what lets constant folding install
// pre-rounded sums without changing reported results.
//
// RoundTo never turns a finite value into a non-finite one. When the scaled
// intermediate v*10^digits cannot be represented as a float64, adjacent
// float64 values around v are already further apart than the requested
// decimal step, so v is returned unchanged.
func RoundTo(v float64, digits int) float64 {
	if digits <= 0 {
		return v
	}
	scale := math.Pow(10, float64(digits))
	scaled := v * scale
	if math.IsInf(scaled, 0) || math.IsNaN(scaled) {
		return v
	}
	return math.RoundToEven(scaled) / scale
}
