package service

import "math"

// RoundingPrecision is the multiplier used to round monetary values to two
// decimal places before persisting or returning them.
const RoundingPrecision = 100

// round rounds a float64 value to two decimal places using the package
// RoundingPrecision constant. Rounding happens only at persistence and
// response boundaries; intermediate ledger arithmetic stays unrounded so
// replay stays bit-identical.
func round(value float64) float64 {
	return math.Round(value*RoundingPrecision) / RoundingPrecision
}
