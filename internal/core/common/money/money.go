package money

import "math"

// Round rounds to cents, matching NUMERIC(12,2) storage.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
