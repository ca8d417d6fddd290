package utils

import "math"

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FiniteMean returns the mean of the finite values and whether any finite value exists.
func FiniteMean(values []float64) (float64, bool) {
	sum := 0.0
	n := 0

	for _, v := range values {
		if !IsFinite(v) {
			continue
		}

		sum += v
		n++
	}

	if n == 0 {
		return 0, false
	}

	return sum / float64(n), true
}

// SampleStdDev returns the sample standard deviation (n-1 denominator) of values.
// It returns 0 for fewer than two values.
func SampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}

	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}

	return math.Sqrt(variance / float64(len(values)-1))
}
