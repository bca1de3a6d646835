package bench

import "math"

// percentile returns the q-th percentile of sorted (ascending) samples using
// the index rule floor(q*n)-1, with the index clamped to [0, n-1]. The clamp
// matters at small sample counts: with a single sample, floor(0.99*1)-1 is
// negative, and both p50 and p99 must return that sample rather than wrap.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	idx := int(math.Floor(float64(n)*q)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}

	return sorted[idx]
}

// roundTo rounds x to the given number of decimal places.
func roundTo(x float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(x*pow) / pow
}
