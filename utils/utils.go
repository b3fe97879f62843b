package utils

import "math"

func FormatFloat(f float64, round int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	factor := math.Pow(10, float64(round))
	return math.Round(f*factor) / factor
}

// FilterFinite drops NaN and Inf values, keeping input order.
func FilterFinite(values []float64) []float64 {
	res := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		res = append(res, v)
	}
	return res
}

// DistinctCount returns the number of distinct values in a sorted slice.
func DistinctCount(sorted []float64) int {
	if len(sorted) == 0 {
		return 0
	}
	cnt := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			cnt++
		}
	}
	return cnt
}
