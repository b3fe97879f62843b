package qmap

import (
	"math"

	"github.com/uyouii/quantile-mapping/model"
)

// GetCorrection computes the correction factor between a simulated and an
// observed quantile value. For the multiplicative kind the ratio is guarded:
// 0/0 yields correction 0 by convention, while a zero simulated quantile
// against a nonzero observed quantile has no finite correction and is
// reported as undefined instead of Inf.
func GetCorrection(simQuantile, obsQuantile float64, kind model.CorrectionKind) (float64, bool) {
	switch kind {
	case model.AdditiveCorrection:
		return obsQuantile - simQuantile, true
	case model.MultiplicativeCorrection:
		if simQuantile == 0 {
			if obsQuantile == 0 {
				return 0, true
			}
			return math.NaN(), false
		}
		return obsQuantile / simQuantile, true
	}
	return math.NaN(), false
}

// ApplyCorrection applies a correction factor to a simulated value.
func ApplyCorrection(value, correction float64, kind model.CorrectionKind) float64 {
	switch kind {
	case model.AdditiveCorrection:
		return value + correction
	case model.MultiplicativeCorrection:
		return value * correction
	}
	return math.NaN()
}
