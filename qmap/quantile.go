package qmap

import (
	"fmt"
	"math"
	"sort"

	"github.com/uyouii/quantile-mapping/common"
	"github.com/uyouii/quantile-mapping/utils"
	"gonum.org/v1/gonum/floats"
)

// QuantileLevels returns the fixed level sequence used for training: nq
// interior levels linearly spaced over [0, 1] plus both endpoints, ascending,
// length nq+2. The endpoints approximate the sample minimum and maximum.
func QuantileLevels(nq int) ([]float64, error) {
	if nq < 1 {
		return nil, fmt.Errorf("%w: quantile count %d, need at least 1", common.ErrorInvalidConfig, nq)
	}
	levels := make([]float64, nq+2)
	floats.Span(levels, 0, 1)
	return levels, nil
}

// EmpiricalQuantile evaluates the q-th quantile of an ascending-sorted sample
// by linear interpolation between order statistics (pos = q*(n-1)).
func EmpiricalQuantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}

	pos := q * float64(n-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower < 0 {
		lower = 0
	}
	if upper > n-1 {
		upper = n - 1
	}
	if lower == upper {
		return sorted[lower]
	}

	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// EstimateQuantiles computes the value of every level for one group sample.
// Non-finite values are dropped first; the sample is sorted on a copy, so the
// result does not depend on input ordering. Ties across levels are allowed.
func EstimateQuantiles(values []float64, levels []float64) ([]float64, error) {
	finite := utils.FilterFinite(values)
	sorted := make([]float64, len(finite))
	copy(sorted, finite)
	sort.Float64s(sorted)

	if cnt := utils.DistinctCount(sorted); cnt < MinDistinctValues {
		return nil, fmt.Errorf("%w: %d distinct finite values, need at least %d",
			common.ErrorTrainingData, cnt, MinDistinctValues)
	}

	res := make([]float64, 0, len(levels))
	for _, q := range levels {
		res = append(res, EmpiricalQuantile(sorted, q))
	}
	return res, nil
}
