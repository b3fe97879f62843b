package qmap

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/uyouii/quantile-mapping/common"
	"github.com/uyouii/quantile-mapping/model"
	"github.com/uyouii/quantile-mapping/utils"
	"go.uber.org/zap"
)

type InterpMode string

const (
	InterpLinear  InterpMode = "linear"
	InterpNearest InterpMode = "nearest"
)

func (m InterpMode) Valid() bool {
	return m == InterpLinear || m == InterpNearest
}

// PredictStats counts the elements that degraded to NaN: timestamps whose
// group is absent from the table, and values that landed on an undefined
// multiplicative correction.
type PredictStats struct {
	MissingGroupCount        int
	UndefinedCorrectionCount int
}

// Predict applies a trained correction table to new simulated data. The
// output keeps the input's timestamps and length; degenerate elements become
// NaN and are counted in PredictStats instead of failing the whole batch.
func Predict(ctx context.Context, sim *model.TimeSeries, table *model.CorrectionFactorTable,
	interp InterpMode) (*model.TimeSeries, *PredictStats, error) {
	logger := utils.GetLogger(ctx)

	if interp == "" {
		interp = InterpLinear
	}
	if !interp.Valid() {
		return nil, nil, fmt.Errorf("%w: interp mode %q", common.ErrorInvalidConfig, string(interp))
	}
	if table.IsEmpty() {
		return nil, nil, fmt.Errorf("%w: empty correction table", common.ErrorInvalidValue)
	}
	if !table.Kind.Valid() {
		return nil, nil, fmt.Errorf("%w: correction kind %d", common.ErrorInvalidConfig, int(table.Kind))
	}
	if err := sim.Validate(); err != nil {
		return nil, nil, err
	}

	grouper, err := NewGrouper(table.GroupSpec, table.Window)
	if err != nil {
		return nil, nil, err
	}

	index := table.GroupIndex()
	stats := &PredictStats{}
	corrected := make([]model.TimeValue, 0, len(sim.Values))

	for _, tv := range sim.Values {
		value := math.NaN()

		records, ok := index[grouper.Key(tv.Time)]
		switch {
		case !ok:
			stats.MissingGroupCount++
		case table.Kind == model.MultiplicativeCorrection && table.Threshold > 0 &&
			tv.Value <= table.Threshold:
			// zero convention for sub-threshold values
			value = 0
		default:
			correction, defined := interpolateCorrection(records, tv.Value, interp)
			if !defined {
				stats.UndefinedCorrectionCount++
			} else {
				value = ApplyCorrection(tv.Value, correction, table.Kind)
			}
		}

		corrected = append(corrected, model.TimeValue{Time: tv.Time, Value: value})
	}

	if stats.MissingGroupCount > 0 || stats.UndefinedCorrectionCount > 0 {
		logger.Warn("predict degraded some elements to NaN",
			zap.Int("missingGroupCnt", stats.MissingGroupCount),
			zap.Int("undefinedCorrectionCnt", stats.UndefinedCorrectionCount),
			zap.Int("totalCnt", len(sim.Values)))
	}

	return &model.TimeSeries{
		Labels: sim.CopyLabels(),
		Values: corrected,
	}, stats, nil
}

// interpolateCorrection resolves the correction for one input value against a
// group's records, sorted ascending by SimValue. Inputs outside the trained
// anchor range hold the boundary correction constant: tail behavior is
// unreliable with finite samples, so no slope is extrapolated.
func interpolateCorrection(records []model.CorrectionRecord, value float64,
	interp InterpMode) (float64, bool) {
	n := len(records)
	if n == 0 {
		return math.NaN(), false
	}
	if value <= records[0].SimValue {
		return recordCorrection(records[0])
	}
	if value >= records[n-1].SimValue {
		return recordCorrection(records[n-1])
	}

	idx := sort.Search(n, func(i int) bool {
		return records[i].SimValue >= value
	})
	lower, upper := records[idx-1], records[idx]

	if interp == InterpNearest {
		if value-lower.SimValue <= upper.SimValue-value {
			return recordCorrection(lower)
		}
		return recordCorrection(upper)
	}

	if lower.Undefined || upper.Undefined {
		return math.NaN(), false
	}
	span := upper.SimValue - lower.SimValue
	if span <= 0 {
		return upper.Correction, true
	}
	frac := (value - lower.SimValue) / span
	return lower.Correction + frac*(upper.Correction-lower.Correction), true
}

func recordCorrection(record model.CorrectionRecord) (float64, bool) {
	if record.Undefined {
		return math.NaN(), false
	}
	return record.Correction, true
}
