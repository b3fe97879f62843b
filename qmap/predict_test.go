package qmap

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/quantile-mapping/common"
	"github.com/uyouii/quantile-mapping/model"
)

// additiveTestTable is a hand-built whole-series table with anchors at sim
// values 1, 2, 3 carrying corrections 10, 20, 30.
func additiveTestTable() *model.CorrectionFactorTable {
	return &model.CorrectionFactorTable{
		Kind:      model.AdditiveCorrection,
		GroupSpec: GroupWhole,
		Quantiles: []float64{0, 0.5, 1},
		Records: []model.CorrectionRecord{
			{Group: WholeSeriesGroup, Quantile: 0, SimValue: 1, Correction: 10},
			{Group: WholeSeriesGroup, Quantile: 0.5, SimValue: 2, Correction: 20},
			{Group: WholeSeriesGroup, Quantile: 1, SimValue: 3, Correction: 30},
		},
	}
}

func TestPredictLinearInterpolation(t *testing.T) {
	ctx := context.Background()
	sim := dailySeries(t, []float64{1, 1.5, 2, 2.25, 3}, map[string]string{"variable": "tas"})

	corrected, stats, err := Predict(ctx, sim, additiveTestTable(), InterpLinear)
	require.NoError(t, err)
	require.Len(t, corrected.Values, 5)
	assert.Zero(t, stats.MissingGroupCount)
	assert.Zero(t, stats.UndefinedCorrectionCount)
	assert.Equal(t, sim.Labels, corrected.Labels)

	// exact anchor hits return the stored correction
	assert.InDelta(t, 1+10.0, corrected.Values[0].Value, 1e-12)
	assert.InDelta(t, 2+20.0, corrected.Values[2].Value, 1e-12)
	assert.InDelta(t, 3+30.0, corrected.Values[4].Value, 1e-12)

	// between anchors the correction interpolates in value space
	assert.InDelta(t, 1.5+15.0, corrected.Values[1].Value, 1e-12)
	assert.InDelta(t, 2.25+22.5, corrected.Values[3].Value, 1e-12)

	// timestamps are preserved
	for i := range sim.Values {
		assert.Equal(t, sim.Values[i].Time, corrected.Values[i].Time)
	}
}

func TestPredictFlatExtrapolation(t *testing.T) {
	ctx := context.Background()
	sim := dailySeries(t, []float64{-5, 0.5, 3.5, 100}, nil)

	corrected, stats, err := Predict(ctx, sim, additiveTestTable(), InterpLinear)
	require.NoError(t, err)
	assert.Zero(t, stats.MissingGroupCount)

	// below the lowest anchor the boundary correction holds, no slope
	assert.InDelta(t, -5+10.0, corrected.Values[0].Value, 1e-12)
	assert.InDelta(t, 0.5+10.0, corrected.Values[1].Value, 1e-12)
	// same above the highest anchor
	assert.InDelta(t, 3.5+30.0, corrected.Values[2].Value, 1e-12)
	assert.InDelta(t, 100+30.0, corrected.Values[3].Value, 1e-12)
}

func TestPredictNearest(t *testing.T) {
	ctx := context.Background()
	sim := dailySeries(t, []float64{1.2, 2.9, 2.5}, nil)

	corrected, _, err := Predict(ctx, sim, additiveTestTable(), InterpNearest)
	require.NoError(t, err)

	assert.InDelta(t, 1.2+10.0, corrected.Values[0].Value, 1e-12)
	assert.InDelta(t, 2.9+30.0, corrected.Values[1].Value, 1e-12)
	// midpoint ties go to the lower anchor
	assert.InDelta(t, 2.5+20.0, corrected.Values[2].Value, 1e-12)
}

func TestPredictMissingGroup(t *testing.T) {
	ctx := context.Background()

	janValues := make([]float64, 31)
	for i := range janValues {
		janValues[i] = float64(i)
	}
	simTrain := dailySeries(t, janValues, nil)
	obsTrain := dailySeries(t, janValues, nil)

	table, err := Train(ctx, simTrain, obsTrain, &TrainOptions{
		Kind:          model.AdditiveCorrection,
		GroupSpec:     GroupMonth,
		QuantileCount: 5,
	})
	require.NoError(t, err)

	// 60 daily values starting Jan 1 reach into February, which the table
	// has never seen
	values := make([]float64, 60)
	for i := range values {
		values[i] = float64(i % 20)
	}
	sim := dailySeries(t, values, nil)

	corrected, stats, err := Predict(ctx, sim, table, InterpLinear)
	require.NoError(t, err)
	require.Len(t, corrected.Values, 60)
	assert.Equal(t, 60-31, stats.MissingGroupCount)
	assert.Zero(t, stats.UndefinedCorrectionCount)

	for i, tv := range corrected.Values {
		if tv.Time.Month() == 1 {
			assert.False(t, math.IsNaN(tv.Value), "index %d", i)
		} else {
			assert.True(t, math.IsNaN(tv.Value), "index %d", i)
		}
	}
}

func TestPredictUndefinedCorrection(t *testing.T) {
	ctx := context.Background()

	table := &model.CorrectionFactorTable{
		Kind:      model.MultiplicativeCorrection,
		GroupSpec: GroupWhole,
		Quantiles: []float64{0, 0.5, 1},
		Records: []model.CorrectionRecord{
			{Group: WholeSeriesGroup, Quantile: 0, SimValue: 0, Undefined: true},
			{Group: WholeSeriesGroup, Quantile: 0.5, SimValue: 1, Correction: 2},
			{Group: WholeSeriesGroup, Quantile: 1, SimValue: 2, Correction: 2},
		},
	}

	sim := dailySeries(t, []float64{0, 0.5, 1.5}, nil)

	corrected, stats, err := Predict(ctx, sim, table, InterpLinear)
	require.NoError(t, err)

	// 0 hits the undefined boundary anchor, 0.5 brackets against it
	assert.True(t, math.IsNaN(corrected.Values[0].Value))
	assert.True(t, math.IsNaN(corrected.Values[1].Value))
	assert.Equal(t, 2, stats.UndefinedCorrectionCount)

	// values bracketed by defined anchors still work
	assert.InDelta(t, 1.5*2, corrected.Values[2].Value, 1e-12)
}

func TestPredictThresholdZeroConvention(t *testing.T) {
	ctx := context.Background()

	table := &model.CorrectionFactorTable{
		Kind:      model.MultiplicativeCorrection,
		GroupSpec: GroupWhole,
		Threshold: 0.1,
		Quantiles: []float64{0, 1},
		Records: []model.CorrectionRecord{
			{Group: WholeSeriesGroup, Quantile: 0, SimValue: 0.1, Correction: 3},
			{Group: WholeSeriesGroup, Quantile: 1, SimValue: 2, Correction: 3},
		},
	}

	sim := dailySeries(t, []float64{0, 0.05, 0.1, 0.2}, nil)

	corrected, stats, err := Predict(ctx, sim, table, InterpLinear)
	require.NoError(t, err)
	assert.Zero(t, stats.UndefinedCorrectionCount)

	// at or below the threshold the zero convention applies element-wise
	assert.Zero(t, corrected.Values[0].Value)
	assert.Zero(t, corrected.Values[1].Value)
	assert.Zero(t, corrected.Values[2].Value)
	assert.InDelta(t, 0.2*3, corrected.Values[3].Value, 1e-12)
}

func TestPredictIdempotent(t *testing.T) {
	ctx := context.Background()

	simValues := uniformDraws(500, 21)
	obsValues := uniformDraws(500, 22)
	sim := dailySeries(t, simValues, nil)
	obs := dailySeries(t, obsValues, nil)

	table, err := Train(ctx, sim, obs, &TrainOptions{
		Kind:          model.AdditiveCorrection,
		GroupSpec:     GroupWhole,
		QuantileCount: 10,
	})
	require.NoError(t, err)

	first, firstStats, err := Predict(ctx, sim, table, InterpLinear)
	require.NoError(t, err)
	second, secondStats, err := Predict(ctx, sim, table, InterpLinear)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstStats, secondStats)
}

func TestPredictErrors(t *testing.T) {
	ctx := context.Background()
	sim := dailySeries(t, []float64{1, 2, 3}, nil)

	_, _, err := Predict(ctx, sim, additiveTestTable(), InterpMode("cubic"))
	assert.ErrorIs(t, err, common.ErrorInvalidConfig)

	_, _, err = Predict(ctx, sim, &model.CorrectionFactorTable{}, InterpLinear)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)

	badKind := additiveTestTable()
	badKind.Kind = model.CorrectionKind(9)
	_, _, err = Predict(ctx, sim, badKind, InterpLinear)
	assert.ErrorIs(t, err, common.ErrorInvalidConfig)

	badGroup := additiveTestTable()
	badGroup.GroupSpec = "time.hour"
	_, _, err = Predict(ctx, sim, badGroup, InterpLinear)
	assert.ErrorIs(t, err, common.ErrorInvalidConfig)

	_, _, err = Predict(ctx, &model.TimeSeries{}, additiveTestTable(), InterpLinear)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}
