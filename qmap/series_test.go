package qmap

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uyouii/quantile-mapping/model"
)

var testStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// dailySeries builds a series with one value per day starting at testStart.
func dailySeries(t *testing.T, values []float64, labels map[string]string) *model.TimeSeries {
	t.Helper()
	times := make([]time.Time, len(values))
	for i := range values {
		times[i] = testStart.AddDate(0, 0, i)
	}
	series, err := model.NewTimeSeries(times, values, labels)
	require.NoError(t, err)
	return series
}

// uniformDraws returns deterministic draws from (0, 1).
func uniformDraws(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	res := make([]float64, n)
	for i := range res {
		res[i] = rng.Float64()
	}
	return res
}

// monthlyOffsets is a triangular yearly cycle indexed by month-1.
var monthlyOffsets = [12]float64{4, 5, 6, 7, 8, 7, 6, 5, 4, 3, 2, 3}

// withMonthlyOffset returns a copy of the series with the month's offset
// added to every value.
func withMonthlyOffset(t *testing.T, series *model.TimeSeries) *model.TimeSeries {
	t.Helper()
	values := make([]model.TimeValue, 0, len(series.Values))
	for _, tv := range series.Values {
		values = append(values, model.TimeValue{
			Time:  tv.Time,
			Value: tv.Value + monthlyOffsets[int(tv.Time.Month())-1],
		})
	}
	return &model.TimeSeries{Labels: series.CopyLabels(), Values: values}
}
