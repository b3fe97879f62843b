package qmap

import (
	"fmt"
	"time"

	"github.com/uyouii/quantile-mapping/common"
	"github.com/uyouii/quantile-mapping/model"
)

// Grouper partitions a time-indexed series by a group spec. For periodic
// specs a symmetric window of ±window periods lets each group borrow
// neighboring-period samples, which smooths the per-group statistics.
type Grouper struct {
	spec   string
	window int
	period int // 0 for the whole-series spec
}

func NewGrouper(spec string, window int) (*Grouper, error) {
	var period int
	switch spec {
	case GroupWhole:
		period = 0
	case GroupMonth:
		period = 12
	case GroupSeason:
		period = 4
	case GroupDayOfYear:
		period = 366
	default:
		return nil, fmt.Errorf("%w: unknown group spec %q", common.ErrorInvalidConfig, spec)
	}

	if window < 0 {
		return nil, fmt.Errorf("%w: negative window %d", common.ErrorInvalidConfig, window)
	}
	if window > 0 {
		if period == 0 {
			return nil, fmt.Errorf("%w: window requires a periodic group spec", common.ErrorInvalidConfig)
		}
		if 2*window+1 > period {
			return nil, fmt.Errorf("%w: window %d covers the whole period %d",
				common.ErrorInvalidConfig, window, period)
		}
	}

	return &Grouper{
		spec:   spec,
		window: window,
		period: period,
	}, nil
}

func (g *Grouper) Spec() string {
	return g.spec
}

func (g *Grouper) Window() int {
	return g.window
}

// Key maps a timestamp to its group. The mapping is deterministic, so the
// same timestamp resolves to the same group at train and at predict time.
func (g *Grouper) Key(t time.Time) int {
	switch g.spec {
	case GroupMonth:
		return int(t.Month())
	case GroupSeason:
		// 1: DJF, 2: MAM, 3: JJA, 4: SON
		return (int(t.Month())%12)/3 + 1
	case GroupDayOfYear:
		return t.YearDay()
	}
	return WholeSeriesGroup
}

// Split collects values per group present in the series. With a window,
// group g additionally receives the values of groups g-window..g+window
// (cyclic over the period), but only groups with their own data appear in
// the result.
func (g *Grouper) Split(series *model.TimeSeries) map[int][]float64 {
	base := map[int][]float64{}
	for _, tv := range series.Values {
		key := g.Key(tv.Time)
		base[key] = append(base[key], tv.Value)
	}

	if g.window == 0 {
		return base
	}

	res := map[int][]float64{}
	for key := range base {
		vals := []float64{}
		for off := -g.window; off <= g.window; off++ {
			vals = append(vals, base[g.cyclicKey(key+off)]...)
		}
		res[key] = vals
	}
	return res
}

func (g *Grouper) cyclicKey(key int) int {
	// group keys are 1-based within the period
	return ((key-1)%g.period+g.period)%g.period + 1
}
