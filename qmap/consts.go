package qmap

const (
	// Group specs. "time" groups the whole series together, the others
	// partition timestamps by a calendar period.
	GroupWhole     = "time"
	GroupMonth     = "time.month"
	GroupSeason    = "time.season"
	GroupDayOfYear = "time.dayofyear"

	WholeSeriesGroup = 0

	DefaultQuantileCount = 20

	// quantile estimation degenerates below this
	MinDistinctValues = 2
)
