package model

import (
	"fmt"
	"time"

	"github.com/uyouii/quantile-mapping/common"
)

type TimeValue struct {
	Time  time.Time
	Value float64
}

func (v *TimeValue) Less(timeValue TimeValue) bool {
	return v.Value < timeValue.Value
}

func (v *TimeValue) Before(timeValue TimeValue) bool {
	return v.Time.Before(timeValue.Time)
}

type TimeSeries struct {
	// Labels contains label key -> label value, like "variable": "pr"
	Labels map[string]string
	Values []TimeValue
}

func NewTimeSeries(times []time.Time, values []float64, labels map[string]string) (*TimeSeries, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("%w: time axis has length %d, values has length %d",
			common.ErrorInvalidValue, len(times), len(values))
	}
	timeValues := make([]TimeValue, 0, len(values))
	for i := range values {
		timeValues = append(timeValues, TimeValue{Time: times[i], Value: values[i]})
	}
	series := &TimeSeries{
		Labels: labels,
		Values: timeValues,
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

func (s *TimeSeries) DebugString() string {
	res := fmt.Sprintf("labels: %+v, valueCount: %+v", s.Labels, len(s.Values))
	return res
}

func (s *TimeSeries) IsEmpty() bool {
	if s == nil {
		return true
	}
	return len(s.Values) == 0
}

// Validate checks the time axis is strictly increasing, one value per timestamp.
func (s *TimeSeries) Validate() error {
	if s.IsEmpty() {
		return fmt.Errorf("%w: empty series", common.ErrorInvalidValue)
	}
	for i := 1; i < len(s.Values); i++ {
		if !s.Values[i-1].Time.Before(s.Values[i].Time) {
			return fmt.Errorf("%w: time axis not strictly increasing at index %d",
				common.ErrorInvalidValue, i)
		}
	}
	return nil
}

func (s *TimeSeries) Times() []time.Time {
	res := make([]time.Time, 0, len(s.Values))
	for _, v := range s.Values {
		res = append(res, v.Time)
	}
	return res
}

func (s *TimeSeries) RawValues() []float64 {
	res := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		res = append(res, v.Value)
	}
	return res
}

func (s *TimeSeries) CopyLabels() map[string]string {
	if s.Labels == nil {
		return nil
	}
	res := make(map[string]string, len(s.Labels))
	for k, v := range s.Labels {
		res[k] = v
	}
	return res
}
