package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/uyouii/quantile-mapping/common"
)

type CorrectionKind int

const (
	AdditiveCorrection       CorrectionKind = 1
	MultiplicativeCorrection CorrectionKind = 2
)

func (k CorrectionKind) Valid() bool {
	return k == AdditiveCorrection || k == MultiplicativeCorrection
}

func (k CorrectionKind) String() string {
	switch k {
	case AdditiveCorrection:
		return "additive"
	case MultiplicativeCorrection:
		return "multiplicative"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// CorrectionRecord is one row of the trained table: the correction factor for
// one (group, quantile level) cell, keyed for interpolation by the simulated
// series' quantile value. Undefined marks a multiplicative singularity
// (sim quantile 0 with nonzero obs quantile); Correction is 0 there and must
// not be used.
type CorrectionRecord struct {
	Group      int     `json:"g"`
	Quantile   float64 `json:"q"`
	SimValue   float64 `json:"v"`
	Correction float64 `json:"cf"`
	Undefined  bool    `json:"undef,omitempty"`
}

// CorrectionFactorTable is the trained artifact of quantile mapping.
// It is never mutated after training, so it can be read concurrently.
type CorrectionFactorTable struct {
	Kind      CorrectionKind     `json:"kind"`
	GroupSpec string             `json:"group"`
	Window    int                `json:"window,omitempty"`
	Threshold float64            `json:"thresh,omitempty"`
	Quantiles []float64          `json:"quantiles"`
	Records   []CorrectionRecord `json:"records"`
}

func (t *CorrectionFactorTable) IsEmpty() bool {
	if t == nil {
		return true
	}
	return len(t.Records) == 0
}

func (t *CorrectionFactorTable) Groups() []int {
	if t == nil {
		return nil
	}
	seen := map[int]bool{}
	res := []int{}
	for _, record := range t.Records {
		if !seen[record.Group] {
			seen[record.Group] = true
			res = append(res, record.Group)
		}
	}
	sort.Ints(res)
	return res
}

func (t *CorrectionFactorTable) GroupRecords(group int) []CorrectionRecord {
	if t == nil {
		return nil
	}
	res := []CorrectionRecord{}
	for _, record := range t.Records {
		if record.Group == group {
			res = append(res, record)
		}
	}
	return res
}

// GroupIndex builds a fresh per-group index with each group's records sorted
// ascending by SimValue, the order the predictor brackets against. The table
// itself stays untouched.
func (t *CorrectionFactorTable) GroupIndex() map[int][]CorrectionRecord {
	if t == nil {
		return nil
	}
	res := map[int][]CorrectionRecord{}
	for _, record := range t.Records {
		res[record.Group] = append(res[record.Group], record)
	}
	for _, records := range res {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].SimValue < records[j].SimValue
		})
	}
	return res
}

func (t *CorrectionFactorTable) Encode() ([]byte, error) {
	if t.IsEmpty() {
		return nil, fmt.Errorf("%w: empty correction table", common.ErrorInvalidValue)
	}
	return json.Marshal(t)
}

func DecodeTable(data []byte) (*CorrectionFactorTable, error) {
	table := &CorrectionFactorTable{}
	if err := json.Unmarshal(data, table); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidValue, err)
	}
	if !table.Kind.Valid() {
		return nil, fmt.Errorf("%w: correction kind %d", common.ErrorInvalidValue, int(table.Kind))
	}
	if table.IsEmpty() || len(table.Quantiles) == 0 {
		return nil, fmt.Errorf("%w: decoded table has no records", common.ErrorInvalidValue)
	}
	return table, nil
}
