package qmap

import "sort"

// clipBelowThreshold drops training values below the threshold, the
// multiplicative guard against division artifacts near zero.
func clipBelowThreshold(values []float64, threshold float64) []float64 {
	res := make([]float64, 0, len(values))
	for _, v := range values {
		if v < threshold {
			continue
		}
		res = append(res, v)
	}
	return res
}

func sortedGroupKeys(groups map[int][]float64) []int {
	res := make([]int, 0, len(groups))
	for key := range groups {
		res = append(res, key)
	}
	sort.Ints(res)
	return res
}

// groupSetDiff returns the keys of a that are missing from b.
func groupSetDiff(a, b map[int][]float64) []int {
	res := []int{}
	for key := range a {
		if _, ok := b[key]; !ok {
			res = append(res, key)
		}
	}
	sort.Ints(res)
	return res
}
