package analysis

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses one metric series.
type Summary struct {
	Count  int
	Final  float64
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
}

// Summarize computes a Summary over series. An empty series yields the
// zero Summary.
func Summarize(series []float64) Summary {
	n := len(series)
	if n == 0 {
		return Summary{}
	}

	s := Summary{
		Count: n,
		Final: series[n-1],
		Mean:  stat.Mean(series, nil),
		Min:   floats.Min(series),
		Max:   floats.Max(series),
	}
	if n > 1 {
		s.StdDev = stat.StdDev(series, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, series)
	sort.Float64s(sorted)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)

	return s
}
