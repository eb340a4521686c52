package analysis

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	series := []float64{2.0, 4.0, 4.0, 4.0, 5.0, 5.0, 7.0, 9.0}
	s := Summarize(series)

	if s.Count != 8 {
		t.Errorf("count = %d, want 8", s.Count)
	}
	if s.Final != 9.0 {
		t.Errorf("final = %g, want 9", s.Final)
	}
	if math.Abs(s.Mean-5.0) > 1e-12 {
		t.Errorf("mean = %g, want 5", s.Mean)
	}
	if s.Min != 2.0 || s.Max != 9.0 {
		t.Errorf("range = [%g, %g], want [2, 9]", s.Min, s.Max)
	}
	// Sample standard deviation of the classic 2,4,4,4,5,5,7,9 set.
	want := math.Sqrt(32.0 / 7.0)
	if math.Abs(s.StdDev-want) > 1e-12 {
		t.Errorf("stddev = %g, want %g", s.StdDev, want)
	}
	if s.Median < 4.0 || s.Median > 5.0 {
		t.Errorf("median = %g, want within [4, 5]", s.Median)
	}
}

func TestSummarizeEdgeCases(t *testing.T) {
	if s := Summarize(nil); s.Count != 0 {
		t.Errorf("empty series count = %d, want 0", s.Count)
	}

	s := Summarize([]float64{3.5})
	if s.Count != 1 || s.Final != 3.5 || s.Mean != 3.5 {
		t.Errorf("single sample summary = %+v", s)
	}
	if s.StdDev != 0 {
		t.Errorf("single sample stddev = %g, want 0", s.StdDev)
	}
}

func TestPowerSpectrumLength(t *testing.T) {
	series := make([]float64, 128)
	for i := range series {
		series[i] = math.Sin(float64(i) * 0.3)
	}

	ps := PowerSpectrum(series)
	if len(ps) != 64 {
		t.Fatalf("spectrum length = %d, want 64", len(ps))
	}

	if PowerSpectrum([]float64{1.0}) != nil {
		t.Error("expected nil spectrum for single sample")
	}
}

func TestDominantPeriodFindsSine(t *testing.T) {
	// 400 samples, 16 full cycles: period 25 lands exactly on bin 16.
	const n, period = 400, 25.0
	series := make([]float64, n)
	for i := range series {
		series[i] = 10.0 + 2.0*math.Sin(2*math.Pi*float64(i)/period)
	}

	got := DominantPeriod(series)
	if math.Abs(got-period) > 1e-9 {
		t.Errorf("dominant period = %g, want %g", got, period)
	}
}

func TestDominantPeriodFlatSeries(t *testing.T) {
	series := make([]float64, 256)
	for i := range series {
		series[i] = 4.2
	}

	if got := DominantPeriod(series); got != 0 {
		t.Errorf("dominant period of flat series = %g, want 0", got)
	}
}
