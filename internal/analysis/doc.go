// Package analysis provides statistics over recorded metric series.
//
// The package works on plain []float64 series as produced by a run:
//
//   - [Summarize]: per-series summary (mean, spread, extremes, median)
//   - [PowerSpectrum]: one-sided magnitude spectrum of a detrended series
//   - [DominantPeriod]: strongest oscillation period, in steps
//
// # Oscillation Detection
//
// A settled simulation has a flat spectrum; sloshing under gravity shows
// up as a clear peak:
//
//	period := analysis.DominantPeriod(series)
//	if period > 0 {
//	    // System is oscillating
//	}
package analysis
