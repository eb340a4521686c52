package analysis

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the one-sided magnitude spectrum of series.
// The series is detrended by its mean and shaped with a Hann window
// before the transform, so the DC bin reflects drift rather than the
// series offset. Bin k corresponds to k/len(series) cycles per step.
func PowerSpectrum(series []float64) []float64 {
	n := len(series)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range series {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	ps := make([]float64, n/2)
	for i := range ps {
		re := real(spectrum[i])
		im := imag(spectrum[i])
		ps[i] = math.Sqrt(re*re + im*im)
	}
	return ps
}

// DominantPeriod returns the period, in steps, of the strongest
// oscillation in series. Returns 0 when the series is too short or has
// no peak above the noise floor.
func DominantPeriod(series []float64) float64 {
	ps := PowerSpectrum(series)
	if len(ps) < 2 {
		return 0
	}

	// Skip the DC bin; residual drift lands there.
	best, bestMag := 0, 0.0
	total := 0.0
	for k := 1; k < len(ps); k++ {
		total += ps[k]
		if ps[k] > bestMag {
			best, bestMag = k, ps[k]
		}
	}
	if best == 0 || total == 0 {
		return 0
	}

	// A real peak carries a disproportionate share of the energy.
	mean := total / float64(len(ps)-1)
	if bestMag < 3*mean {
		return 0
	}

	return float64(len(series)) / float64(best)
}
