// Package audio sonifies the particle bath as an ambient pad. Fluid
// motion opens a low-pass filter, so a still bath hums quietly and a
// stirred one brightens.
package audio

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/mjibson/go-dsp/fft"
)

const (
	SampleRate = 44100
	BufferSize = 1024
)

// Dm9: D2, F2, A2, C3, E3. Low and unhurried.
var padFreqs = []float64{73.42, 87.31, 110.00, 130.81, 164.81}

type Processor struct {
	stream *portaudio.Stream

	// Output analysis, for level meters.
	complexBuffer   []complex128
	bass, mid, high float64

	// Pad engine state.
	time        float64
	filterState [2]float64
	delayLine   [2][]float64
	delayHead   int

	// Physics inputs, written from the frame loop.
	mu           sync.Mutex
	energy       float64
	spread       float64
	energySmooth float64
	spreadSmooth float64

	active bool
}

func NewProcessor() *Processor {
	delayLen := int(float64(SampleRate) * 0.6)

	return &Processor{
		complexBuffer: make([]complex128, BufferSize),
		delayLine:     [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
	}
}

// Start opens the default stereo output stream. Output only; input
// devices vary too much across hosts to rely on.
func (a *Processor) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio init: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, a.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	a.stream = stream
	a.active = true
	return nil
}

func (a *Processor) Stop() {
	if a.stream != nil {
		a.stream.Stop()
		a.stream.Close()
		a.stream = nil
		portaudio.Terminate()
	}
	a.active = false
}

func (a *Processor) Active() bool { return a.active }

// UpdateFlow feeds the current fluid state into the synth. Kinetic
// energy opens the filter; density spread widens the detune.
func (a *Processor) UpdateFlow(energy, spread float64) {
	a.mu.Lock()
	a.energy = energy
	a.spread = spread
	a.mu.Unlock()
}

// Levels returns smoothed output band levels in [0, 1] for meters.
func (a *Processor) Levels() (bass, mid, high float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bass, a.mid, a.high
}

// Triangle wave: smooth, flute-like, no harsh buzz.
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// One pole low pass.
func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	out := state + alpha*(sample-state)
	return out, out
}

// process is the stream callback. No input parameter: the stream is
// opened output-only, and portaudio matches callback arguments to the
// channel counts.
func (a *Processor) process(out [][]float32) {
	a.render(out)
	a.analyze(out)
}

// render synthesizes one stereo buffer of the pad.
func (a *Processor) render(out [][]float32) {
	a.mu.Lock()
	targetEnergy := a.energy
	targetSpread := a.spread
	a.mu.Unlock()

	// Slow morphing to prevent jumps between frames.
	a.energySmooth = a.energySmooth*0.995 + targetEnergy*0.005
	a.spreadSmooth = a.spreadSmooth*0.995 + targetSpread*0.005

	// Cutoff 300Hz at rest, opening toward 1200Hz as the bath stirs.
	cutoff := 300.0 + math.Min(a.energySmooth*3.0, 900.0)

	// Spread widens the stereo detune from 0.1% up to 0.4%.
	detune := 0.001 + math.Min(a.spreadSmooth*0.01, 0.003)

	dt := 1.0 / float64(SampleRate)
	vol := 0.252

	for i := 0; i < len(out[0]); i++ {
		sampleL := 0.0
		sampleR := 0.0

		for j, f := range padFreqs {
			oscL := triangle(a.time * (f * (1 - detune)))
			oscR := triangle(a.time * (f * (1 + detune)))

			g := 1.0 / float64(len(padFreqs))

			// Very slow LFO, breathing.
			lfo := math.Sin(a.time*0.2 + float64(j))

			sampleL += oscL * g * (0.7 + 0.3*lfo)
			sampleR += oscR * g * (0.7 + 0.3*lfo)
		}

		var outL, outR float64
		outL, a.filterState[0] = lpf(sampleL, cutoff, dt, a.filterState[0])
		outR, a.filterState[1] = lpf(sampleR, cutoff, dt, a.filterState[1])

		delayL := a.delayLine[0][a.delayHead]
		delayR := a.delayLine[1][a.delayHead]

		// Feedback cross-talk smears the stereo image.
		mixL := outL + delayL*0.3 + delayR*0.1
		mixR := outR + delayR*0.3 + delayL*0.1

		a.delayLine[0][a.delayHead] = mixL * 0.7
		a.delayLine[1][a.delayHead] = mixR * 0.7

		a.delayHead = (a.delayHead + 1) % len(a.delayLine[0])

		out[0][i] = float32(mixL * vol)
		out[1][i] = float32(mixR * vol)

		a.time += dt
	}
}

// analyze runs an FFT over the left channel and buckets the magnitudes
// into bass, mid, and high levels.
func (a *Processor) analyze(out [][]float32) {
	n := len(out[0])
	if n > len(a.complexBuffer) {
		n = len(a.complexBuffer)
	}
	for i := 0; i < n; i++ {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		a.complexBuffer[i] = complex(float64(out[0][i])*window, 0)
	}
	spectrum := fft.FFT(a.complexBuffer[:n])

	bassSum, midSum, highSum := 0.0, 0.0, 0.0
	for i := 1; i < n/2; i++ {
		mag := cmplx.Abs(spectrum[i])
		freq := float64(i) * SampleRate / float64(n)
		switch {
		case freq < 250:
			bassSum += mag
		case freq < 2000:
			midSum += mag
		default:
			highSum += mag
		}
	}

	a.mu.Lock()
	a.bass = a.bass*0.9 + math.Min(bassSum/40.0, 1.0)*0.1
	a.mid = a.mid*0.9 + math.Min(midSum/40.0, 1.0)*0.1
	a.high = a.high*0.9 + math.Min(highSum/40.0, 1.0)*0.1
	a.mu.Unlock()
}
