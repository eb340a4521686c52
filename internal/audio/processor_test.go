package audio

import (
	"math"
	"testing"
)

func TestTriangle(t *testing.T) {
	cases := []struct {
		phase float64
		want  float64
	}{
		{0, 1},
		{0.25, 0},
		{0.5, -1},
		{0.75, 0},
		{1.0, 1},
		{2.25, 0},
	}
	for _, c := range cases {
		got := triangle(c.phase)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("triangle(%v) = %v, want %v", c.phase, got, c.want)
		}
	}
}

func TestLowPassConverges(t *testing.T) {
	dt := 1.0 / float64(SampleRate)
	state := 0.0
	var out float64
	for i := 0; i < 2000; i++ {
		out, state = lpf(1.0, 1000, dt, state)
	}
	if math.Abs(out-1.0) > 0.01 {
		t.Errorf("filter output %v, want near 1.0", out)
	}
}

func TestLowPassCutoffOrdering(t *testing.T) {
	dt := 1.0 / float64(SampleRate)
	slow, fast := 0.0, 0.0
	for i := 0; i < 10; i++ {
		_, slow = lpf(1.0, 100, dt, slow)
		_, fast = lpf(1.0, 5000, dt, fast)
	}
	if slow >= fast {
		t.Errorf("low cutoff should lag high cutoff: %v >= %v", slow, fast)
	}
}

func TestRenderProducesBoundedSignal(t *testing.T) {
	p := NewProcessor()
	p.UpdateFlow(150, 0.5)

	out := [][]float32{make([]float32, BufferSize), make([]float32, BufferSize)}
	for i := 0; i < 5; i++ {
		p.render(out)
	}

	peak := 0.0
	for ch := 0; ch < 2; ch++ {
		for _, s := range out[ch] {
			v := float64(s)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("non-finite sample %v", v)
			}
			if math.Abs(v) > peak {
				peak = math.Abs(v)
			}
		}
	}
	if peak <= 0.001 {
		t.Errorf("pad is silent, peak %v", peak)
	}
	if peak > 1.0 {
		t.Errorf("pad clips, peak %v", peak)
	}
}

func TestUpdateFlowSmoothsSlowly(t *testing.T) {
	p := NewProcessor()
	p.UpdateFlow(200, 0)

	out := [][]float32{make([]float32, 64), make([]float32, 64)}
	p.render(out)
	first := p.energySmooth

	for i := 0; i < 99; i++ {
		p.render(out)
	}
	later := p.energySmooth

	if first <= 0 || first >= 200 {
		t.Errorf("first smoothed energy %v, want between 0 and 200", first)
	}
	if later <= first {
		t.Errorf("smoothed energy did not rise: first %v, later %v", first, later)
	}
	if later >= 200 {
		t.Errorf("smoothed energy overshot: %v", later)
	}
}

func TestAnalyzeLevels(t *testing.T) {
	p := NewProcessor()
	p.UpdateFlow(100, 0.2)

	out := [][]float32{make([]float32, BufferSize), make([]float32, BufferSize)}
	for i := 0; i < 6; i++ {
		p.render(out)
		p.analyze(out)
	}

	bass, mid, high := p.Levels()
	for name, v := range map[string]float64{"bass": bass, "mid": mid, "high": high} {
		if v < 0 || v > 1 {
			t.Errorf("%s level %v outside [0, 1]", name, v)
		}
	}
	if bass == 0 {
		t.Error("bass level should be nonzero after rendering")
	}
	if bass <= high {
		t.Errorf("low pad should carry more bass than high: bass %v, high %v", bass, high)
	}
}
