package storage

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkoval/fluidlab/internal/fluid"
	"github.com/pkoval/fluidlab/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Steps: 2,
		Series: map[string][]float64{
			"kinetic_energy": {1.5, 1.2},
			"mean_density":   {1.0, 1.1},
		},
		Values: map[string]float64{
			"kinetic_energy": 1.2,
			"mean_density":   1.1,
		},
		Final: []fluid.Particle{
			{ID: 0, X: 100.5, Y: 200.25, VX: 0.5, VY: -0.25, Density: 1.4, Pressure: -0.12, Temperature: 20},
			{ID: 1, X: 310, Y: 180, VX: -0.1, VY: 0.9, Density: 1.6, Pressure: 0.2, Temperature: 20},
		},
	}
}

func testInfo() RunInfo {
	return RunInfo{
		Preset: "water",
		Seed:   42,
		Width:  800,
		Height: 600,
		Params: fluid.DefaultParams(),
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "fluid-") {
		t.Errorf("run id = %q, want fluid- prefix", runID)
	}

	info, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if info.Seed != 42 {
		t.Errorf("seed = %d, want 42", info.Seed)
	}
	if info.Preset != "water" {
		t.Errorf("preset = %q, want water", info.Preset)
	}
	if info.Steps != 2 {
		t.Errorf("steps = %d, want 2", info.Steps)
	}
	if info.Values["kinetic_energy"] != 1.2 {
		t.Errorf("kinetic_energy = %f, want 1.2", info.Values["kinetic_energy"])
	}
	if info.Params.Viscosity != fluid.DefaultParams().Viscosity {
		t.Errorf("viscosity = %g, want default", info.Params.Viscosity)
	}
}

func TestStoreSeriesRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	steps, series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(steps) != 2 || steps[0] != 1 || steps[1] != 2 {
		t.Errorf("steps = %v, want [1 2]", steps)
	}
	if len(series) != 2 {
		t.Fatalf("got %d series, want 2", len(series))
	}
	if math.Abs(series["kinetic_energy"][0]-1.5) > 1e-6 {
		t.Errorf("kinetic_energy[0] = %g, want 1.5", series["kinetic_energy"][0])
	}
	if math.Abs(series["mean_density"][1]-1.1) > 1e-6 {
		t.Errorf("mean_density[1] = %g, want 1.1", series["mean_density"][1])
	}
}

func TestStoreParticlesRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	particles, err := st.LoadParticles(runID)
	if err != nil {
		t.Fatalf("load particles failed: %v", err)
	}
	if len(particles) != 2 {
		t.Fatalf("got %d particles, want 2", len(particles))
	}

	p := particles[0]
	if p.ID != 0 {
		t.Errorf("id = %d, want 0", p.ID)
	}
	if math.Abs(p.X-100.5) > 1e-6 || math.Abs(p.Y-200.25) > 1e-6 {
		t.Errorf("position = (%g, %g), want (100.5, 200.25)", p.X, p.Y)
	}
	if math.Abs(p.Pressure+0.12) > 1e-6 {
		t.Errorf("pressure = %g, want -0.12", p.Pressure)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(testInfo(), testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testInfo(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(dir, runID)
	for _, name := range []string{"metadata.json", "series.csv", "particles.csv", "summary.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if _, err := st.Load("fluid-0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, _, err := st.LoadSeries("fluid-0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("series error = %v, want ErrNotFound", err)
	}
}

func TestSummarizeSeriesSorted(t *testing.T) {
	rows := SummarizeSeries(map[string][]float64{
		"max_speed":      {2.0, 3.0},
		"kinetic_energy": {1.0, 1.0},
	})
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Metric != "kinetic_energy" || rows[1].Metric != "max_speed" {
		t.Errorf("rows out of order: %q, %q", rows[0].Metric, rows[1].Metric)
	}
	if rows[1].Max != 3.0 || rows[1].Min != 2.0 {
		t.Errorf("max_speed range = [%g, %g], want [2, 3]", rows[1].Min, rows[1].Max)
	}
}
