package gui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pkoval/fluidlab/internal/fluid"
	"github.com/pkoval/fluidlab/internal/sim"
)

// drawPanel renders the tuning sidebar: one slider per parameter plus
// run control buttons. Any slider change respawns the bath under the
// new parameters.
func (a *App) drawPanel() {
	px := float32(panelX)
	py := float32(70)

	rl.DrawText("parameters", int32(px), int32(py), 20, rl.Gray)
	py += 35

	changed := false
	vals := a.Params.Map()
	for _, spec := range a.Specs {
		rl.DrawText(spec.Label, int32(px), int32(py), 14, rl.Gray)
		py += 18

		cur := vals[spec.Name]
		newVal := gui.SliderBar(
			rl.Rectangle{X: px, Y: py, Width: panelW - 100, Height: 20},
			formatValue(spec.Min, spec.Step), formatValue(spec.Max, spec.Step),
			float32(cur), float32(spec.Min), float32(spec.Max),
		)
		rl.DrawText(formatValue(cur, spec.Step), int32(px)+panelW-90, int32(py+2), 16, rl.DarkGray)

		// Snap to the step grid so float jitter from the slider does
		// not respawn the bath every frame.
		snapped := snapToStep(float64(newVal), spec)
		if math.Abs(snapped-cur) >= spec.Step/2 {
			if err := a.Params.Set(spec.Name, snapped); err == nil {
				changed = true
			}
		}
		py += 35
	}

	if changed {
		a.Runner.SetParams(a.Params)
		a.Params = a.Runner.Params()
		a.Preset = ""
		a.PresetIdx = -1
		a.Telemetry = a.Telemetry[:0]
	}

	rl.DrawLine(int32(px), int32(py), int32(px)+panelW-40, int32(py), ColBorder)
	py += 15

	pauseLabel := toggleText(a.Runner.State() == sim.Paused, "Resume", "Pause")
	if gui.Button(rl.Rectangle{X: px, Y: py, Width: 120, Height: 30}, pauseLabel) {
		a.Runner.Toggle()
	}
	if gui.Button(rl.Rectangle{X: px + 130, Y: py, Width: 120, Height: 30}, "Respawn") {
		a.Runner.Reinit()
		a.Telemetry = a.Telemetry[:0]
	}
	py += 45

	presetLabel := "Preset: none"
	if a.Preset != "" {
		presetLabel = "Preset: " + a.Preset
	}
	if gui.Button(rl.Rectangle{X: px, Y: py, Width: 120, Height: 30}, presetLabel) {
		a.cyclePreset()
	}
	audioLabel := toggleText(a.AudioOn, "Audio: on", "Audio: off")
	if gui.Button(rl.Rectangle{X: px + 130, Y: py, Width: 120, Height: 30}, audioLabel) {
		a.toggleAudio()
	}
}

// snapToStep quantizes a raw slider value onto the parameter's grid.
func snapToStep(v float64, spec fluid.ParamSpec) float64 {
	steps := math.Round((v - spec.Min) / spec.Step)
	snapped := spec.Min + steps*spec.Step
	return math.Min(spec.Max, math.Max(spec.Min, snapped))
}

func formatValue(v, step float64) string {
	if step >= 1 {
		return fmt.Sprintf("%.0f", v)
	}
	if step >= 0.01 {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.3f", v)
}

func toggleText(cond bool, on, off string) string {
	if cond {
		return on
	}
	return off
}
