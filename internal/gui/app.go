// Package gui is the raylib frontend: the particle bath at interactive
// rates, a slider panel for every tunable, and an optional audio pad
// driven by the flow.
package gui

import (
	"fmt"
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pkoval/fluidlab/internal/audio"
	"github.com/pkoval/fluidlab/internal/config"
	"github.com/pkoval/fluidlab/internal/fluid"
	"github.com/pkoval/fluidlab/internal/sim"
)

// Window layout. The bath is drawn inside a fixed viewport with the
// control panel to its right.
const (
	windowWidth  = 1280
	windowHeight = 720

	viewX = 40
	viewY = 60
	viewW = 800
	viewH = 600

	panelX = 880
	panelW = 380
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)    // Deep Black
	ColAccent  = rl.NewColor(180, 180, 180, 255) // Soft White
	ColSelect  = rl.NewColor(255, 255, 255, 255) // Bright White
	ColText    = rl.NewColor(140, 140, 140, 255) // Neutral Gray
	ColTextDim = rl.NewColor(60, 60, 60, 255)    // Dark Gray (Subtle)
	ColBorder  = rl.NewColor(30, 30, 30, 255)    // Barely visible border
	ColWarn    = rl.NewColor(220, 160, 60, 255)
)

// Particle color sources, cycled with M.
const (
	ColorByDensity = iota
	ColorBySpeed
	ColorByTemperature
	numColorModes
)

var colorModeNames = [numColorModes]string{"density", "speed", "temperature"}

type App struct {
	Runner *sim.Runner
	Audio  *audio.Processor
	Font   rl.Font

	Specs     []fluid.ParamSpec
	Params    fluid.Params
	Presets   []string
	PresetIdx int
	Preset    string

	ShowPanel bool
	ColorMode int
	AudioOn   bool

	Telemetry    []float64
	maxTelemetry int

	pointer fluid.Pointer
	quit    bool
}

func initWindow() {
	rl.InitWindow(windowWidth, windowHeight, "fluidlab")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// loadFont loads Liberation Mono from the system path, falling back to
// raylib's built-in font when the file is missing.
func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	if font.Texture.ID == 0 {
		return rl.GetFontDefault()
	}
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp wraps an already configured runner. The window must exist
// before this is called, fonts cannot load without it.
func NewApp(runner *sim.Runner, audioOn bool) *App {
	app := &App{
		Runner:       runner,
		Audio:        audio.NewProcessor(),
		Font:         loadFont(),
		Specs:        fluid.Specs(),
		Params:       runner.Params(),
		Presets:      config.ListPresets(),
		PresetIdx:    -1,
		ShowPanel:    true,
		Telemetry:    make([]float64, 0, 200),
		maxTelemetry: 200,
	}
	if audioOn {
		app.startAudio()
	}
	return app
}

// Run opens the window and blocks until the user quits.
func Run(runner *sim.Runner, audioOn bool) {
	initWindow()
	defer rl.CloseWindow()

	app := NewApp(runner, audioOn)
	defer app.Audio.Stop()

	app.RunLoop()
}

func (a *App) RunLoop() {
	for !a.quit && !rl.WindowShouldClose() {
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeyQ) {
		a.quit = true
		return
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Runner.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.Runner.Reinit()
		a.Telemetry = a.Telemetry[:0]
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		a.ShowPanel = !a.ShowPanel
	}
	if rl.IsKeyPressed(rl.KeyM) {
		a.ColorMode = (a.ColorMode + 1) % numColorModes
	}
	if rl.IsKeyPressed(rl.KeyP) {
		a.cyclePreset()
	}
	if rl.IsKeyPressed(rl.KeyA) {
		a.toggleAudio()
	}

	a.updatePointer()
	a.Runner.Tick()

	vals := a.Runner.MetricValues()
	a.Telemetry = append(a.Telemetry, vals["energy"])
	if len(a.Telemetry) > a.maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}

	// Sonification: energy opens the filter, spread widens the detune.
	if a.AudioOn {
		a.Audio.UpdateFlow(vals["energy"], vals["density_spread"])
	}
}

// updatePointer maps the mouse onto the bath. Left drag attracts,
// right drag repels. Forwarded every frame so a drag tracks motion.
func (a *App) updatePointer() {
	width, height := a.Runner.Size()
	sx := float64(viewW) / width
	sy := float64(viewH) / height

	pos := rl.GetMousePosition()
	left := rl.IsMouseButtonDown(rl.MouseLeftButton)
	right := rl.IsMouseButtonDown(rl.MouseRightButton)

	ptr := fluid.Pointer{}
	if left || right {
		ptr = fluid.Pointer{
			X:      (float64(pos.X) - viewX) / sx,
			Y:      (float64(pos.Y) - viewY) / sy,
			Active: true,
			Repel:  right,
		}
	}
	a.pointer = ptr
	a.Runner.SetPointer(ptr)
}

func (a *App) cyclePreset() {
	if len(a.Presets) == 0 {
		return
	}
	a.PresetIdx = (a.PresetIdx + 1) % len(a.Presets)
	a.applyPreset(a.Presets[a.PresetIdx])
}

func (a *App) applyPreset(name string) {
	p, ok := config.GetPreset(name)
	if !ok {
		return
	}
	a.Params = p
	a.Preset = name
	a.Runner.SetParams(p)
	a.Telemetry = a.Telemetry[:0]
}

func (a *App) startAudio() {
	if err := a.Audio.Start(); err != nil {
		slog.Warn("audio unavailable", "err", err)
		return
	}
	a.AudioOn = true
}

func (a *App) toggleAudio() {
	if a.AudioOn {
		a.Audio.Stop()
		a.AudioOn = false
		return
	}
	a.startAudio()
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawBath()
	if a.ShowPanel {
		a.drawPanel()
	}
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) drawBath() {
	width, height := a.Runner.Size()
	sx := float64(viewW) / width
	sy := float64(viewH) / height

	rl.DrawRectangleLines(viewX-1, viewY-1, viewW+2, viewH+2, ColBorder)

	params := a.Runner.Params()
	snap := a.Runner.Snapshot()
	for _, p := range snap {
		pos := rl.NewVector2(float32(viewX+p.X*sx), float32(viewY+p.Y*sy))
		rl.DrawCircleV(pos, 3, a.particleColor(p, params))
	}
	a.Runner.Release(snap)

	// Interaction cursor: outer ring marks the pointer's reach.
	if a.pointer.Active {
		cx := int32(viewX + a.pointer.X*sx)
		cy := int32(viewY + a.pointer.Y*sy)
		col := rl.NewColor(255, 255, 255, 90)
		if a.pointer.Repel {
			col = rl.NewColor(255, 110, 110, 90)
		}
		rl.DrawCircleLines(cx, cy, float32(fluid.InteractionRadius*sx), col)
		rl.DrawCircleLines(cx, cy, 6, col)
	}
}

// particleColor maps one particle onto the blue-to-red ramp shared with
// the SVG export. Density centers on the rest value; speed and
// temperature ramp up from their floor.
func (a *App) particleColor(p fluid.Particle, params fluid.Params) rl.Color {
	var t float64
	switch a.ColorMode {
	case ColorBySpeed:
		t = p.Speed() / 3.0
	case ColorByTemperature:
		t = (p.Temperature - fluid.MinTemperature) / (fluid.MaxTemperature - fluid.MinTemperature)
	default:
		dev := (p.Density - params.RestDensity) / params.RestDensity
		t = (dev + 1) / 2
	}
	t = math.Max(0, math.Min(1, t))

	c := colorful.Hsv(240*(1-t), 0.85, 0.95)
	r, g, b := c.RGB255()
	return rl.NewColor(r, g, b, 255)
}

func (a *App) DrawHUD() {
	a.drawText("fluidlab", 30, 16, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: step %d", a.Runner.Step()), 160, 20, 16, ColText)
	if a.Preset != "" {
		a.drawText(fmt.Sprintf(":: %s", a.Preset), 300, 20, 16, ColText)
	}

	status := "RUNNING"
	col := ColSelect
	if a.Runner.State() == sim.Paused {
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, 1180, 16, 16, col)

	a.drawText("color: "+colorModeNames[a.ColorMode], 30, 42, 14, ColTextDim)
	if n := a.Runner.Anomalies(); n > 0 {
		a.drawText(fmt.Sprintf("skipped updates: %d", n), 1040, 42, 14, ColWarn)
	}

	a.DrawTelemetry()

	// Pad Level
	if a.AudioOn {
		bass, mid, high := a.Audio.Levels()
		sum := (bass + mid + high) / 3.0
		bars := int(sum * 20)
		if bars > 20 {
			bars = 20
		}
		barStr := ""
		for i := 0; i < bars; i++ {
			barStr += "|"
		}
		a.drawText(fmt.Sprintf("PAD [%-20s]", barStr), 200, 42, 14, ColAccent)
	}

	a.drawText("[SPACE] PAUSE  [R] RESPAWN  [TAB] PANEL  [M] COLOR  [P] PRESET  [A] AUDIO  [Q] QUIT", 30, 684, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 1180, 684, 14, ColTextDim)
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := panelX, 560
	width, height := panelW-40, 60

	// Normalize Data
	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	// Draw Line Strip
	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("E: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX, rectY+height+8, 14, ColText)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}
