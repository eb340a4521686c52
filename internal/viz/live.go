package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/pkoval/fluidlab/internal/config"
	"github.com/pkoval/fluidlab/internal/fluid"
	"github.com/pkoval/fluidlab/internal/sim"
)

const (
	canvasWidth     = 80
	canvasHeight    = 30
	historyCapacity = 600
	maxGIFFrames    = 1800
)

type TickMsg time.Time

type styles struct {
	header lipgloss.Style
	stats  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	active lipgloss.Style
	muted  lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
	run    lipgloss.Style
	pause  lipgloss.Style
	alert  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		header: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		stats:  lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(0, 2).Width(46),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		active: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		muted:  lipgloss.NewStyle().Foreground(t.Muted),
		graph:  lipgloss.NewStyle().Foreground(t.Secondary),
		help:   lipgloss.NewStyle().Foreground(t.Muted),
		run:    lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		pause:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		alert:  lipgloss.NewStyle().Foreground(t.Error).Bold(true),
	}
}

// Model is the live terminal view over a shared runner. Input handlers
// write pointer and parameter changes; each frame ticks the runner once
// and redraws.
type Model struct {
	runner *sim.Runner
	canvas *Canvas
	theme  Theme
	sty    styles
	fps    int

	specs    []fluid.ParamSpec
	selected int

	presets   []string
	presetIdx int
	preset    string

	metricNames []string
	sparkIdx    int
	history     []float64

	pointer fluid.Pointer

	lastFrame time.Time
	measured  float64

	recording bool
	frames    []*image.Paletted

	showHelp bool
}

// NewModel builds the live view around an existing runner.
func NewModel(runner *sim.Runner, themeName string, fps int) Model {
	if fps <= 0 {
		fps = 60
	}
	theme := GetTheme(themeName)
	return Model{
		runner:    runner,
		canvas:    NewCanvas(canvasWidth, canvasHeight),
		theme:     theme,
		sty:       newStyles(theme),
		fps:       fps,
		specs:     fluid.Specs(),
		presets:   config.ListPresets(),
		presetIdx: -1,
		history:   make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case TickMsg:
		if m.runner.Tick() {
			m.observe()
		}
		now := time.Now()
		if !m.lastFrame.IsZero() {
			if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
				m.measured = 1.0 / dt
			}
		}
		m.lastFrame = now
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.runner.Toggle()
	case "r":
		m.runner.Reinit()
		m.history = m.history[:0]
	case "tab":
		m.selected = (m.selected + 1) % len(m.specs)
	case "up", "k":
		m.adjustParam(1)
	case "down", "j":
		m.adjustParam(-1)
	case "p":
		m.cyclePreset()
	case "t":
		m.cycleTheme()
	case "m":
		if len(m.metricNames) > 0 {
			m.sparkIdx = (m.sparkIdx + 1) % len(m.metricNames)
			m.history = m.history[:0]
		}
	case "g":
		if m.recording {
			m.saveGIF()
			m.recording = false
			m.frames = nil
		} else {
			m.recording = true
			m.frames = make([]*image.Paletted, 0)
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) adjustParam(dir float64) {
	spec := m.specs[m.selected]
	params := m.runner.Params()
	val := params.Map()[spec.Name] + dir*spec.Step
	if err := params.Set(spec.Name, val); err != nil {
		return
	}
	if m.runner.SetParams(params) {
		m.preset = ""
		m.history = m.history[:0]
	}
}

func (m *Model) cyclePreset() {
	if len(m.presets) == 0 {
		return
	}
	m.presetIdx = (m.presetIdx + 1) % len(m.presets)
	name := m.presets[m.presetIdx]
	if p, ok := config.GetPreset(name); ok {
		m.runner.SetParams(p)
		m.preset = name
		m.history = m.history[:0]
	}
}

func (m *Model) cycleTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == m.theme.Name {
			m.theme = GetTheme(names[(i+1)%len(names)])
			m.sty = newStyles(m.theme)
			return
		}
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress, tea.MouseActionMotion:
		if msg.Button != tea.MouseButtonLeft && msg.Button != tea.MouseButtonRight {
			return
		}
		x, y, ok := m.domainXY(msg.X, msg.Y)
		if !ok {
			return
		}
		m.pointer = fluid.Pointer{X: x, Y: y, Active: true, Repel: msg.Button == tea.MouseButtonRight}
		m.runner.SetPointer(m.pointer)
	case tea.MouseActionRelease:
		m.pointer = fluid.Pointer{}
		m.runner.SetPointer(m.pointer)
	}
}

// domainXY maps a terminal cell to domain coordinates. The canvas sits
// one row below the header line.
func (m *Model) domainXY(col, row int) (float64, float64, bool) {
	row--
	if col < 0 || col >= m.canvas.Width || row < 0 || row >= m.canvas.Height {
		return 0, 0, false
	}
	w, h := m.runner.Size()
	x := (float64(col) + 0.5) / float64(m.canvas.Width) * w
	y := (float64(row) + 0.5) / float64(m.canvas.Height) * h
	return x, y, true
}

func (m *Model) observe() {
	vals := m.runner.MetricValues()
	if len(m.metricNames) != len(vals) {
		m.metricNames = m.metricNames[:0]
		for name := range vals {
			m.metricNames = append(m.metricNames, name)
		}
		sort.Strings(m.metricNames)
	}
	if len(m.metricNames) == 0 {
		return
	}
	if m.sparkIdx >= len(m.metricNames) {
		m.sparkIdx = 0
	}
	m.history = append(m.history, vals[m.metricNames[m.sparkIdx]])
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	cw := m.canvas.Width * 2
	ch := m.canvas.Height * 4
	m.canvas.DrawBox(0, 0, cw-1, ch-1)

	w, h := m.runner.Size()
	sx := float64(cw) / w
	sy := float64(ch) / h

	ps := m.runner.Snapshot()
	for _, p := range ps {
		m.canvas.Set(int(p.X*sx), int(p.Y*sy))
	}
	m.runner.Release(ps)

	if m.pointer.Active {
		m.canvas.DrawCircle(int(m.pointer.X*sx), int(m.pointer.Y*sy), int(fluid.InteractionRadius*sx))
	}
}

// View renders the header, canvas, and stats panel.
func (m Model) View() string {
	status := m.sty.run.Render("● running")
	if m.runner.State() == sim.Paused {
		status = m.sty.pause.Render("○ paused")
	}
	rec := ""
	if m.recording {
		rec = "  " + m.sty.alert.Render("⦿ rec")
	}
	header := " " + m.sty.header.Render("fluidlab") + "  " + status + rec

	main := header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, m.canvas.String(), m.sty.stats.Render(m.statsView()))
	if m.showHelp {
		return helpOverlay + "\n" + main
	}
	return main
}

func (m Model) statsView() string {
	var s strings.Builder
	params := m.runner.Params()
	vals := params.Map()

	s.WriteString(m.sty.label.Render("step") + m.sty.value.Render(fmt.Sprintf("%d", m.runner.Step())) + "\n")
	s.WriteString(m.sty.label.Render("particles") + m.sty.value.Render(fmt.Sprintf("%d", params.ParticleCount)) + "\n")
	s.WriteString(m.sty.label.Render("fps") + m.sty.value.Render(fmt.Sprintf("%.0f", m.measured)) + "\n")
	if m.preset != "" {
		s.WriteString(m.sty.label.Render("preset") + m.sty.value.Render(m.preset) + "\n")
	}
	if n := m.runner.Anomalies(); n > 0 {
		s.WriteString(m.sty.label.Render("skipped") + m.sty.alert.Render(fmt.Sprintf("%d", n)) + "\n")
	}

	s.WriteString("\n" + m.sty.header.Render("PARAMETERS") + "\n")
	for i, spec := range m.specs {
		val := vals[spec.Name]
		barWidth := 10
		ratio := (val - spec.Min) / (spec.Max - spec.Min)
		if ratio > 1 {
			ratio = 1
		} else if ratio < 0 {
			ratio = 0
		}
		filled := int(ratio * float64(barWidth))
		bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"

		format := "%-12s %s %7.3f"
		if spec.Step >= 1 {
			format = "%-12s %s %7.0f"
		}
		line := fmt.Sprintf(format, spec.Label, bar, val)
		if i == m.selected {
			s.WriteString(m.sty.active.Render("▸ "+line) + "\n")
		} else {
			s.WriteString("  " + m.sty.muted.Render(line) + "\n")
		}
	}

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(4), asciigraph.Width(30),
			asciigraph.Caption(m.metricNames[m.sparkIdx]))
		s.WriteString("\n" + m.sty.graph.Render(chart) + "\n")
	}

	s.WriteString(m.sty.help.Render("\nspace pause  r respawn  tab/↑↓ tune\np preset  t theme  m metric  g gif\ndrag pull  right-drag push  ? help  q quit"))
	return s.String()
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space     - Pause/Resume            ║
║  R         - Respawn particles       ║
║  Tab       - Select parameter        ║
║  Up/Down   - Adjust parameter        ║
║  P         - Cycle presets           ║
║  T         - Cycle themes            ║
║  M         - Cycle metric chart      ║
║  G         - Toggle GIF recording    ║
║  Drag      - Pull fluid (right push) ║
║  ?         - Toggle this help        ║
║  Q         - Quit                    ║
╚══════════════════════════════════════╝
`

func (m *Model) captureFrame() {
	charW, charH := 8, 16
	imgW, imgH := m.canvas.Width*charW, m.canvas.Height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})
	for row := 0; row < m.canvas.Height; row++ {
		for col := 0; col < m.canvas.Width; col++ {
			r := m.canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			dotW, dotH := charW/2, charH/4
			baseX, baseY := col*charW, row*charH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, 1)
						}
					}
				}
			}
		}
	}
	m.frames = append(m.frames, img)

	// Recording stops itself at the frame cap.
	if len(m.frames) >= maxGIFFrames {
		m.saveGIF()
		m.recording = false
		m.frames = nil
	}
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create("fluid.gif")
	if err != nil {
		return
	}
	defer f.Close()
	gif.EncodeAll(f, &anim)
}

// RunLive runs the interactive terminal view until the user quits.
func RunLive(runner *sim.Runner, theme string, fps int) error {
	p := tea.NewProgram(NewModel(runner, theme, fps), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
