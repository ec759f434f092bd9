package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/poolsim/internal/physics"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 600
	trailCapacity   = 120
)

// Snapshot stores state at a specific time for replay.
type Snapshot struct {
	State  *physics.State
	Energy float64
	Stats  physics.StepStats
}

var (
	statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle = lipgloss.NewStyle().Padding(1, 0)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model steps a table once per tick and draws it top-down, or in
// perspective when toggled.
type Model struct {
	state         *physics.State
	initial       *physics.State
	stepper       *physics.Stepper
	stats         physics.StepStats
	dt            float64
	width, height int
	canvas        *Canvas
	camera        *Camera
	perspective   bool
	trail         []mgl64.Vec3
	running       bool
	name          string
	energyHistory []float64
	history       []Snapshot
	playHead      int
	recording     bool
	frames        []*image.Paletted
	gifPath       string
	showHelp      bool
}

// NewModel takes ownership of a copy of s.
func NewModel(s *physics.State, dt float64, name string) Model {
	return Model{
		state:         s.Clone(),
		initial:       s.Clone(),
		stepper:       physics.NewStepper(len(s.Balls)),
		dt:            dt,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		camera:        NewCamera(),
		trail:         make([]mgl64.Vec3, 0, trailCapacity),
		running:       true,
		name:          name,
		energyHistory: make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
		gifPath:       "poolsim.gif",
	}
}

// WithGIFPath sets where the g key saves recordings.
func (m Model) WithGIFPath(path string) Model {
	m.gifPath = path
	return m
}

// RecordTo starts recording immediately and saves to path when the session
// ends, whether by g or by quitting.
func (m Model) RecordTo(path string) Model {
	m.gifPath = path
	m.recording = true
	m.frames = make([]*image.Paletted, 0)
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.saveGIF()
				m.recording = false
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
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
		case "t":
			NextTheme()
		case "m":
			m.perspective = !m.perspective
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		if m.recording {
			m.draw()
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// step advances the table by one frame and records it.
func (m *Model) step() {
	m.stepper.Advance(m.state, m.dt)
	m.stats = m.stepper.LastStats()

	energy := m.state.KineticEnergy()
	m.energyHistory = append(m.energyHistory, energy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}

	if len(m.state.Balls) > 0 {
		m.trail = append(m.trail, m.state.Balls[0].Position)
		if len(m.trail) > trailCapacity {
			m.trail = m.trail[1:]
		}
	}

	m.history = append(m.history, Snapshot{State: m.state.Clone(), Energy: energy, Stats: m.stats})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) > 0 {
			m.playHead = len(m.history) - 1
			m.running = false
		} else {
			return
		}
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the initial table.
func (m *Model) reset() {
	m.state = m.initial.Clone()
	m.stats = physics.StepStats{}
	m.trail = m.trail[:0]
	m.energyHistory = m.energyHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
}

// shown is the state on screen: the live one, or a replayed snapshot.
func (m *Model) shown() (*physics.State, physics.StepStats) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		snap := m.history[m.playHead]
		return snap.State, snap.Stats
	}
	return m.state, m.stats
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	s, stats := m.shown()

	canvasView := lipgloss.NewStyle().Padding(1, 2).Foreground(CurrentTheme.Ball).Render(m.canvas.String())

	var b strings.Builder
	header := lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true).MarginBottom(1)
	b.WriteString(header.Render(strings.ToUpper(m.name)) + "\n")

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.playHead != -1:
		last := m.history[len(m.history)-1].State.Time
		label := "REPLAY"
		if !m.running {
			label = "REPLAY PAUSED"
		}
		status = StatusPaused.Render(fmt.Sprintf("%s (%.1fs)", label, s.Time-last))
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += "  " + StatusRecording.Render("● REC")
	}
	b.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		b.WriteString(graphStyle.Foreground(CurrentTheme.Felt).Render(chart) + "\n\n")
	}

	inside := 0
	speeds := make([]float64, len(s.Balls))
	for i, ball := range s.Balls {
		speeds[i] = ball.Velocity.Len()
		if s.Table.Contains(ball.Position) {
			inside++
		}
	}

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", s.Time))
	row("Balls", fmt.Sprintf("%d", len(s.Balls)))
	row("Energy", fmt.Sprintf("%.2f", s.KineticEnergy()))
	row("Contacts", fmt.Sprintf("%d ball  %d wall", stats.BallContacts, stats.WallContacts))
	row("Overlaps", fmt.Sprintf("%d", s.Overlaps()))
	if len(s.Balls) > 0 {
		row("On table", ProgressBar(float64(inside)/float64(len(s.Balls)), 16))
	}
	row("Speeds", SparklineChart(speeds, 20))
	row("Theme", CurrentTheme.Name)

	b.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nT:Theme  G:Record ?:Help\n[ ]:Time-Travel M:3D"))
	statsView := statsStyle.Render(b.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		help := strings.Join([]string{
			"Space    pause / resume",
			"R        reset to the opening table",
			"[ ]      rewind / forward through history",
			"M        toggle perspective view",
			"x y      orbit camera (shift reverses)",
			"+ -      zoom",
			"G        start / stop GIF recording",
			"T        cycle themes",
			"?        toggle this help",
			"Q        quit",
		}, "\n")
		return BoxWithTitle("KEYS", help, 44) + "\n\n" + mainView
	}
	return mainView
}

// draw renders the shown state onto the canvas.
func (m *Model) draw() {
	s, _ := m.shown()
	m.canvas.Clear()
	if m.perspective {
		Render3D(m.canvas, TableWireframe(s), m.camera)
		return
	}
	DrawTable(m.canvas, s, m.trail)
}

func (m *Model) captureFrame() {
	charW, charH := 8, 16
	imgW, imgH := m.width*charW, m.height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	for y := 0; y < m.height*4; y++ {
		for x := 0; x < m.width*2; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
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
	f, err := os.Create(m.gifPath)
	if err != nil {
		return
	}
	defer f.Close()
	gif.EncodeAll(f, &anim)
}

// Run starts the live view on the alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
