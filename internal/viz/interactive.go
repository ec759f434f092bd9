package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/experiment"
)

var presetInfo = map[string]string{
	"break":   "racked triangle, cue ball struck",
	"scatter": "random layout, random headings",
	"crowded": "forty balls, frequent contacts",
	"single":  "one ball between two cushions",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	subStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// paramNames are the preset fields editable before a run.
var paramNames = []string{"balls", "speed", "seed", "dt"}

type model struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	liveModel     Model
}

func NewInteractiveApp() *model {
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				m.setParam(paramNames[m.paramCursor], val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", m.param(paramNames[m.paramCursor]))
	case "s":
		cmd := m.start()
		return m, cmd
	case "left", "h":
		m.nudge(paramNames[m.paramCursor], -1)
	case "right", "l":
		m.nudge(paramNames[m.paramCursor], 1)
	}
	return m, nil
}

func (m *model) param(name string) float64 {
	switch name {
	case "balls":
		return float64(m.cfg.Balls)
	case "speed":
		return m.cfg.Speed
	case "seed":
		return float64(m.cfg.Seed)
	case "dt":
		return m.cfg.Dt
	}
	return 0
}

func (m *model) setParam(name string, v float64) {
	switch name {
	case "balls":
		m.cfg.Balls = int(v)
	case "speed":
		m.cfg.Speed = v
	case "seed":
		m.cfg.Seed = int64(v)
	case "dt":
		m.cfg.Dt = v
	}
}

func (m *model) nudge(name string, dir float64) {
	switch name {
	case "balls", "seed":
		m.setParam(name, m.param(name)+dir)
	case "speed":
		m.setParam(name, m.param(name)+dir*0.5)
	case "dt":
		m.setParam(name, m.param(name)*(1+dir*0.1))
	}
}

func (m *model) start() tea.Cmd {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return nil
	}
	s, err := experiment.Build(m.cfg, experiment.NewRegistry(), m.cfg.Seed)
	if err != nil {
		m.err = err
		return nil
	}
	m.liveModel = NewModel(s, m.cfg.Dt, m.selected)
	m.state = stateSim
	return m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func title(name, sub string) string {
	return "\n\n    " + GradientText(name, "#00cccc", "#ff88ff") + "\n    " + subStyle.Render(sub) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n"
}

func keys(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString(title("POOLSIM", "billiard table simulator"))
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-10s", name)), descStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", name)), idleDescStyle.Render(desc)))
		}
	}
	b.WriteString(keys("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString(title(strings.ToUpper(m.selected), presetInfo[m.selected]))
	for i, name := range paramNames {
		valStr := fmt.Sprintf("%8.4g", m.param(name))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-10s", name)), descStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", name)), idleDescStyle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString(keys("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back"))
	return b.String()
}

// RunInteractive opens the preset picker and then the live view.
func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}
