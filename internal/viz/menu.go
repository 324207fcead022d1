package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"
	"github.com/san-kum/sphfluid/internal/config"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var presetInfo = map[string]string{
	"default":   "cube of water in a 2m box",
	"dam_break": "column released along one wall",
	"droplet":   "cube dropped onto the floor",
	"calm":      "viscous pool at rest",
	"zero_g":    "weightless blob",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// paramStep is the relative change of one left/right press on the config page.
const paramStep = 0.1

type menu struct {
	log           logr.Logger
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	paramNames    []string
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	live          Model
}

// NewMenu returns the preset picker. Picking a preset opens its parameters,
// and "s" starts the live viewer.
func NewMenu(log logr.Logger) tea.Model {
	return menu{
		log:        log,
		state:      stateMenu,
		presets:    append([]string{"default"}, config.ListPresets()...),
		paramNames: config.TunableParams(),
	}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(key)
		case stateConfig:
			return m.configKey(key)
		}
		if key.String() == "esc" {
			m.state = stateConfig
			return m, nil
		}
	}
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	return m, nil
}

func (m menu) menuKey(msg tea.KeyMsg) (menu, tea.Cmd) {
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
		if m.cfg == nil {
			m.cfg = config.DefaultConfig()
		}
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m menu) configKey(msg tea.KeyMsg) (menu, tea.Cmd) {
	name := m.paramNames[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			v, err := strconv.ParseFloat(m.editBuf, 64)
			if err == nil {
				err = m.cfg.SetParam(name, v)
			}
			m.err = err
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				m.editBuf += s
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
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		v, _ := m.cfg.Param(name)
		m.editing, m.editBuf = true, strconv.FormatFloat(v, 'g', -1, 64)
	case "left", "h":
		m.scale(name, 1-paramStep)
	case "right", "l":
		m.scale(name, 1+paramStep)
	case "s":
		return m.start()
	}
	return m, nil
}

func (m *menu) scale(name string, f float64) {
	v, _ := m.cfg.Param(name)
	m.err = m.cfg.SetParam(name, v*f)
}

func (m menu) start() (menu, tea.Cmd) {
	sim, err := m.cfg.NewSimulator(m.log)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live = NewModel(m.selected, m.cfg, sim)
	m.state, m.err = stateSim, nil
	return m, m.live.Init()
}

func (m menu) View() string {
	switch m.state {
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View() + "\n" + dim.Render("esc: back to parameters")
	}
	return m.viewMenu()
}

func (m menu) viewMenu() string {
	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render("SPH FLUID") + "\n\n")
	for i, name := range m.presets {
		line := fmt.Sprintf("%-10s %s", name, dim.Render(presetInfo[name]))
		if i == m.cursor {
			b.WriteString(magenta.Render("> ") + white.Render(line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n" + dim.Render("↑↓ select  enter open  q quit"))
	return b.String()
}

func (m menu) viewConfig() string {
	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render(strings.ToUpper(m.selected)) + "\n\n")
	b.WriteString(fmt.Sprintf("%-18s %d\n\n", "particles", m.cfg.Fluid.Particles))
	for i, name := range m.paramNames {
		v, _ := m.cfg.Param(name)
		val := strconv.FormatFloat(v, 'g', 6, 64)
		if i == m.paramCursor && m.editing {
			val = m.editBuf + "_"
		}
		line := fmt.Sprintf("%-18s %s", name, val)
		if i == m.paramCursor {
			b.WriteString(magenta.Render("> ") + white.Render(line) + "\n")
		} else {
			b.WriteString("  " + dim.Render(line) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n" + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dim.Render("↑↓ select  ←→ ±10%  enter edit  s start  esc back"))
	return b.String()
}

// RunMenu opens the preset picker in the alternate screen.
func RunMenu(log logr.Logger) error {
	_, err := tea.NewProgram(NewMenu(log), tea.WithAltScreen()).Run()
	return err
}
