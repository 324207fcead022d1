package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sphfluid/internal/config"
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/interaction"
	"github.com/san-kum/sphfluid/internal/particles"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	canvasCols      = 60
	canvasRows      = 24
	historyCapacity = 300
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
)

type TickMsg time.Time

// Model is the live fluid viewer: it steps the simulator on every tick and
// turns key presses into gestures at a 3D cursor.
type Model struct {
	title    string
	cfg      *config.Config
	sim      *fluid.Simulator
	snap     *particles.Snapshot
	canvas   *Canvas
	camera   *Camera
	theme    Theme
	cursor   r3.Vec
	running  bool
	showHelp bool
	energy   []float64
	gesture  string
	err      error
}

// NewModel wraps sim, which must have been built from cfg.
func NewModel(title string, cfg *config.Config, sim *fluid.Simulator) Model {
	bounds := sim.Params().Bounds
	snap := sim.State()
	return Model{
		title:   title,
		cfg:     cfg,
		sim:     sim,
		snap:    &snap,
		canvas:  NewCanvas(canvasCols, canvasRows),
		camera:  NewCamera(bounds),
		theme:   ThemeOcean,
		cursor:  r3.Scale(0.5, r3.Add(bounds.Min, bounds.Max)),
		running: true,
		energy:  make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	rate := m.cfg.Run.Rate
	if rate <= 0 {
		rate = config.DefaultRate
	}
	return tea.Tick(time.Duration(float64(time.Second)/rate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "left":
			m.moveCursor(r3.Vec{X: -1})
		case "right":
			m.moveCursor(r3.Vec{X: 1})
		case "up":
			m.moveCursor(r3.Vec{Y: 1})
		case "down":
			m.moveCursor(r3.Vec{Y: -1})
		case "w":
			m.moveCursor(r3.Vec{Z: -1})
		case "s":
			m.moveCursor(r3.Vec{Z: 1})
		case "a":
			m.gestureAt(interaction.Attract)
		case "e":
			m.gestureAt(interaction.Repel)
		case "p":
			m.gestureAt(interaction.Push)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "t":
			m.theme = m.theme.Next()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the simulator one time step. An error pauses the viewer.
func (m *Model) step() {
	if err := m.sim.Step(m.sim.Params().TimeStep); err != nil {
		m.err, m.running = err, false
		return
	}
	m.sim.SnapshotInto(m.snap)
	m.energy = append(m.energy, m.snap.KineticEnergy(m.sim.Params().ParticleMass))
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

func (m *Model) reset() {
	m.sim.Reset()
	m.sim.SnapshotInto(m.snap)
	m.energy = m.energy[:0]
	m.gesture, m.err = "", nil
}

func (m *Model) moveCursor(dir r3.Vec) {
	b := m.sim.Params().Bounds
	c := r3.Add(m.cursor, r3.Scale(m.cfg.Interaction.Radius, dir))
	m.cursor = r3.Vec{
		X: min(max(c.X, b.Min.X), b.Max.X),
		Y: min(max(c.Y, b.Min.Y), b.Max.Y),
		Z: min(max(c.Z, b.Min.Z), b.Max.Z),
	}
}

// gestureAt queues a gesture at the cursor. It acts on the next step.
func (m *Model) gestureAt(intent interaction.Intent) {
	g := interaction.Gesture{
		Intent:    intent,
		Position:  m.cursor,
		Direction: m.cfg.Interaction.Direction.Vec(),
	}.WithDefaults(m.cfg.Interaction.Radius, m.cfg.Interaction.Strength)
	if err := g.Apply(m.sim); err != nil {
		m.err = err
		return
	}
	m.gesture = intent.String()
}

// draw projects the container, the particles and the cursor.
func (m Model) draw() {
	m.canvas.Clear()
	w, h := m.canvas.Dots()
	for _, e := range boxEdges(m.sim.Params().Bounds) {
		x0, y0, _ := m.camera.Project(e[0], w, h)
		x1, y1, _ := m.camera.Project(e[1], w, h)
		m.canvas.Line(x0, y0, x1, y1, InkFrame)
	}
	rho0 := m.sim.Params().RestDensity
	for _, st := range m.snap.States {
		if x, y, ok := m.camera.Project(st.Position, w, h); ok {
			m.canvas.Plot(x, y, InkFluid, st.Density/rho0)
		}
	}
	if x, y, ok := m.camera.Project(m.cursor, w, h); ok {
		m.canvas.Line(x-2, y, x+2, y, InkCursor)
		m.canvas.Line(x, y-2, x, y+2, InkCursor)
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(m.theme.Warning).Render("ERROR")
	case m.running:
		return lipgloss.NewStyle().Foreground(m.theme.Primary).Render("RUNNING")
	default:
		return lipgloss.NewStyle().Foreground(m.theme.Muted).Render("PAUSED")
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render(m.theme.Shade))

	stats := m.sim.Stats()
	value := lipgloss.NewStyle().Foreground(m.theme.Text)
	row := func(label, v string) string { return labelStyle.Render(label) + value.Render(v) + "\n" }

	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true).MarginBottom(1).Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")
	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Foreground(m.theme.Primary).Render(chart) + "\n\n")
	}
	s.WriteString(row("Step", fmt.Sprintf("%d", stats.Step)))
	s.WriteString(row("Particles", fmt.Sprintf("%d", m.sim.Len())))
	s.WriteString(row("Clamped", fmt.Sprintf("%d", stats.Clamped)))
	s.WriteString(row("Candidates", fmt.Sprintf("%.1f", stats.MeanCandidates)))
	s.WriteString(row("Step time", stats.Elapsed.Round(time.Microsecond).String()))
	if n := len(m.energy); n > 0 {
		s.WriteString(row("Energy", fmt.Sprintf("%.4g", m.energy[n-1])))
	}
	s.WriteString(row("Cursor", fmt.Sprintf("%.2f %.2f %.2f", m.cursor.X, m.cursor.Y, m.cursor.Z)))
	if m.gesture != "" {
		s.WriteString(row("Gesture", m.gesture))
	}
	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Warning).Width(38).Render(m.err.Error()) + "\n")
	}
	s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).MarginTop(1).Render(
		"─────────────────────\nSP:Pause R:Reset Q:Quit\nA:Attract E:Repel P:Push\nT:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset to the layout      ║
║  Q        - Quit                     ║
║  Arrows   - Move cursor in x/y       ║
║  W/S      - Move cursor in z         ║
║  A        - Attract at cursor        ║
║  E        - Repel at cursor          ║
║  P        - Push at cursor           ║
║  +/-      - Zoom                     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run opens the live viewer on a simulator built from cfg.
func Run(title string, cfg *config.Config, sim *fluid.Simulator) error {
	_, err := tea.NewProgram(NewModel(title, cfg, sim), tea.WithAltScreen()).Run()
	return err
}
