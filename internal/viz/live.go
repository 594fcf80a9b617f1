package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/integrators"
	"github.com/san-kum/chladni/internal/metrics"
	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
	"github.com/san-kum/chladni/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 24
	historyCapacity = 300
	maxParticles    = 64000
	minParticles    = 250
	overlayLimit    = 0.08
	kForceNudge     = 0.05
)

type TickMsg time.Time

// LiveConfig is the starting point of an interactive session. A zero or
// invalid Aspect means the shape's default.
type LiveConfig struct {
	Shape     plate.Shape
	Aspect    plate.Aspect
	Particles int
	Mode      physics.Mode
	Params    dynamo.StepParams
	Seed      uint64
	Workers   int
	Theme     string
	FPS       int
}

// Model is the Bubble Tea model of the live viewer. Mode and step parameters
// survive across steps; changing the shape or particle count reseeds the
// collection.
type Model struct {
	stepper  *integrators.Euler
	engine   *sim.Engine
	residual *metrics.NodalResidual

	ps     dynamo.Particles
	shape  plate.Shape
	aspect plate.Aspect
	count  int
	mode   physics.Mode
	params dynamo.StepParams
	seed   uint64

	canvas   *Canvas
	overlay  []bool
	showMask bool
	theme    int
	running  bool
	showHelp bool
	tick     time.Duration

	steps   int
	history []float64
	lastErr error
}

func NewModel(cfg LiveConfig) Model {
	fps := cfg.FPS
	if fps <= 0 {
		fps = 30
	}
	aspect := cfg.Aspect
	if aspect == (plate.Aspect{}) || !aspect.Valid() {
		aspect = plate.DefaultAspect(cfg.Shape)
	}
	m := Model{
		stepper: integrators.NewParallelEuler(cfg.Workers),
		shape:   cfg.Shape,
		aspect:  aspect,
		count:   cfg.Particles,
		mode:    cfg.Mode,
		params:  cfg.Params,
		seed:    cfg.Seed,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		theme:   ThemeIndex(cfg.Theme),
		running: true,
		tick:    time.Second / time.Duration(fps),
		history: make([]float64, 0, historyCapacity),
	}
	m.reseed()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.nextTick()
}

func (m Model) nextTick() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg.String())
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.nextTick()
	}
	return m, nil
}

func (m *Model) handleKey(key string) {
	switch key {
	case " ", "space":
		m.running = !m.running
	case "r":
		m.seed++
		m.reseed()
	case "s":
		shapes := plate.Shapes()
		m.shape = shapes[(int(m.shape)+1)%len(shapes)]
		m.aspect = plate.DefaultAspect(m.shape)
		m.reseed()
	case "+", "=":
		m.count = min(maxParticles, max(minParticles, m.count*2))
		m.reseed()
	case "-", "_":
		m.count = max(minParticles, m.count/2)
		m.reseed()
	case "n":
		m.setMode(func(md *physics.Mode) { md.N++ })
	case "N":
		m.setMode(func(md *physics.Mode) { md.N = math.Max(1, md.N-1) })
	case "m":
		m.setMode(func(md *physics.Mode) { md.M++ })
	case "M":
		m.setMode(func(md *physics.Mode) { md.M = math.Max(1, md.M-1) })
	case "a":
		m.setMode(func(md *physics.Mode) { md.A += 0.1 })
	case "A":
		m.setMode(func(md *physics.Mode) { md.A -= 0.1 })
	case "b":
		m.setMode(func(md *physics.Mode) { md.B += 0.1 })
	case "B":
		m.setMode(func(md *physics.Mode) { md.B -= 0.1 })
	case "k":
		if m.params.KForce < kForceNudge {
			m.params.KForce += kForceNudge
		} else {
			m.params.KForce *= 1.25
		}
	case "K":
		m.params.KForce /= 1.25
	case "j":
		m.params.Jitter += 0.01
	case "J":
		m.params.Jitter = math.Max(0, m.params.Jitter-0.01)
	case "p":
		m.showMask = !m.showMask
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
	case "?":
		m.showHelp = !m.showHelp
	}
}

func (m *Model) setMode(fn func(*physics.Mode)) {
	fn(&m.mode)
	m.residual = metrics.NewNodalResidual(m.mode, m.aspect)
	m.overlay = nil
	m.history = m.history[:0]
}

// reseed replaces the collection; particle identity does not survive a
// shape or count change.
func (m *Model) reseed() {
	m.engine = sim.NewEngineWith(dynamo.NewJitter(m.seed), m.stepper)
	ps := dynamo.Particles{}
	flat, err := m.engine.InitParticles(m.count, m.shape, m.aspect.X, m.aspect.Y)
	if err == nil {
		ps, err = dynamo.FromFlat(flat)
	}
	if err != nil {
		m.lastErr = err
		ps = dynamo.Particles{}
	}
	m.ps = ps
	m.steps = 0
	m.overlay = nil
	m.residual = metrics.NewNodalResidual(m.mode, m.aspect)
	m.history = m.history[:0]
}

// step hands the whole collection to the engine and keeps what comes back.
func (m *Model) step() {
	md, pr := m.mode, m.params
	flat, err := m.engine.UpdateParticles(m.ps.Flatten(), md.N, md.M, md.A, md.B, pr.Dt, pr.KForce, m.shape, m.aspect.X, m.aspect.Y, pr.Jitter)
	if err != nil {
		m.lastErr = err
		m.running = false
		return
	}
	next, err := dynamo.FromFlat(flat)
	if err != nil {
		m.lastErr = err
		m.running = false
		return
	}
	m.residual.Observe(m.ps, next)
	m.ps = next
	m.steps++

	m.history = append(m.history, m.residual.Value())
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// viewport is the sub-pixel rectangle the plate occupies on the canvas,
// sized to keep the plate's aspect.
func (m *Model) viewport() (x0, y0, w, h int) {
	cw, ch := m.canvas.Dots()
	sx, sy := math.Max(m.aspect.X, 1e-3), math.Max(m.aspect.Y, 1e-3)
	scale := math.Min(float64(cw)/(2*sx), float64(ch)/(2*sy))
	w = max(1, int(2*sx*scale))
	h = max(1, int(2*sy*scale))
	return (cw - w) / 2, (ch - h) / 2, w, h
}

// toDots maps a plate position to canvas sub-pixels.
func (m *Model) toDots(p dynamo.Particle) (int, int) {
	x0, y0, w, h := m.viewport()
	u, v := 0.0, 0.0
	if m.aspect.X != 0 {
		u = p.X / m.aspect.X
	}
	if m.aspect.Y != 0 {
		v = p.Y / m.aspect.Y
	}
	col := x0 + int((u+1)/2*float64(w-1)+0.5)
	row := y0 + int((1-v)/2*float64(h-1)+0.5)
	return col, row
}

// nodalOverlay caches which viewport dots sit on a nodal line inside the
// plate.
func (m *Model) nodalOverlay() []bool {
	if m.overlay != nil {
		return m.overlay
	}
	_, _, w, h := m.viewport()
	mask, err := physics.NodalMask(w, h, m.mode, overlayLimit)
	if err != nil {
		m.lastErr = err
		return nil
	}
	unit := plate.Aspect{X: 1, Y: 1}
	physics.Sample(w, h, func(i, j int, x, y float64) {
		if !plate.Contains(m.shape, dynamo.Particle{X: x, Y: y}, unit) {
			mask[j*w+i] = false
		}
	})
	m.overlay = mask
	return mask
}

func (m *Model) drawOutline() {
	const segments = 48
	var prevX, prevY int
	for k := 0; k <= segments; k++ {
		p := boundaryPoint(m.shape, m.aspect, float64(k)/segments)
		x, y := m.toDots(p)
		if k > 0 {
			m.canvas.DrawLine(prevX, prevY, x, y)
		}
		prevX, prevY = x, y
	}
}

// boundaryPoint walks the plate edge; t in [0,1] goes once around.
func boundaryPoint(s plate.Shape, a plate.Aspect, t float64) dynamo.Particle {
	angle := 2 * math.Pi * t
	switch s {
	case plate.Circle:
		return dynamo.Particle{X: a.X * math.Cos(angle), Y: a.Y * math.Sin(angle)}
	case plate.Hexagon:
		k := int(t * 6)
		if k >= 6 {
			k = 5
		}
		f := t*6 - float64(k)
		a0, a1 := float64(k)*math.Pi/3, float64(k+1)*math.Pi/3
		u := (1-f)*math.Cos(a0) + f*math.Cos(a1)
		v := (1-f)*math.Sin(a0) + f*math.Sin(a1)
		return dynamo.Particle{X: a.X * u, Y: a.Y * v}
	default:
		u, v := math.Cos(angle), math.Sin(angle)
		r := 1 / math.Max(math.Abs(u), math.Abs(v))
		return dynamo.Particle{X: a.X * u * r, Y: a.Y * v * r}
	}
}

func (m *Model) draw() (sand, pattern string) {
	m.canvas.Clear()
	if m.showMask {
		x0, y0, w, _ := m.viewport()
		for idx, on := range m.nodalOverlay() {
			if on {
				m.canvas.Set(x0+idx%w, y0+idx/w)
			}
		}
		pattern = m.canvas.String()
		m.canvas.Clear()
	}
	m.drawOutline()
	for _, p := range m.ps {
		m.canvas.Set(m.toDots(p))
	}
	return m.canvas.String(), pattern
}

// merge lays the sand layer over the pattern layer, cell by cell.
func merge(sand, pattern string, th Theme) string {
	sandStyle := lipgloss.NewStyle().Foreground(th.Sand)
	if pattern == "" {
		return sandStyle.Render(sand)
	}
	patStyle := lipgloss.NewStyle().Foreground(th.Pattern)

	sandLines := strings.Split(sand, "\n")
	patLines := strings.Split(pattern, "\n")
	var b strings.Builder
	for i, line := range sandLines {
		if i >= len(patLines) {
			b.WriteString(sandStyle.Render(line))
			continue
		}
		pr := []rune(patLines[i])
		for j, r := range []rune(line) {
			if r == brailleBlank && j < len(pr) && pr[j] != brailleBlank {
				b.WriteString(patStyle.Render(string(pr[j])))
				continue
			}
			b.WriteString(sandStyle.Render(string(r)))
		}
		if i < len(sandLines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) View() string {
	th := Themes[m.theme]
	sand, pattern := m.draw()
	canvasView := panelStyle.BorderForeground(th.Muted).Render(merge(sand, pattern, th))

	var s strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(th.Accent)
	s.WriteString(title.Render("CHLADNI · "+strings.ToUpper(m.shape.String())) + "\n")

	status := lipgloss.NewStyle().Bold(true).Foreground(th.Running).Render("RUNNING")
	if !m.running {
		status = lipgloss.NewStyle().Bold(true).Foreground(th.Paused).Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("step", fmt.Sprintf("%d", m.steps))
	row("particles", fmt.Sprintf("%d", len(m.ps)))
	row("n, m", fmt.Sprintf("%g, %g", m.mode.N, m.mode.M))
	row("a, b", fmt.Sprintf("%.2f, %.2f", m.mode.A, m.mode.B))
	row("k", fmt.Sprintf("%.3f", m.params.KForce))
	row("jitter", fmt.Sprintf("%.3f", m.params.Jitter))
	row("dt", fmt.Sprintf("%.3f", m.params.Dt))
	row("residual", fmt.Sprintf("%.4f", m.residual.Value()))

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("nodal residual"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		s.WriteString(SparklineChart(m.history, 28, lipgloss.NewStyle().Foreground(th.Accent)) + "\n")
	}
	if m.lastErr != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(th.Paused).Render(m.lastErr.Error()) + "\n")
	}

	s.WriteString("\n" + Separator(28, th.Muted) + "\n")
	help := lipgloss.NewStyle().Foreground(th.Muted)
	if m.showHelp {
		s.WriteString(help.Render(helpText))
	} else {
		s.WriteString(help.Render("SP:Pause R:Reseed Q:Quit ?:Help"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

const helpText = `n/N m/M  mode numbers
a/A b/B  amplitudes
k/K      force gain
j/J      jitter
s        next shape
+/-      particle count
p        nodal overlay
t        theme
space    pause
r        reseed
q        quit`

// Run starts the viewer in the alternate screen and blocks until it exits.
func Run(cfg LiveConfig) error {
	_, err := tea.NewProgram(NewModel(cfg), tea.WithAltScreen()).Run()
	return err
}
