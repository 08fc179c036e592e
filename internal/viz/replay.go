package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sdesim/internal/sde"
	"github.com/san-kum/sdesim/internal/stats"
)

const (
	graphWidth  = 70
	graphHeight = 14
	// maxSamples is how many individual realizations are overlaid.
	maxSamples = 3
	// frames is the number of ticks a replay at speed 1 takes.
	frames   = 240
	maxSpeed = 16
)

type TickMsg time.Time

// Replay walks a time cursor through a finished result.
type Replay struct {
	res      *sde.Result
	title    string
	moments  [][]stats.Moment
	coord    int
	cursor   int
	stride   int
	speed    int
	running  bool
	showHelp bool
	width    int
}

func NewReplay(res *sde.Result, title string) Replay {
	moments := make([][]stats.Moment, res.StateDim)
	for i := range moments {
		moments[i] = stats.Moments(res, i)
	}

	stride := res.Steps / frames
	if stride < 1 {
		stride = 1
	}

	return Replay{
		res:     res,
		title:   title,
		moments: moments,
		stride:  stride,
		speed:   1,
		running: true,
		width:   graphWidth,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Replay) Init() tea.Cmd {
	return tick()
}

func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
			if m.running && m.cursor == m.res.Steps {
				m.cursor = 0
			}
		case "left", "h":
			m.running = false
			m.seek(m.cursor - m.stride)
		case "right", "l":
			m.running = false
			m.seek(m.cursor + m.stride)
		case "home":
			m.seek(0)
		case "end":
			m.seek(m.res.Steps)
		case "+", "=":
			if m.speed < maxSpeed {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		case "tab":
			m.coord = (m.coord + 1) % m.res.StateDim
		case "r":
			m.cursor = 0
			m.running = true
		case "t":
			nextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width - 16
		if m.width < 20 {
			m.width = 20
		}
		if m.width > 2*graphWidth {
			m.width = 2 * graphWidth
		}
	case TickMsg:
		if m.running {
			m.seek(m.cursor + m.stride*m.speed)
			if m.cursor == m.res.Steps {
				m.running = false
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Replay) seek(k int) {
	if k < 0 {
		k = 0
	}
	if k > m.res.Steps {
		k = m.res.Steps
	}
	m.cursor = k
}

// Cursor is the current time index.
func (m Replay) Cursor() int { return m.cursor }

// Coord is the state coordinate being drawn.
func (m Replay) Coord() int { return m.coord }

// series returns the mean, the upper and lower band and the sample paths of
// the current coordinate over [0, cursor]. Non-finite values become gaps.
func (m Replay) series() [][]float64 {
	n := m.cursor + 1
	mean := make([]float64, n)
	upper := make([]float64, n)
	lower := make([]float64, n)
	for k, mo := range m.moments[m.coord][:n] {
		mean[k] = gap(mo.Mean)
		upper[k] = gap(mo.Mean + mo.Std())
		lower[k] = gap(mo.Mean - mo.Std())
	}

	out := [][]float64{mean, upper, lower}
	for r := 0; r < m.res.Realizations && r < maxSamples; r++ {
		path := make([]float64, n)
		for k := range path {
			path[k] = gap(m.res.Paths.At(r, k, m.coord))
		}
		out = append(out, path)
	}
	return out
}

func gap(v float64) float64 {
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func (m Replay) View() string {
	st := themed()
	var s strings.Builder

	s.WriteString(st.title.Render(strings.ToUpper(m.title)) + "\n\n")

	status := st.running.Render("PLAYING")
	if !m.running {
		status = st.paused.Render("PAUSED")
	}
	s.WriteString(fmt.Sprintf("%s  x%d  speed %dx\n", status, m.coord, m.speed))

	series := m.series()
	if m.cursor > 0 {
		chart := asciigraph.PlotMany(series,
			asciigraph.Height(graphHeight),
			asciigraph.Width(m.width),
			asciigraph.Caption(fmt.Sprintf("x%d: mean ±1 std, %d sample paths", m.coord, len(series)-3)),
			asciigraph.SeriesColors(
				asciigraph.Red,
				asciigraph.Yellow,
				asciigraph.Yellow,
				asciigraph.Gray,
				asciigraph.Gray,
				asciigraph.Gray,
			),
		)
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	mo := m.moments[m.coord][m.cursor]
	progress := float64(m.cursor) / float64(m.res.Steps)
	s.WriteString(st.label.Render("Time") + st.value.Render(fmt.Sprintf("%.4g / %.4g", m.res.Times[m.cursor], m.res.Times[m.res.Steps])) + "\n")
	s.WriteString(st.label.Render("Progress") + ProgressBar(progress, 30) + "\n")
	s.WriteString(st.label.Render("Mean") + st.value.Render(fmt.Sprintf("%.6g", mo.Mean)) + "\n")
	s.WriteString(st.label.Render("Std") + st.value.Render(fmt.Sprintf("%.6g", mo.Std())) + "\n")
	s.WriteString(st.label.Render("Realizations") + st.value.Render(fmt.Sprintf("%d", m.res.Realizations)) + "\n")
	s.WriteString(st.label.Render("Mean path") + SparklineChart(series[0], 30) + "\n")
	for _, w := range m.res.Warnings {
		if w.Step <= m.cursor {
			s.WriteString(st.warning.Render(fmt.Sprintf("non-finite %s at step %d (t=%.4g)", w.Func, w.Step, w.Time)) + "\n")
		}
	}

	s.WriteString("\n" + st.keyHint.Render("SP:Pause ←→:Scrub +/-:Speed TAB:Coord R:Restart T:Theme ?:Help Q:Quit"))

	view := st.panel.Render(s.String())
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, st.panel.Render(helpText), view)
	}
	return view
}

const helpText = `KEYBOARD SHORTCUTS

  Space    - Pause/Resume replay
  ← / h    - Step back
  → / l    - Step forward
  Home/End - Jump to start/end
  + / -    - Faster / slower
  Tab      - Next coordinate
  R        - Restart
  T        - Cycle themes
  ?        - Toggle this help
  Q        - Quit`
