package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"marker-tracker.klederson.com/internal/config"
	"marker-tracker.klederson.com/internal/scope"
	"marker-tracker.klederson.com/internal/tracker"
	"marker-tracker.klederson.com/internal/ui"
)

// Monitor is the read-only view of a tracking loop the UI polls.
type Monitor interface {
	State() tracker.State
	Stats() tracker.Stats
	Session() (tracker.Session, bool)
}

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	sweep   *scope.Sweep
	history *DistanceRing
	latest  tracker.Result
	err     error
}

// AppModel is the root Bubble Tea model for the terminal display.
type AppModel struct {
	width  int
	height int

	source  string
	monitor Monitor
	cancel  context.CancelCauseFunc

	shared *shared

	// Cached snapshot
	stats tracker.Stats
	state tracker.State
}

// New creates a model observing monitor. cancel stops the tracking loop
// when the user quits.
func New(source string, monitor Monitor, cancel context.CancelCauseFunc) AppModel {
	return AppModel{
		source:  source,
		monitor: monitor,
		cancel:  cancel,
		shared: &shared{
			sweep:   scope.NewSweep(),
			history: NewDistanceRing(config.HistoryLen),
		},
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		pollCmd(),
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.shared.sweep.Update()
		return m, tickCmd()

	case pollMsg:
		m.stats = m.monitor.Stats()
		m.state = m.monitor.State()
		return m, pollCmd()

	case ResultMsg:
		m.shared.latest = msg.Result
		if msg.Result.Found && !msg.Result.Indeterminate {
			m.shared.history.Push(msg.Result.DistanceCm)
		}
		return m, nil

	case LoopDoneMsg:
		m.shared.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "esc", "ctrl+c":
		m.cancel(tracker.ErrQuitRequested)
		return m, tea.Quit
	}
	return m, nil
}

// Latest returns the most recent result received from the loop.
func (m AppModel) Latest() tracker.Result {
	return m.shared.latest
}

// History returns the recent distance estimates, oldest first.
func (m AppModel) History() []float64 {
	return m.shared.history.Values()
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing Marker Tracker..."
	}
	sess, ok := m.monitor.Session()
	if !ok {
		return "Waiting for the first frame..."
	}

	menuH := 1
	statusH := 1
	bodyH := max(m.height-menuH-statusH, 5)

	scopeW := max(m.width*2/3, 30)
	detailW := m.width - scopeW
	if detailW < 24 {
		detailW = 24
		scopeW = m.width - detailW
	}

	r := m.shared.latest
	menuBar := ui.RenderMenuBar(m.width, m.source, sess.Payload, r.Found)

	innerW := max(scopeW-4, 5)
	innerH := max(bodyH-4, 3)
	scopeContent := scope.Render(innerW, innerH, scope.Scene{
		Geometry:  sess.Geometry,
		Tolerance: sess.Tolerance,
		Result:    r,
		Sweep:     m.shared.sweep,
	})
	legend := scope.RenderLegend(innerW)
	scopePanel := ui.RenderScopePanel(scopeW, bodyH, scopeContent, legend)

	var hist []float64
	if m.shared.history.Len() > 1 {
		hist = m.shared.history.Values()
	}
	detail := ui.RenderDetailPanel(r, sess.Geometry, detailW, bodyH, hist)

	statusBar := ui.RenderStatusBar(m.width, m.stats, m.state, sess.Geometry)

	return ui.ComposeLayout(menuBar, scopePanel, detail, statusBar)
}

type pollMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func pollCmd() tea.Cmd {
	return tea.Tick(config.StatsPollEvery, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}
