package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"marker-tracker.klederson.com/internal/calibration"
	"marker-tracker.klederson.com/internal/marker"
	"marker-tracker.klederson.com/internal/tracker"
	"marker-tracker.klederson.com/internal/zone"
)

type fakeMonitor struct {
	state   tracker.State
	stats   tracker.Stats
	session tracker.Session
	ready   bool
}

func (f *fakeMonitor) State() tracker.State { return f.state }
func (f *fakeMonitor) Stats() tracker.Stats { return f.stats }
func (f *fakeMonitor) Session() (tracker.Session, bool) {
	return f.session, f.ready
}

func newTestModel(t *testing.T) (AppModel, *fakeMonitor, context.Context) {
	t.Helper()
	g, err := tracker.NewGeometry(640, 480)
	if err != nil {
		t.Fatal(err)
	}
	model, err := calibration.New(100, 50, 5)
	if err != nil {
		t.Fatal(err)
	}
	mon := &fakeMonitor{
		state: tracker.StateRunning,
		session: tracker.Session{
			Geometry:    g,
			Calibration: model,
			Payload:     marker.DefaultPayload,
			Tolerance:   zone.DefaultTolerance,
		},
		ready: true,
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	t.Cleanup(func() { cancel(nil) })
	return New("demo", mon, cancel), mon, ctx
}

func foundResult(cm float64) tracker.Result {
	det := marker.Detection{
		Payload: marker.DefaultPayload,
		Box:     marker.Box{X: 400, Y: 100, W: 50, H: 50},
	}
	return tracker.Result{
		Seq:        7,
		Found:      true,
		Detection:  det,
		Centroid:   det.Box.Centroid(),
		Zone:       zone.ZoneI,
		DistanceCm: cm,
	}
}

func TestResultMsgRecordsDistance(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, _ := m.Update(ResultMsg{Result: foundResult(100)})
	next, _ = next.Update(ResultMsg{Result: tracker.Result{Seq: 8}})
	ind := foundResult(0)
	ind.Indeterminate = true
	next, _ = next.Update(ResultMsg{Result: ind})
	am := next.(AppModel)

	if got := am.History(); len(got) != 1 || got[0] != 100 {
		t.Errorf("history = %v, want [100]", got)
	}
	if !am.Latest().Found || !am.Latest().Indeterminate {
		t.Errorf("latest result not kept: %+v", am.Latest())
	}
}

func TestQuitKeyCancelsLoop(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	} {
		m, _, ctx := newTestModel(t)
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s: no command returned", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", key)
		}
		if !errors.Is(context.Cause(ctx), tracker.ErrQuitRequested) {
			t.Errorf("%s: cause = %v, want ErrQuitRequested", key, context.Cause(ctx))
		}
	}
}

func TestOtherKeysIgnored(t *testing.T) {
	m, _, ctx := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if cmd != nil {
		t.Errorf("unexpected command for unbound key")
	}
	if ctx.Err() != nil {
		t.Errorf("unbound key cancelled the loop")
	}
}

func TestLoopDoneQuits(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(LoopDoneMsg{Err: tracker.ErrSourceStalled})
	if cmd == nil {
		t.Fatal("no command returned")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
}

func TestPollRefreshesStats(t *testing.T) {
	m, mon, _ := newTestModel(t)
	mon.stats = tracker.Stats{Frames: 42}
	next, cmd := m.Update(pollMsg{})
	if cmd == nil {
		t.Errorf("poll did not reschedule")
	}
	if got := next.(AppModel).stats.Frames; got != 42 {
		t.Errorf("stats.Frames = %d, want 42", got)
	}
}

func TestView(t *testing.T) {
	m, mon, _ := newTestModel(t)
	if v := m.View(); !strings.Contains(v, "Initializing") {
		t.Errorf("view before size = %q", v)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	mon.ready = false
	if v := next.View(); !strings.Contains(v, "Waiting") {
		t.Errorf("view before session = %q", v)
	}

	mon.ready = true
	next, _ = next.Update(ResultMsg{Result: foundResult(100)})
	v := next.View()
	for _, want := range []string{"MARKER-TRACKER", "Zone I", "PHONE_TRACKER"} {
		if !strings.Contains(v, want) {
			t.Errorf("view lacks %q", want)
		}
	}
}

type recordingSender struct {
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) { r.msgs = append(r.msgs, msg) }

func TestPresenterForwardsResults(t *testing.T) {
	p := NewPresenter()
	p.Present(nil, tracker.Overlay{}, foundResult(10)) // dropped: not attached

	rec := &recordingSender{}
	p.program = rec
	p.Present(nil, tracker.Overlay{}, foundResult(50))
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if len(rec.msgs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(rec.msgs))
	}
	msg, ok := rec.msgs[0].(ResultMsg)
	if !ok || msg.Result.DistanceCm != 50 {
		t.Errorf("unexpected message %#v", rec.msgs[0])
	}
}

func TestLogPresenter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	p := NewLogPresenter(logger)

	p.Present(nil, tracker.Overlay{}, tracker.Result{Seq: 1})
	if buf.Len() != 0 {
		t.Errorf("not-found logged at info: %s", buf.String())
	}

	p.Present(nil, tracker.Overlay{}, foundResult(100))
	out := buf.String()
	for _, want := range []string{`"zone":"Zone I"`, `"distance_cm":100`, `"zone_changed":true`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line lacks %s: %s", want, out)
		}
	}

	buf.Reset()
	p.Present(nil, tracker.Overlay{}, foundResult(90))
	if strings.Contains(buf.String(), "zone_changed") {
		t.Errorf("zone_changed repeated for same zone")
	}
}

func TestDistanceRing(t *testing.T) {
	r := NewDistanceRing(3)
	if r.Values() != nil || r.Len() != 0 {
		t.Errorf("empty ring not empty")
	}
	for _, v := range []float64{1, 2, 3, 4} {
		r.Push(v)
	}
	got := r.Values()
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("values = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("values = %v, want %v", got, want)
		}
	}
	if r.Len() != 3 {
		t.Errorf("len = %d, want 3", r.Len())
	}
}
