package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"marker-tracker.klederson.com/internal/calibration"
	"marker-tracker.klederson.com/internal/marker"
)

// State is a tracking loop lifecycle phase.
type State int32

const (
	StateInitializing State = iota
	StateRunning
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Settings are the startup values the loop needs to build its Session.
type Settings struct {
	Payload          string
	Tolerance        int
	MarkerWidthCm    float64
	KnownDistanceCm  float64
	ReferenceWidthPx float64
	Retry            RetryPolicy
}

// Loop drives frames from a Source through a Decoder and hands each
// Result to a Presenter.
type Loop struct {
	source    Source
	decoder   Decoder
	presenter Presenter
	settings  Settings
	logger    *slog.Logger

	state    atomic.Int32
	counters counters
	seq      uint64
	session  Session
	ready    atomic.Bool

	releaseOnce sync.Once
}

// New creates a loop. Nothing is opened until Run.
func New(src Source, dec Decoder, pres Presenter, settings Settings, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		source:    src,
		decoder:   dec,
		presenter: pres,
		settings:  settings,
		logger:    logger,
	}
}

// State returns the current lifecycle phase.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Stats returns a snapshot of the loop counters. Safe for concurrent use.
func (l *Loop) Stats() Stats {
	return l.counters.snapshot()
}

// Session returns the session built during initialization. ok is false
// until initialization has completed.
func (l *Loop) Session() (s Session, ok bool) {
	if !l.ready.Load() {
		return Session{}, false
	}
	return l.session, true
}

// Run initializes the session and processes frames until ctx is cancelled
// or a fatal error occurs. Cancellation is a normal exit and returns nil.
// Once the source has been opened, it and the presenter are released
// exactly once on every return path.
func (l *Loop) Run(ctx context.Context) (err error) {
	l.setState(StateInitializing)
	defer l.setState(StateTerminated)

	if err := l.source.Open(); err != nil {
		l.logger.Error("tracker: cannot open frame source", "error", err)
		l.closePresenter()
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer l.shutdown()

	s, err := l.initialize()
	if err != nil {
		return err
	}
	l.session = s
	l.ready.Store(true)
	l.logger.Info("tracker: running",
		"width", s.Geometry.Width,
		"height", s.Geometry.Height,
		"focal_length", s.Calibration.FocalLength,
		"payload", s.Payload,
		"tolerance", s.Tolerance,
	)

	l.setState(StateRunning)
	for {
		if err := l.iterate(ctx, s); err != nil {
			return err
		}
		if ctx.Err() != nil {
			l.logger.Info("tracker: cancellation requested", "reason", context.Cause(ctx))
			return nil
		}
	}
}

func (l *Loop) initialize() (Session, error) {
	f, err := l.source.Read()
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrNoInitialFrame, err)
	}
	if f == nil {
		return Session{}, ErrNoInitialFrame
	}
	g, err := NewGeometry(f.Width(), f.Height())
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrNoInitialFrame, err)
	}
	l.counters.update(func(s *Stats) { s.Frames++ })

	st := l.settings
	model, err := calibration.New(st.ReferenceWidthPx, st.KnownDistanceCm, st.MarkerWidthCm)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Geometry:    g,
		Calibration: model,
		Payload:     st.Payload,
		Tolerance:   st.Tolerance,
	}, nil
}

// iterate processes one frame. Only a fatal condition is returned.
func (l *Loop) iterate(ctx context.Context, s Session) error {
	f, err := l.source.Read()
	if err == nil && f == nil {
		err = ErrNoFrame
	}
	if err != nil {
		return l.softFailure(ctx, err)
	}

	l.counters.update(func(st *Stats) {
		st.Frames++
		st.ConsecutiveFailures = 0
	})

	res := l.process(s, f)
	l.presenter.Present(f, s.Overlay(), res)
	return nil
}

func (l *Loop) softFailure(ctx context.Context, err error) error {
	var n int
	l.counters.update(func(st *Stats) {
		st.SoftFailures++
		st.ConsecutiveFailures++
		n = st.ConsecutiveFailures
	})
	l.logger.Warn("tracker: frame skipped", "error", err, "consecutive", n)

	p := l.settings.Retry
	if p.Exhausted(n) {
		l.logger.Error("tracker: giving up on frame source", "consecutive", n, "max", p.MaxConsecutive)
		return fmt.Errorf("%w: %d consecutive read failures", ErrSourceStalled, n)
	}
	wait(ctx, p.Backoff(n))
	return nil
}

func (l *Loop) process(s Session, f Frame) Result {
	l.seq++
	cands := l.decode(f)
	det, sel, ok := marker.Select(cands, s.Payload, l.logger)

	var res Result
	if ok {
		res = s.Locate(det)
	}
	res.Seq = l.seq

	l.counters.update(func(st *Stats) {
		st.SkippedCandidates += uint64(sel.Skipped)
		if ok {
			st.Found++
		} else {
			st.NotFound++
		}
	})
	return res
}

// decode runs the decoder, treating a panic as zero candidates.
func (l *Loop) decode(f Frame) (cands []marker.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			l.counters.update(func(st *Stats) { st.DecoderPanics++ })
			l.logger.Error("tracker: decoder failed", "panic", r)
			cands = nil
		}
	}()
	return l.decoder.Decode(f)
}

func (l *Loop) shutdown() {
	l.releaseOnce.Do(func() {
		l.setState(StateShuttingDown)
		l.logger.Info("tracker: releasing resources")
		if err := l.source.Release(); err != nil {
			l.logger.Warn("tracker: frame source release failed", "error", err)
		}
		l.closePresenter()
	})
}

func (l *Loop) closePresenter() {
	if err := l.presenter.Close(); err != nil {
		l.logger.Warn("tracker: presenter close failed", "error", err)
	}
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
}
