package app

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"marker-tracker.klederson.com/internal/tracker"
)

// sender is the part of *tea.Program the presenter needs.
type sender interface {
	Send(msg tea.Msg)
}

// Presenter forwards loop results to a running Bubble Tea program.
// Frames are not retained; only the Result crosses goroutines.
type Presenter struct {
	program sender
}

// NewPresenter returns a presenter that drops results until Attach.
// The program needs the model and the model needs the loop, so the
// program is attached after both exist.
func NewPresenter() *Presenter {
	return &Presenter{}
}

// Attach sets the program results are sent to. Call before the loop runs.
func (p *Presenter) Attach(prog *tea.Program) {
	p.program = prog
}

func (p *Presenter) Present(_ tracker.Frame, _ tracker.Overlay, r tracker.Result) {
	if p.program == nil {
		return
	}
	p.program.Send(ResultMsg{Result: r})
}

func (p *Presenter) Close() error { return nil }

// LogPresenter reports results through the structured logger only.
type LogPresenter struct {
	logger   *slog.Logger
	lastZone string
}

func NewLogPresenter(logger *slog.Logger) *LogPresenter {
	return &LogPresenter{logger: logger}
}

func (p *LogPresenter) Present(_ tracker.Frame, _ tracker.Overlay, r tracker.Result) {
	if !r.Found {
		p.lastZone = ""
		p.logger.Debug("presenter: marker not found", "seq", r.Seq)
		return
	}

	attrs := []any{
		"seq", r.Seq,
		"payload", r.Detection.Payload,
		"zone", r.Zone.String(),
		"centroid_x", r.Centroid.X,
		"centroid_y", r.Centroid.Y,
		"width_px", r.Detection.Box.W,
	}
	if r.Indeterminate {
		attrs = append(attrs, "distance", "indeterminate")
	} else {
		attrs = append(attrs, "distance_cm", r.DistanceCm)
	}
	if z := r.Zone.String(); z != p.lastZone {
		attrs = append(attrs, "zone_changed", true)
		p.lastZone = z
	}
	p.logger.Info("presenter: marker located", attrs...)
}

func (p *LogPresenter) Close() error {
	p.logger.Debug("presenter: closed")
	return nil
}
