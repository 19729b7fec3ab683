package app

import (
	"time"

	"marker-tracker.klederson.com/internal/tracker"
)

// TickMsg triggers a frame update for animation and stats polling.
type TickMsg time.Time

// ResultMsg carries one loop iteration's outcome into the UI.
type ResultMsg struct {
	Result tracker.Result
}

// LoopDoneMsg reports that the tracking loop has returned.
type LoopDoneMsg struct {
	Err error
}
