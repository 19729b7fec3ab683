package tracker

import "sync"

// Stats is a snapshot of loop counters.
type Stats struct {
	Frames              uint64 // frames read successfully, including the initial one
	SoftFailures        uint64
	ConsecutiveFailures int
	Found               uint64
	NotFound            uint64
	SkippedCandidates   uint64
	DecoderPanics       uint64
}

// FoundRatio returns the share of processed frames where the marker was found.
func (s Stats) FoundRatio() float64 {
	n := s.Found + s.NotFound
	if n == 0 {
		return 0
	}
	return float64(s.Found) / float64(n)
}

// counters is the thread-safe backing store for Stats.
type counters struct {
	mu sync.RWMutex
	s  Stats
}

func (c *counters) update(fn func(s *Stats)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.s)
}

func (c *counters) snapshot() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s
}
