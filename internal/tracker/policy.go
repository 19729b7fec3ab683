package tracker

import (
	"context"
	"time"
)

// RetryPolicy controls how the loop reacts to consecutive frame read
// failures. The zero value retries forever without waiting.
type RetryPolicy struct {
	MaxConsecutive int           // 0 = unbounded
	Delay          time.Duration // Initial backoff; 0 disables waiting
	MaxDelay       time.Duration // Backoff cap; 0 = uncapped
}

// Exhausted reports whether n consecutive failures exceed the bound.
func (p RetryPolicy) Exhausted(n int) bool {
	return p.MaxConsecutive > 0 && n > p.MaxConsecutive
}

// Backoff returns the wait after the n-th consecutive failure:
// Delay * 2^(n-1), capped at MaxDelay.
func (p RetryPolicy) Backoff(n int) time.Duration {
	if p.Delay <= 0 || n <= 0 {
		return 0
	}
	shift := n - 1
	if shift > 20 {
		shift = 20
	}
	d := p.Delay * time.Duration(1<<uint(shift))
	if d <= 0 || (p.MaxDelay > 0 && d > p.MaxDelay) {
		d = p.MaxDelay
	}
	return d
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
