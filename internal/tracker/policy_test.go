package tracker

import (
	"testing"
	"time"
)

func TestRetryPolicyZeroValueRetriesForever(t *testing.T) {
	var p RetryPolicy
	for _, n := range []int{1, 10, 1_000_000} {
		if p.Exhausted(n) {
			t.Errorf("zero policy exhausted after %d failures", n)
		}
		if d := p.Backoff(n); d != 0 {
			t.Errorf("zero policy waits %v after %d failures", d, n)
		}
	}
}

func TestRetryPolicyBound(t *testing.T) {
	p := RetryPolicy{MaxConsecutive: 5}
	if p.Exhausted(5) {
		t.Error("exhausted at the bound; the bound itself is allowed")
	}
	if !p.Exhausted(6) {
		t.Error("not exhausted past the bound")
	}
}

func TestRetryPolicyBackoff(t *testing.T) {
	p := RetryPolicy{Delay: 100 * time.Millisecond, MaxDelay: time.Second}
	cases := []struct {
		n    int
		want time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{60, time.Second},
	}
	for _, tc := range cases {
		if got := p.Backoff(tc.n); got != tc.want {
			t.Errorf("Backoff(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}
}
