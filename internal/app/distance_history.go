package app

// DistanceRing is a circular buffer of recent distance estimates.
type DistanceRing struct {
	buf   []float64
	pos   int
	count int
}

// NewDistanceRing creates a ring holding at most capacity values.
func NewDistanceRing(capacity int) *DistanceRing {
	return &DistanceRing{
		buf: make([]float64, max(capacity, 1)),
	}
}

// Push adds a value, overwriting the oldest once full.
func (r *DistanceRing) Push(cm float64) {
	r.buf[r.pos] = cm
	r.pos = (r.pos + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Values returns all stored values in chronological order.
func (r *DistanceRing) Values() []float64 {
	if r.count == 0 {
		return nil
	}
	result := make([]float64, r.count)
	if r.count < len(r.buf) {
		copy(result, r.buf[:r.count])
	} else {
		n := copy(result, r.buf[r.pos:])
		copy(result[n:], r.buf[:r.pos])
	}
	return result
}

func (r *DistanceRing) Len() int {
	return r.count
}
