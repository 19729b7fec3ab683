package demo

import (
	"errors"
	"image"
	"math"
	"math/rand"
	"sync"
	"time"

	"marker-tracker.klederson.com/internal/marker"
	"marker-tracker.klederson.com/internal/tracker"
)

// Sprite is a marker drawn into a synthetic frame.
type Sprite struct {
	Box        marker.Box
	Payload    []byte
	Unreadable bool
}

// Frame is a synthetic frame. It carries its sprites instead of pixels.
type Frame struct {
	W, H    int
	Seq     uint64
	Sprites []Sprite
}

func (f *Frame) Width() int  { return f.W }
func (f *Frame) Height() int { return f.H }

// ErrClosed is returned by Read after Release.
var ErrClosed = errors.New("demo: source is closed")

// Options tunes the synthetic scene.
type Options struct {
	Width, Height int
	FPS           int     // 0 = as fast as the loop reads
	DropRate      float64 // probability a read reports a dropped frame
	Payload       string  // payload of the tracked marker
	Seed          int64
}

// Source generates frames with a marker wandering on a Lissajous path
// that also moves toward and away from the camera, plus a decoy marker
// and the occasional unreadable blob.
type Source struct {
	opts  Options
	rng   *rand.Rand
	frame Frame
	t     float64
	open  bool
	last  time.Time

	mu sync.Mutex
}

// NewSource creates a synthetic frame source.
func NewSource(opts Options) *Source {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Source{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
	}
}

func (s *Source) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.Width <= 0 || s.opts.Height <= 0 {
		return errors.New("demo: frame size must be positive")
	}
	s.open = true
	return nil
}

// Read paces to the configured FPS and returns the next frame. The first
// frame is never dropped.
func (s *Source) Read() (tracker.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil, ErrClosed
	}
	s.pace()

	s.t += 1.0 / 30
	seq := s.frame.Seq + 1
	if seq > 1 && s.rng.Float64() < s.opts.DropRate {
		s.frame.Seq = seq
		return nil, tracker.ErrNoFrame
	}

	s.frame = Frame{W: s.opts.Width, H: s.opts.Height, Seq: seq, Sprites: s.scene()}
	return &s.frame, nil
}

func (s *Source) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

func (s *Source) pace() {
	if s.opts.FPS <= 0 {
		return
	}
	period := time.Second / time.Duration(s.opts.FPS)
	if !s.last.IsZero() {
		if d := period - time.Since(s.last); d > 0 {
			time.Sleep(d)
		}
	}
	s.last = time.Now()
}

func (s *Source) scene() []Sprite {
	w, h := float64(s.opts.Width), float64(s.opts.Height)
	t := s.t

	var sprites []Sprite

	// Decoy marker parked in the upper-left corner, listed first so the
	// selector has to skip it.
	if math.Sin(t*0.3) > -0.5 {
		sprites = append(sprites, Sprite{
			Box:     marker.Box{X: int(w * 0.05), Y: int(h * 0.05), W: 40, H: 40},
			Payload: []byte("OTHER"),
		})
	}

	// Occasional glare that the decoder finds but cannot read.
	if s.rng.Float64() < 0.05 {
		sprites = append(sprites, Sprite{
			Box:        marker.Box{X: s.rng.Intn(int(w) / 2), Y: s.rng.Intn(int(h) / 2), W: 30, H: 30},
			Unreadable: true,
		})
	}

	// The target disappears for a stretch every cycle.
	if math.Sin(t*0.2) < -0.9 {
		return sprites
	}

	size := 60 + 40*math.Sin(t*0.7) // 20..100 px
	cx := w/2 + w*0.4*math.Sin(t*0.9)
	cy := h/2 + h*0.35*math.Sin(t*1.3+math.Pi/3)
	side := int(math.Round(size))
	sprites = append(sprites, Sprite{
		Box: marker.Box{
			X: max(0, int(cx)-side/2),
			Y: max(0, int(cy)-side/2),
			W: side,
			H: side,
		},
		Payload: []byte(s.opts.Payload),
	})
	return sprites
}

// Decoder reads sprites back out of synthetic frames.
type Decoder struct{}

var errUnreadable = errors.New("demo: unreadable marker")

func (Decoder) Decode(f tracker.Frame) []marker.Candidate {
	df, ok := f.(*Frame)
	if !ok {
		return nil
	}
	cands := make([]marker.Candidate, 0, len(df.Sprites))
	for _, sp := range df.Sprites {
		c := marker.Candidate{Box: sp.Box, Payload: sp.Payload}
		if sp.Unreadable {
			c.Err = errUnreadable
		}
		cands = append(cands, c)
	}
	return cands
}

// Boxes returns the sprite outlines so a display can sketch the scene.
func (f *Frame) Boxes() []image.Rectangle {
	rects := make([]image.Rectangle, 0, len(f.Sprites))
	for _, sp := range f.Sprites {
		rects = append(rects, sp.Box.Rect())
	}
	return rects
}
