package demo

import (
	"errors"
	"testing"

	"marker-tracker.klederson.com/internal/marker"
	"marker-tracker.klederson.com/internal/tracker"
)

func newTestSource(dropRate float64) *Source {
	return NewSource(Options{
		Width:    640,
		Height:   480,
		DropRate: dropRate,
		Payload:  marker.DefaultPayload,
		Seed:     42,
	})
}

func TestSourceLifecycle(t *testing.T) {
	src := newTestSource(0)
	if _, err := src.Read(); !errors.Is(err, ErrClosed) {
		t.Errorf("read before open: got %v, want ErrClosed", err)
	}
	if err := src.Open(); err != nil {
		t.Fatal(err)
	}
	f, err := src.Read()
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if f.Width() != 640 || f.Height() != 480 {
		t.Errorf("frame size %dx%d", f.Width(), f.Height())
	}
	if err := src.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Read(); !errors.Is(err, ErrClosed) {
		t.Errorf("read after release: got %v, want ErrClosed", err)
	}
}

func TestSourceRejectsEmptySize(t *testing.T) {
	if err := NewSource(Options{}).Open(); err == nil {
		t.Error("expected an error for a zero frame size")
	}
}

func TestSourceDropsFramesButNeverTheFirst(t *testing.T) {
	src := newTestSource(1)
	if err := src.Open(); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Read(); err != nil {
		t.Fatalf("first frame dropped: %v", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := src.Read(); !errors.Is(err, tracker.ErrNoFrame) {
			t.Fatalf("read %d: got %v, want ErrNoFrame", i, err)
		}
	}
}

func TestDecoderFindsTargetAndDecoy(t *testing.T) {
	src := newTestSource(0)
	if err := src.Open(); err != nil {
		t.Fatal(err)
	}
	var sawTarget, sawDecoy bool
	for i := 0; i < 300; i++ {
		f, err := src.Read()
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range (Decoder{}).Decode(f) {
			det, err := c.Decode()
			if err != nil {
				continue
			}
			switch det.Payload {
			case marker.DefaultPayload:
				sawTarget = true
				if det.Box.W < 20 || det.Box.W > 100 || det.Box.X < 0 || det.Box.Y < 0 {
					t.Errorf("target box out of range: %+v", det.Box)
				}
			case "OTHER":
				sawDecoy = true
			}
		}
	}
	if !sawTarget || !sawDecoy {
		t.Errorf("sawTarget=%v sawDecoy=%v", sawTarget, sawDecoy)
	}
}

type otherFrame struct{}

func (otherFrame) Width() int  { return 1 }
func (otherFrame) Height() int { return 1 }

func TestDecoderIgnoresForeignFrames(t *testing.T) {
	if c := (Decoder{}).Decode(otherFrame{}); len(c) != 0 {
		t.Errorf("decoded %d candidates from a foreign frame", len(c))
	}
}
