package camera

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/vova616/screenshot"
	"gocv.io/x/gocv"

	"marker-tracker.klederson.com/internal/tracker"
)

// Screen captures the primary display as a frame source.
type Screen struct {
	logger *slog.Logger
	rect   image.Rectangle
	frame  Frame
	open   bool
}

func NewScreen(logger *slog.Logger) *Screen {
	return &Screen{logger: logger}
}

func (s *Screen) Open() error {
	r, err := screenshot.ScreenRect()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if r.Empty() {
		return fmt.Errorf("screen: empty display bounds %v", r)
	}
	s.rect = r
	s.frame = Frame{Mat: gocv.NewMat()}
	s.open = true
	s.logger.Info("screen: capturing", "bounds", r.String())
	return nil
}

func (s *Screen) Read() (tracker.Frame, error) {
	if !s.open {
		return nil, fmt.Errorf("screen: not open")
	}
	img, err := screenshot.CaptureRect(s.rect)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tracker.ErrNoFrame, err)
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tracker.ErrNoFrame, err)
	}
	s.frame.Mat.Close()
	s.frame.Mat = mat
	return &s.frame, nil
}

func (s *Screen) Release() error {
	if !s.open {
		return nil
	}
	s.open = false
	return s.frame.Mat.Close()
}
