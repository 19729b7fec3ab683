package camera

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gocv.io/x/gocv"

	"marker-tracker.klederson.com/internal/tracker"
)

// Capture reads frames from a camera device or a video file.
type Capture struct {
	device string
	logger *slog.Logger

	cap   *gocv.VideoCapture
	frame Frame
}

// NewCapture creates a source for device, which is either a camera index
// ("0") or a path to a video file.
func NewCapture(device string, logger *slog.Logger) *Capture {
	return &Capture{device: device, logger: logger}
}

// Open opens the device. A path that exists on disk is opened as a file.
func (c *Capture) Open() error {
	var (
		vc  *gocv.VideoCapture
		err error
	)
	if _, statErr := os.Stat(c.device); statErr == nil {
		vc, err = gocv.VideoCaptureFile(c.device)
	} else if id, convErr := strconv.Atoi(c.device); convErr == nil {
		vc, err = gocv.VideoCaptureDevice(id)
	} else {
		return fmt.Errorf("camera: %q is neither a device index nor an existing file", c.device)
	}
	if err != nil {
		return fmt.Errorf("camera: open %q: %w", c.device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("camera: device %q did not open", c.device)
	}
	c.cap = vc
	c.frame = Frame{Mat: gocv.NewMat()}
	c.logger.Info("camera: opened", "device", c.device)
	return nil
}

// Read grabs the next frame into the reused buffer.
func (c *Capture) Read() (tracker.Frame, error) {
	if c.cap == nil {
		return nil, errors.New("camera: not open")
	}
	if ok := c.cap.Read(&c.frame.Mat); !ok || c.frame.Mat.Empty() {
		return nil, tracker.ErrNoFrame
	}
	return &c.frame, nil
}

func (c *Capture) Release() error {
	if c.cap == nil {
		return nil
	}
	err := c.cap.Close()
	c.frame.Mat.Close()
	c.cap = nil
	c.logger.Info("camera: released", "device", c.device)
	return err
}
