package camera

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"marker-tracker.klederson.com/internal/config"
	"marker-tracker.klederson.com/internal/tracker"
)

var (
	colorGrid   = color.RGBA{255, 255, 255, 0}
	colorBox    = color.RGBA{0, 255, 0, 0}
	colorDot    = color.RGBA{255, 0, 0, 0}
	colorRange  = color.RGBA{255, 255, 0, 0}
	colorZone   = color.RGBA{0, 0, 255, 0}
	colorPrompt = color.RGBA{255, 0, 0, 0}
	colorSprite = color.RGBA{128, 128, 128, 0}
)

const (
	keyEsc = 27
	keyQ   = 'q'
)

// boxer is implemented by synthetic frames that have no pixels.
type boxer interface {
	Boxes() []image.Rectangle
}

// Window draws the overlay onto each frame and shows it in a HighGUI
// window. Pressing q or ESC cancels the run.
type Window struct {
	win    *gocv.Window
	cancel context.CancelCauseFunc
	canvas gocv.Mat
}

// NewWindow opens a display window. It must be used from the goroutine
// that runs the tracking loop.
func NewWindow(title string, cancel context.CancelCauseFunc) *Window {
	return &Window{
		win:    gocv.NewWindow(title),
		cancel: cancel,
		canvas: gocv.NewMat(),
	}
}

func (w *Window) Present(f tracker.Frame, ov tracker.Overlay, r tracker.Result) {
	img := w.target(f)
	if img == nil {
		return
	}

	for _, l := range ov.Grid {
		gocv.Line(img, l.From, l.To, colorGrid, 1)
	}

	if r.Found {
		box := r.Detection.Box
		gocv.Rectangle(img, box.Rect(), colorBox, 2)
		gocv.Circle(img, r.Centroid, 6, colorDot, -1)
		gocv.PutText(img, rangeText(r), image.Pt(box.X, box.Y-30),
			gocv.FontHersheySimplex, 0.6, colorRange, 2)
		gocv.PutText(img, r.Zone.String(), image.Pt(box.X, box.Y-10),
			gocv.FontHersheySimplex, 0.6, colorZone, 2)
	} else {
		gocv.PutText(img, config.PromptText, image.Pt(50, 50),
			gocv.FontHersheySimplex, 1, colorPrompt, 2)
	}

	w.win.IMShow(*img)
	if key := w.win.WaitKey(1); key&0xFF == keyQ || key == keyEsc {
		w.cancel(tracker.ErrQuitRequested)
	}
}

// target returns the Mat to draw on: the camera frame itself, or a blank
// canvas with the synthetic scene sketched in.
func (w *Window) target(f tracker.Frame) *gocv.Mat {
	if cf, ok := f.(*Frame); ok {
		return &cf.Mat
	}
	if f.Width() <= 0 || f.Height() <= 0 {
		return nil
	}
	w.canvas.Close()
	w.canvas = gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), f.Height(), f.Width(), gocv.MatTypeCV8UC3)
	if b, ok := f.(boxer); ok {
		for _, r := range b.Boxes() {
			gocv.Rectangle(&w.canvas, r, colorSprite, -1)
		}
	}
	return &w.canvas
}

func (w *Window) Close() error {
	w.canvas.Close()
	return w.win.Close()
}

func rangeText(r tracker.Result) string {
	if r.Indeterminate {
		return "Range: ? cm"
	}
	return fmt.Sprintf("Range: %.1f cm", r.DistanceCm)
}
