package camera

import "gocv.io/x/gocv"

// Frame wraps a gocv.Mat owned by the source that produced it.
type Frame struct {
	Mat gocv.Mat
}

func (f *Frame) Width() int  { return f.Mat.Cols() }
func (f *Frame) Height() int { return f.Mat.Rows() }
