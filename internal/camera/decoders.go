package camera

import (
	"errors"
	"image"
	"math"
	"strconv"

	"gocv.io/x/gocv"

	"marker-tracker.klederson.com/internal/marker"
	"marker-tracker.klederson.com/internal/tracker"
)

var errUndecodedQR = errors.New("qr: code located but not decoded")

// QRDecoder finds at most one QR code per frame.
type QRDecoder struct {
	det      gocv.QRCodeDetector
	points   gocv.Mat
	straight gocv.Mat
}

func NewQRDecoder() *QRDecoder {
	return &QRDecoder{
		det:      gocv.NewQRCodeDetector(),
		points:   gocv.NewMat(),
		straight: gocv.NewMat(),
	}
}

// Decode returns the located code, if any. A code that is located but not
// readable comes back as a candidate carrying an error.
func (d *QRDecoder) Decode(f tracker.Frame) []marker.Candidate {
	cf, ok := f.(*Frame)
	if !ok || cf.Mat.Empty() {
		return nil
	}
	payload := d.det.DetectAndDecode(cf.Mat, &d.points, &d.straight)
	pts := matPoints(d.points)
	if len(pts) == 0 {
		return nil
	}
	c := marker.Candidate{Box: marker.BoxFromPoints(pts), Payload: []byte(payload)}
	if payload == "" {
		c.Err = errUndecodedQR
	}
	return []marker.Candidate{c}
}

func (d *QRDecoder) Close() error {
	d.points.Close()
	d.straight.Close()
	d.det.Close()
	return nil
}

// ArucoDecoder finds ArUco markers from the 4x4_50 dictionary. The payload
// of each marker is its decimal id.
type ArucoDecoder struct {
	det gocv.ArucoDetector
}

func NewArucoDecoder() *ArucoDecoder {
	dict := gocv.GetPredefinedDictionary(gocv.ArucoDict4x4_50)
	params := gocv.NewArucoDetectorParameters()
	return &ArucoDecoder{det: gocv.NewArucoDetectorWithParams(dict, params)}
}

func (d *ArucoDecoder) Decode(f tracker.Frame) []marker.Candidate {
	cf, ok := f.(*Frame)
	if !ok || cf.Mat.Empty() {
		return nil
	}
	corners, ids, _ := d.det.DetectMarkers(cf.Mat)
	cands := make([]marker.Candidate, 0, len(ids))
	for i, id := range ids {
		if i >= len(corners) {
			break
		}
		pts := make([]image.Point, 0, len(corners[i]))
		for _, p := range corners[i] {
			pts = append(pts, roundPt(float64(p.X), float64(p.Y)))
		}
		cands = append(cands, marker.Candidate{
			Box:     marker.BoxFromPoints(pts),
			Payload: []byte(strconv.Itoa(id)),
		})
	}
	return cands
}

func (d *ArucoDecoder) Close() error {
	d.det.Close()
	return nil
}

// matPoints reads the corner points of a 1xN or Nx1 two-channel float Mat.
func matPoints(m gocv.Mat) []image.Point {
	if m.Empty() {
		return nil
	}
	n := m.Total()
	pts := make([]image.Point, 0, n)
	for i := 0; i < n; i++ {
		var v gocv.Vecf
		if m.Rows() == 1 {
			v = m.GetVecfAt(0, i)
		} else {
			v = m.GetVecfAt(i, 0)
		}
		if len(v) < 2 {
			return nil
		}
		pts = append(pts, roundPt(float64(v[0]), float64(v[1])))
	}
	return pts
}

func roundPt(x, y float64) image.Point {
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}
