// Package volume implements the pinch-to-volume calibration procedure:
// thumb/index span measurement, normalization against a calibrated
// maximum and the two-phase controller that owns the calibration.
package volume

import "math"

// Landmark indices used by the controller (MediaPipe hand convention).
const (
	ThumbTip = 4
	IndexTip = 8
)

// DefaultOffset is subtracted from the percentage so a span slightly short
// of the calibrated maximum still reaches the top of the range.
const DefaultOffset = 10.0

// Point is a pixel coordinate within a frame.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Landmark is a single tracked hand point in pixel coordinates.
type Landmark struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

// Point returns the landmark position.
func (l Landmark) Point() Point {
	return Point{X: l.X, Y: l.Y}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Hypot(dx, dy)
}

// Normalize scales raw against max as a percentage, subtracts offset and
// clamps the result to [0, 100]. A non-positive max yields 0.
func Normalize(raw, max, offset float64) float64 {
	if max <= 0 || math.IsNaN(raw) || math.IsNaN(max) {
		return 0
	}
	return Clamp(raw/max*100-offset, 0, 100)
}

// Clamp limits v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FindTips looks up the thumb and index fingertips in a landmark list.
// Lists are usually ordered by ID, but the lookup does not rely on it.
func FindTips(landmarks []Landmark) (thumb, index Point, ok bool) {
	var haveThumb, haveIndex bool
	for _, lm := range landmarks {
		switch lm.ID {
		case ThumbTip:
			thumb, haveThumb = lm.Point(), true
		case IndexTip:
			index, haveIndex = lm.Point(), true
		}
	}
	return thumb, index, haveThumb && haveIndex
}
