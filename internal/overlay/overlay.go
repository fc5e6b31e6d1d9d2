// Package overlay draws calibration and volume feedback onto camera frames
// and shows them in a desktop window.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/gesturevol/internal/detector"
	"github.com/ayusman/gesturevol/internal/volume"
)

// Volume bar geometry in pixels.
const (
	barLeft   = 50
	barRight  = 85
	barTop    = 150
	barBottom = 400
)

var (
	colorLandmark = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	colorSkeleton = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	colorTip      = color.RGBA{R: 255, G: 0, B: 255, A: 0}
	colorBar      = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	colorText     = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	colorPrompt   = color.RGBA{R: 255, G: 255, B: 0, A: 0}
	colorWarn     = color.RGBA{R: 255, G: 80, B: 80, A: 0}
)

// View is everything the renderer needs to annotate one frame.
type View struct {
	Phase       volume.Phase
	Landmarks   []volume.Landmark
	HandVisible bool
	Thumb       volume.Point
	Index       volume.Point
	Reading     *volume.Reading
	FPS         float64
	// Notice is a short message shown under the phase banner.
	Notice      string
}

// Options configures what the renderer draws.
type Options struct {
	ShowFPS       bool
	DrawLandmarks bool
	BlinkInterval time.Duration
}

// Renderer annotates frames in place. It keeps the blink timer for the
// calibration prompt, so one Renderer should be used per window.
type Renderer struct {
	opts  Options
	blink *Blinker
}

// NewRenderer creates a Renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts, blink: NewBlinker(opts.BlinkInterval)}
}

// Draw annotates img according to v.
func (r *Renderer) Draw(img *gocv.Mat, v View, now time.Time) {
	if img == nil || img.Empty() {
		return
	}

	if r.opts.DrawLandmarks && len(v.Landmarks) > 0 {
		drawSkeleton(img, v.Landmarks)
	}

	if v.HandVisible {
		thumb := toImage(v.Thumb)
		index := toImage(v.Index)
		gocv.Line(img, thumb, index, colorTip, 3)
		gocv.Circle(img, thumb, 10, colorTip, -1)
		gocv.Circle(img, index, 10, colorTip, -1)
		gocv.Circle(img, Midpoint(thumb, index), 8, colorTip, -1)
	}

	switch v.Phase {
	case volume.Calibrated:
		level := 0.0
		if v.Reading != nil {
			level = v.Reading.Normalized
		}
		drawBar(img, level)
		putText(img, "CALIBRATED  s: stop  q: quit", image.Pt(10, 30), colorBar)
	default:
		if !v.HandVisible {
			putText(img, "no hand", image.Pt(10, 30), colorWarn)
		}
		if r.blink.Visible(now) {
			putText(img, "press SPACE to calibrate", image.Pt(10, img.Rows()-20), colorPrompt)
		}
	}

	if v.Notice != "" {
		putText(img, v.Notice, image.Pt(10, 60), colorWarn)
	}

	if r.opts.ShowFPS && v.FPS > 0 {
		putText(img, fmt.Sprintf("FPS: %d", int(v.FPS)), image.Pt(img.Cols()-130, 30), colorText)
	}
}

func drawSkeleton(img *gocv.Mat, landmarks []volume.Landmark) {
	byID := make(map[int]image.Point, len(landmarks))
	for _, lm := range landmarks {
		byID[lm.ID] = image.Pt(lm.X, lm.Y)
	}
	for _, c := range detector.Connections {
		a, okA := byID[c[0]]
		b, okB := byID[c[1]]
		if okA && okB {
			gocv.Line(img, a, b, colorSkeleton, 2)
		}
	}
	for _, p := range byID {
		gocv.Circle(img, p, 4, colorLandmark, -1)
	}
}

func drawBar(img *gocv.Mat, normalized float64) {
	gocv.Rectangle(img, image.Rect(barLeft, barTop, barRight, barBottom), colorBar, 3)
	top := BarTop(normalized, barTop, barBottom)
	gocv.Rectangle(img, image.Rect(barLeft, top, barRight, barBottom), colorBar, -1)
	putText(img, fmt.Sprintf("%d %%", int(normalized)), image.Pt(40, barBottom+50), colorBar)
}

func putText(img *gocv.Mat, text string, org image.Point, c color.RGBA) {
	gocv.PutText(img, text, org, gocv.FontHersheyPlain, 1.6, c, 2)
}

func toImage(p volume.Point) image.Point {
	return image.Pt(p.X, p.Y)
}

// Midpoint returns the integer midpoint of a and b.
func Midpoint(a, b image.Point) image.Point {
	return image.Pt((a.X+b.X)/2, (a.Y+b.Y)/2)
}

// BarTop maps a normalized level in [0, 100] to the y coordinate of the
// filled bar's top edge between top and bottom.
func BarTop(normalized float64, top, bottom int) int {
	n := volume.Clamp(normalized, 0, 100)
	return bottom - int(float64(bottom-top)*n/100)
}
