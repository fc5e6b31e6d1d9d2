package overlay

import (
	"image"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/gesturevol/internal/volume"
)

func TestBlinker(t *testing.T) {
	b := NewBlinker(500 * time.Millisecond)
	t0 := time.Unix(1000, 0)

	tests := []struct {
		offset time.Duration
		want   bool
	}{
		{0, true},
		{499 * time.Millisecond, true},
		{500 * time.Millisecond, false},
		{999 * time.Millisecond, false},
		{1000 * time.Millisecond, true},
		{1600 * time.Millisecond, false},
	}
	for _, tt := range tests {
		if got := b.Visible(t0.Add(tt.offset)); got != tt.want {
			t.Errorf("Visible(+%v) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestBlinkerDisabled(t *testing.T) {
	b := NewBlinker(0)
	now := time.Now()
	for i := 0; i < 5; i++ {
		if !b.Visible(now.Add(time.Duration(i) * time.Second)) {
			t.Fatal("zero interval should always be visible")
		}
	}
}

func TestFPSMeter(t *testing.T) {
	var m FPSMeter
	t0 := time.Unix(1000, 0)
	if got := m.Tick(t0); got != 0 {
		t.Errorf("first tick = %v, want 0", got)
	}
	if got := m.Tick(t0.Add(40 * time.Millisecond)); got != 25 {
		t.Errorf("tick at 40ms = %v, want 25", got)
	}
	if got := m.Tick(t0.Add(40 * time.Millisecond)); got != 0 {
		t.Errorf("zero interval = %v, want 0", got)
	}
}

func TestBarTop(t *testing.T) {
	tests := []struct {
		level float64
		want  int
	}{
		{0, 400},
		{100, 150},
		{40, 300},
		{-5, 400},
		{150, 150},
	}
	for _, tt := range tests {
		if got := BarTop(tt.level, 150, 400); got != tt.want {
			t.Errorf("BarTop(%v) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestMidpoint(t *testing.T) {
	if got := Midpoint(image.Pt(160, 240), image.Pt(320, 260)); got != image.Pt(240, 250) {
		t.Errorf("Midpoint = %v", got)
	}
}

func TestHeadless(t *testing.T) {
	var d Display = Headless{}
	d.Show(nil)
	if ev := d.PollEvent(1); ev != volume.EventNone {
		t.Errorf("PollEvent = %v", ev)
	}
	if err := d.Close(); err != nil {
		t.Error(err)
	}
}

func TestRendererDraw(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}
	img := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	r := NewRenderer(Options{ShowFPS: true, DrawLandmarks: true, BlinkInterval: 500 * time.Millisecond})
	thumb := volume.Point{X: 160, Y: 240}
	index := volume.Point{X: 320, Y: 240}
	v := View{
		Phase: volume.Calibrated,
		Landmarks: []volume.Landmark{
			{ID: volume.ThumbTip, X: thumb.X, Y: thumb.Y},
			{ID: volume.IndexTip, X: index.X, Y: index.Y},
		},
		HandVisible: true,
		Thumb:       thumb,
		Index:       index,
		Reading:     &volume.Reading{Normalized: 40, Scalar: 0.4},
		FPS:         30,
	}
	r.Draw(&img, v, time.Now())

	if gocv.CountNonZero(grey(t, img)) == 0 {
		t.Error("expected annotations on the frame")
	}

	// Empty frames are ignored.
	empty := gocv.NewMat()
	defer empty.Close()
	r.Draw(&empty, v, time.Now())
}

func grey(t *testing.T, img gocv.Mat) gocv.Mat {
	t.Helper()
	g := gocv.NewMat()
	t.Cleanup(func() { g.Close() })
	gocv.CvtColor(img, &g, gocv.ColorBGRToGray)
	return g
}
