package capture

import (
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestNewMotionDetector(t *testing.T) {
	for _, threshold := range []float64{0.5, 1.0, 5.0} {
		md := NewMotionDetector(threshold)
		if md.threshold != threshold {
			t.Errorf("threshold = %f, want %f", md.threshold, threshold)
		}
		if md.initialized {
			t.Error("motion detector should not be initialized initially")
		}
		md.Close()
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frames := BlankFrames(2, 640, 480)
	defer CloseFrames(frames)

	detected, changePercent := md.Detect(frames[0])
	if detected || changePercent != 0 {
		t.Errorf("first frame = %v, %f; want false, 0", detected, changePercent)
	}

	detected, changePercent = md.Detect(frames[1])
	if detected {
		t.Errorf("identical frames should not detect motion, changePercent = %f", changePercent)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	blackFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blackFrame.Close()
	whiteFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer whiteFrame.Close()
	whiteFrame.SetTo(gocv.NewScalar(255, 255, 255, 0))

	if detected, _ := md.Detect(&blackFrame); detected {
		t.Error("first frame should not detect motion")
	}

	detected, changePercent := md.Detect(&whiteFrame)
	if !detected {
		t.Errorf("black to white should detect motion, changePercent = %f", changePercent)
	}
	if changePercent < 50.0 {
		t.Errorf("changePercent = %f, expected > 50%% for black to white transition", changePercent)
	}
}

func TestMotionDetector_ResolutionChangeResetsBaseline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	small := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer small.Close()
	large := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer large.Close()
	large.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&small)
	if detected, pct := md.Detect(&large); detected || pct != 0 {
		t.Errorf("resolution change should rebaseline, got %v, %f", detected, pct)
	}
}

func TestMotionDetector_NilAndEmpty(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if detected, _ := md.Detect(nil); detected {
		t.Error("nil frame should not detect motion")
	}
	empty := gocv.NewMat()
	defer empty.Close()
	if detected, _ := md.Detect(&empty); detected {
		t.Error("empty frame should not detect motion")
	}
}

func TestGovernor(t *testing.T) {
	start := time.Unix(1000, 0)
	g := NewGovernor(5, 30, 2*time.Second)

	if g.Active() || g.FPS() != 5 {
		t.Fatalf("expected idle start at 5 fps, got active=%v fps=%d", g.Active(), g.FPS())
	}

	steps := []struct {
		name        string
		motion      bool
		hand        bool
		offset      time.Duration
		wantFPS     int
		wantChanged bool
	}{
		{name: "quiet stays idle", offset: 0, wantFPS: 5},
		{name: "motion activates", motion: true, offset: 100 * time.Millisecond, wantFPS: 30, wantChanged: true},
		{name: "still active", offset: 1 * time.Second, wantFPS: 30},
		{name: "tracked hand keeps active", hand: true, offset: 2 * time.Second, wantFPS: 30},
		{name: "within timeout", offset: 3900 * time.Millisecond, wantFPS: 30},
		{name: "timeout drops to idle", offset: 4100 * time.Millisecond, wantFPS: 5, wantChanged: true},
		{name: "stays idle", offset: 5 * time.Second, wantFPS: 5},
	}

	for _, s := range steps {
		fps, changed := g.Update(s.motion, s.hand, start.Add(s.offset))
		if fps != s.wantFPS || changed != s.wantChanged {
			t.Errorf("%s: Update() = %d, %v; want %d, %v", s.name, fps, changed, s.wantFPS, s.wantChanged)
		}
	}
}

func TestNewGovernor_Bounds(t *testing.T) {
	g := NewGovernor(0, 1, time.Second)
	if g.idleFPS != DefaultFPS || g.activeFPS != DefaultFPS {
		t.Errorf("got idle=%d active=%d, want both %d", g.idleFPS, g.activeFPS, DefaultFPS)
	}
}
