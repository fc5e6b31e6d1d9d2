package detector

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocv.io/x/gocv"
)

func TestHandLandmarks_Positions(t *testing.T) {
	t.Run("scales to frame size", func(t *testing.T) {
		hand := PinchLandmarks(0.25)

		positions := hand.Positions(640, 480)
		if len(positions) != NumLandmarks {
			t.Fatalf("expected %d positions, got %d", NumLandmarks, len(positions))
		}

		for i, p := range positions {
			if p.ID != i {
				t.Errorf("position %d has ID %d", i, p.ID)
			}
		}

		thumb := positions[ThumbTip]
		if thumb.X != 160 || thumb.Y != 240 {
			t.Errorf("thumb tip = (%d, %d), want (160, 240)", thumb.X, thumb.Y)
		}
		index := positions[IndexTip]
		if index.X != 320 || index.Y != 240 {
			t.Errorf("index tip = (%d, %d), want (320, 240)", index.X, index.Y)
		}
	})

	t.Run("truncates toward zero", func(t *testing.T) {
		var hand HandLandmarks
		hand.Points[Wrist] = Point3D{X: 0.999, Y: 0.0015}
		p := hand.Positions(100, 1000)[Wrist]
		if p.X != 99 || p.Y != 1 {
			t.Errorf("wrist = (%d, %d), want (99, 1)", p.X, p.Y)
		}
	})

	t.Run("nil hand", func(t *testing.T) {
		var hand *HandLandmarks
		if hand.Positions(640, 480) != nil {
			t.Error("expected nil positions for nil hand")
		}
	})
}

func TestHandPositions(t *testing.T) {
	hands := []HandLandmarks{PinchLandmarks(0.1), PinchLandmarks(0.2)}

	tests := []struct {
		name    string
		index   int
		wantNil bool
	}{
		{name: "first hand", index: 0},
		{name: "second hand", index: 1},
		{name: "missing hand", index: 2, wantNil: true},
		{name: "negative index", index: -1, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandPositions(hands, tt.index, 640, 480)
			if (got == nil) != tt.wantNil {
				t.Errorf("HandPositions(%d) nil = %v, want %v", tt.index, got == nil, tt.wantNil)
			}
		})
	}

	if HandPositions(nil, 0, 640, 480) != nil {
		t.Error("expected nil positions with no hands")
	}
}

func TestDecodeResponse(t *testing.T) {
	t.Run("no hands", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[]}` + "\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected 0 hands, got %d", len(hands))
		}
	})

	t.Run("one hand", func(t *testing.T) {
		points := make([]string, NumLandmarks)
		for i := range points {
			points[i] = `{"x":0.5,"y":0.25,"z":-0.01}`
		}
		line := `{"hands":[{"points":[` + strings.Join(points, ",") + `],"handedness":"Left","score":0.87}]}`

		hands, err := decodeResponse([]byte(line))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Handedness != "Left" || hands[0].Score != 0.87 {
			t.Errorf("unexpected hand metadata %+v", hands[0])
		}
		if hands[0].Points[PinkyTip].Y != 0.25 {
			t.Errorf("pinky tip = %+v", hands[0].Points[PinkyTip])
		}
	})

	t.Run("truncated hand is skipped", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[{"points":[{"x":1,"y":1,"z":0}]}]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected partial hand to be dropped, got %d", len(hands))
		}
	})

	t.Run("service error", func(t *testing.T) {
		_, err := decodeResponse([]byte(`{"hands":[],"error":"bad jpeg"}`))
		if !errors.Is(err, ErrServiceReported) {
			t.Errorf("error = %v, want %v", err, ErrServiceReported)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := decodeResponse([]byte(`not json`))
		if err == nil {
			t.Fatal("expected parse error")
		}
		if errors.Is(err, ErrServiceReported) {
			t.Error("parse errors must not be reported as service errors")
		}
	})
}

func TestNewMediaPipeDetector(t *testing.T) {
	t.Run("explicit missing script", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Script = filepath.Join(t.TempDir(), "nope.py")

		_, err := NewMediaPipeDetector(cfg, nil)
		if !errors.Is(err, ErrScriptNotFound) {
			t.Errorf("error = %v, want %v", err, ErrScriptNotFound)
		}
	})

	t.Run("explicit script and interpreter", func(t *testing.T) {
		dir := t.TempDir()
		script := filepath.Join(dir, ScriptName)
		if err := os.WriteFile(script, []byte("# service\n"), 0o644); err != nil {
			t.Fatalf("write script: %v", err)
		}

		cfg := DefaultConfig()
		cfg.Script = script
		cfg.Python = "/usr/bin/python3"
		cfg.MaxHands = 1

		d, err := NewMediaPipeDetector(cfg, nil)
		if err != nil {
			t.Fatalf("NewMediaPipeDetector() error = %v", err)
		}
		defer d.Close()

		args := d.args()
		if args[0] != script {
			t.Errorf("first arg = %q, want script path", args[0])
		}
		joined := strings.Join(args, " ")
		for _, want := range []string{"--max-hands 1", "--model-complexity 1", "--min-detection-confidence 0.5"} {
			if !strings.Contains(joined, want) {
				t.Errorf("args %q missing %q", joined, want)
			}
		}
		if d.pythonPath != "/usr/bin/python3" {
			t.Errorf("python = %q", d.pythonPath)
		}
	})
}

// fakeService writes a shell script that answers with the given lines and
// then swallows stdin until it is closed.
func fakeService(t *testing.T, lines ...string) Config {
	t.Helper()
	if testing.Short() {
		t.Skip("requires OpenCV")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}

	var body strings.Builder
	body.WriteString("#!/bin/sh\n")
	for _, line := range lines {
		body.WriteString("printf '%s\\n' '" + line + "'\n")
	}
	body.WriteString("exec cat >/dev/null\n")

	script := filepath.Join(t.TempDir(), ScriptName)
	if err := os.WriteFile(script, []byte(body.String()), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Script = script
	cfg.Python = "/bin/sh"
	return cfg
}

func TestMediaPipeDetector_ServiceErrors(t *testing.T) {
	t.Run("reported frame error keeps the service", func(t *testing.T) {
		cfg := fakeService(t, `{"hands":[],"error":"decode failed"}`, `{"hands":[]}`)
		d, err := NewMediaPipeDetector(cfg, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer d.Close()

		frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
		defer frame.Close()

		if _, err := d.Detect(&frame); !errors.Is(err, ErrServiceReported) {
			t.Fatalf("first Detect() error = %v, want %v", err, ErrServiceReported)
		}
		pid := d.PID()
		if pid == 0 {
			t.Fatal("service should still be running")
		}

		hands, err := d.Detect(&frame)
		if err != nil {
			t.Fatalf("second Detect() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("hands = %d, want 0", len(hands))
		}
		if got := d.PID(); got != pid {
			t.Errorf("PID = %d, want %d (service restarted)", got, pid)
		}
	})

	t.Run("garbled line restarts the service", func(t *testing.T) {
		cfg := fakeService(t, `not json`)
		d, err := NewMediaPipeDetector(cfg, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer d.Close()

		frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
		defer frame.Close()

		_, err = d.Detect(&frame)
		if err == nil || errors.Is(err, ErrServiceReported) {
			t.Fatalf("Detect() error = %v, want parse error", err)
		}
		if d.PID() != 0 {
			t.Error("service should be stopped after a framing error")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{PinchLandmarks(0.1), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
	})

	t.Run("plays script before fixed hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{OpenPalmLandmarks()})
		mock.SetScript([][]HandLandmarks{nil, {PinchLandmarks(0.2), PinchLandmarks(0.3)}})

		want := []int{0, 2, 1, 1}
		for i, n := range want {
			hands, _ := mock.Detect(nil)
			if len(hands) != n {
				t.Errorf("call %d: got %d hands, want %d", i, len(hands), n)
			}
		}
		if mock.Calls() != len(want) {
			t.Errorf("Calls() = %d, want %d", mock.Calls(), len(want))
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector()
		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
		if !mock.Closed() {
			t.Error("expected Closed() after Close")
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPinchLandmarks(t *testing.T) {
	hand := PinchLandmarks(0.2)

	thumb, index := hand.Points[ThumbTip], hand.Points[IndexTip]
	if thumb.Y != index.Y {
		t.Error("thumb and index tips should share a row")
	}
	if diff := index.X - thumb.X; diff < 0.1999 || diff > 0.2001 {
		t.Errorf("span = %f, want 0.2", diff)
	}
	if hand.Handedness != "Right" {
		t.Errorf("expected handedness Right, got %s", hand.Handedness)
	}
}

func TestConnections_ReferenceValidLandmarks(t *testing.T) {
	for _, c := range Connections {
		if c[0] < 0 || c[0] >= NumLandmarks || c[1] < 0 || c[1] >= NumLandmarks {
			t.Errorf("connection %v out of range", c)
		}
	}
}
