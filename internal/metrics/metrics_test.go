package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New()

	m.FramesTotal.Inc()
	m.ObserveDetection(0.02, true)
	m.ObserveDetection(0.03, false)
	m.ObserveDetection(0.01, false)
	m.ObserveTransition("calibrated", true)
	m.ObserveVolumeWrite(0.4, nil)
	m.ObserveVolumeWrite(0.5, errors.New("busy"))

	if got := testutil.ToFloat64(m.FramesTotal); got != 1 {
		t.Errorf("frames = %v", got)
	}
	if got := testutil.ToFloat64(m.DetectionsTotal.WithLabelValues("no")); got != 2 {
		t.Errorf("detections without hand = %v", got)
	}
	if got := testutil.ToFloat64(m.Calibrated); got != 1 {
		t.Errorf("calibrated = %v", got)
	}
	if got := testutil.ToFloat64(m.VolumeLevel); got != 0.4 {
		t.Errorf("level = %v, want 0.4", got)
	}
	if got := testutil.ToFloat64(m.MixerErrorsTotal); got != 1 {
		t.Errorf("mixer errors = %v", got)
	}

	m.ObserveTransition("hand lost", false)
	if got := testutil.ToFloat64(m.Calibrated); got != 0 {
		t.Errorf("calibrated after loss = %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.FramesTotal.Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "gesturevol_frames_total 3") {
		t.Errorf("frames counter missing from exposition:\n%s", body)
	}
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.FramesTotal.Inc()
	if testutil.ToFloat64(b.FramesTotal) != 0 {
		t.Error("registries should not share collectors")
	}
}
