package audio

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/gesturevol/internal/config"
	"github.com/ayusman/gesturevol/internal/logging"
	"github.com/ayusman/gesturevol/internal/plugin"
)

func TestCheckScalar(t *testing.T) {
	tests := []struct {
		v    float64
		want bool
	}{
		{0, true},
		{0.4, true},
		{1, true},
		{-0.01, false},
		{1.01, false},
		{math.NaN(), false},
	}
	for _, tt := range tests {
		err := CheckScalar(tt.v)
		if (err == nil) != tt.want {
			t.Errorf("CheckScalar(%v) = %v", tt.v, err)
		}
		if err != nil && !errors.Is(err, ErrOutOfRange) {
			t.Errorf("CheckScalar(%v) should wrap ErrOutOfRange", tt.v)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := map[float64]int{0: 0, 0.4: 40, 0.9: 90, 0.456: 46, 1: 100}
	for v, want := range tests {
		if got := Percent(v); got != want {
			t.Errorf("Percent(%v) = %d, want %d", v, got, want)
		}
	}
}

func TestSystemMixer(t *testing.T) {
	var set int
	m := &SystemMixer{
		set: func(p int) error { set = p; return nil },
		get: func() (int, error) { return 55, nil },
	}
	ctx := context.Background()

	if err := m.SetScalar(ctx, 0.4); err != nil {
		t.Fatalf("SetScalar: %v", err)
	}
	if set != 40 {
		t.Errorf("set %d, want 40", set)
	}
	if err := m.SetScalar(ctx, 2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	v, err := m.Scalar(ctx)
	if err != nil || v != 0.55 {
		t.Errorf("Scalar = %v, %v", v, err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := m.SetScalar(cancelled, 0.5); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	for _, v := range []float64{0.1, 0.9, 0.4} {
		if err := r.SetScalar(ctx, v); err != nil {
			t.Fatal(err)
		}
	}
	if got := r.Writes(); len(got) != 3 || got[2] != 0.4 {
		t.Errorf("writes = %v", got)
	}
	if v, _ := r.Scalar(ctx); v != 0.4 {
		t.Errorf("current = %v", v)
	}

	boom := errors.New("boom")
	r.SetError(boom)
	if err := r.SetScalar(ctx, 0.2); !errors.Is(err, boom) {
		t.Errorf("expected injected error, got %v", err)
	}
}

func TestDeduped(t *testing.T) {
	r := NewRecorder()
	d := NewDeduped(r)
	ctx := context.Background()

	for _, v := range []float64{0.40, 0.401, 0.399, 0.41, 0.41, 0.40} {
		if err := d.SetScalar(ctx, v); err != nil {
			t.Fatal(err)
		}
	}
	want := []float64{0.40, 0.41, 0.40}
	got := r.Writes()
	if len(got) != len(want) {
		t.Fatalf("writes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("write %d = %v, want %v", i, got[i], want[i])
		}
	}

	d.Reset()
	if err := d.SetScalar(ctx, 0.40); err != nil {
		t.Fatal(err)
	}
	if len(r.Writes()) != 4 {
		t.Error("expected write after Reset")
	}
	if d.Unwrap() != Mixer(r) {
		t.Error("Unwrap should return the inner mixer")
	}
}

func TestDedupedRetriesAfterError(t *testing.T) {
	r := NewRecorder()
	d := NewDeduped(r)
	ctx := context.Background()

	r.SetError(errors.New("busy"))
	if err := d.SetScalar(ctx, 0.5); err == nil {
		t.Fatal("expected error")
	}
	r.SetError(nil)
	if err := d.SetScalar(ctx, 0.5); err != nil {
		t.Fatal(err)
	}
	if len(r.Writes()) != 1 {
		t.Errorf("expected retried write, got %v", r.Writes())
	}
}

func writeVolumePlugin(t *testing.T, dir string) string {
	t.Helper()
	pluginDir := filepath.Join(dir, "fake-mixer")
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name":"fake-mixer","version":"1.0.0","executable":"run.sh","actions":["volume-set","volume-get"]}`
	if err := os.WriteFile(filepath.Join(pluginDir, plugin.ManifestFile), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	// Persist the last request body so the test can inspect it.
	script := `#!/bin/sh
req=$(cat)
echo "$req" > "$(dirname "$0")/last.json"
case "$req" in
  *volume-get*) echo '{"success":true,"data":{"level":0.25}}' ;;
  *) echo '{"success":true}' ;;
esac
`
	if err := os.WriteFile(filepath.Join(pluginDir, "run.sh"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return pluginDir
}

func TestPluginMixer(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell plugins are not supported on windows")
	}
	dir := t.TempDir()
	pluginDir := writeVolumePlugin(t, dir)

	cfg := config.Default()
	cfg.Volume.Backend = config.BackendPlugin
	cfg.Volume.PluginDir = dir
	cfg.Volume.PluginName = "fake-mixer"
	cfg.Volume.Dedupe = false

	m, err := NewFromConfig(&cfg, logging.Discard())
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if m.Name() != "plugin:fake-mixer" {
		t.Errorf("name = %s", m.Name())
	}

	ctx := context.Background()
	if err := m.SetScalar(ctx, 0.4); err != nil {
		t.Fatalf("SetScalar: %v", err)
	}
	last, err := os.ReadFile(filepath.Join(pluginDir, "last.json"))
	if err != nil {
		t.Fatal(err)
	}
	if want := `"level":0.4`; !strings.Contains(string(last), want) {
		t.Errorf("request %s missing %s", last, want)
	}

	v, err := m.Scalar(ctx)
	if err != nil || v != 0.25 {
		t.Errorf("Scalar = %v, %v", v, err)
	}
}

func TestPluginMixerFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell plugins are not supported on windows")
	}
	dir := t.TempDir()
	pluginDir := filepath.Join(dir, "broken")
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(pluginDir, plugin.ManifestFile),
		[]byte(`{"name":"broken","executable":"run.sh","actions":["volume-set"]}`), 0o644)
	_ = os.WriteFile(filepath.Join(pluginDir, "run.sh"),
		[]byte("#!/bin/sh\ncat >/dev/null\necho '{\"success\":false,\"error\":\"no device\"}'\n"), 0o755)

	m := plugin.NewManager(dir, logging.Discard())
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}
	p, err := m.Get("broken")
	if err != nil {
		t.Fatal(err)
	}
	mixer := NewPluginMixer(p, plugin.NewExecutor(5*time.Second))
	if err := mixer.SetScalar(context.Background(), 0.5); err == nil || !strings.Contains(err.Error(), "no device") {
		t.Errorf("expected plugin error, got %v", err)
	}
	if _, err := mixer.Scalar(context.Background()); err == nil {
		t.Error("expected unsupported volume-get error")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Volume.Backend = config.BackendNone
	m, err := NewFromConfig(&cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	d, ok := m.(*Deduped)
	if !ok {
		t.Fatalf("expected Deduped wrapper, got %T", m)
	}
	if _, ok := d.Unwrap().(*Recorder); !ok {
		t.Errorf("expected Recorder, got %T", d.Unwrap())
	}

	cfg.Volume.Backend = "alsa"
	if _, err := NewFromConfig(&cfg, logging.Discard()); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg.Volume.Backend = config.BackendPlugin
	cfg.Volume.PluginDir = t.TempDir()
	if _, err := NewFromConfig(&cfg, logging.Discard()); !errors.Is(err, plugin.ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}
