package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ayusman/gesturevol/internal/plugin"
)

type fakeBackend struct {
	pct   int
	muted bool
}

func (f *fakeBackend) SetPercent(pct int) error { f.pct = pct; return nil }
func (f *fakeBackend) Percent() (int, error)    { return f.pct, nil }
func (f *fakeBackend) ToggleMute() error        { f.muted = !f.muted; return nil }

func TestHandleVolumeSet(t *testing.T) {
	b := &fakeBackend{}
	resp := handle(b, plugin.Request{Action: plugin.ActionVolumeSet, Params: json.RawMessage(`{"level":0.4}`)})
	if !resp.Success {
		t.Fatalf("unexpected failure: %s", resp.Error)
	}
	if b.pct != 40 {
		t.Errorf("pct = %d, want 40", b.pct)
	}
}

func TestHandleVolumeSetOutOfRange(t *testing.T) {
	b := &fakeBackend{pct: 12}
	resp := handle(b, plugin.Request{Action: plugin.ActionVolumeSet, Params: json.RawMessage(`{"level":1.5}`)})
	if resp.Success {
		t.Fatal("expected failure")
	}
	if b.pct != 12 {
		t.Errorf("volume changed to %d", b.pct)
	}
}

func TestHandleVolumeGet(t *testing.T) {
	resp := handle(&fakeBackend{pct: 75}, plugin.Request{Action: plugin.ActionVolumeGet})
	if !resp.Success {
		t.Fatalf("unexpected failure: %s", resp.Error)
	}
	var p plugin.VolumeParams
	if err := json.Unmarshal(resp.Data, &p); err != nil {
		t.Fatal(err)
	}
	if p.Level != 0.75 {
		t.Errorf("level = %v, want 0.75", p.Level)
	}
}

func TestHandleUnknownAction(t *testing.T) {
	resp := handle(&fakeBackend{}, plugin.Request{Action: "brightness-up"})
	if resp.Success || !strings.Contains(resp.Error, "unknown action") {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestAmixerPercent(t *testing.T) {
	out := "Simple mixer control 'Master',0\n  Front Left: Playback 42000 [64%] [on]\n"
	a := amixer{run: func(string, ...string) (string, error) { return out, nil }}
	pct, err := a.Percent()
	if err != nil {
		t.Fatal(err)
	}
	if pct != 64 {
		t.Errorf("pct = %d, want 64", pct)
	}
}

func TestAmixerSetArgs(t *testing.T) {
	var got []string
	a := amixer{run: func(name string, args ...string) (string, error) {
		got = append([]string{name}, args...)
		return "", nil
	}}
	if err := a.SetPercent(40); err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, " ") != "amixer -q -M set Master 40%" {
		t.Errorf("unexpected command %v", got)
	}
}
