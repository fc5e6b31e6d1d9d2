package audio

import (
	"context"
	"fmt"

	volumego "github.com/itchyny/volume-go"
)

// SystemMixer drives the master output through volume-go, which shells out
// to pactl or amixer on Linux, osascript on macOS and Core Audio on Windows.
type SystemMixer struct {
	set func(int) error
	get func() (int, error)
}

// NewSystemMixer creates a SystemMixer.
func NewSystemMixer() *SystemMixer {
	return &SystemMixer{set: volumego.SetVolume, get: volumego.GetVolume}
}

// Name implements Mixer.
func (s *SystemMixer) Name() string { return "system" }

// SetScalar implements Mixer.
func (s *SystemMixer) SetScalar(ctx context.Context, v float64) error {
	if err := CheckScalar(v); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.set(Percent(v)); err != nil {
		return fmt.Errorf("set system volume: %w", err)
	}
	return nil
}

// Scalar implements Mixer.
func (s *SystemMixer) Scalar(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pct, err := s.get()
	if err != nil {
		return 0, fmt.Errorf("get system volume: %w", err)
	}
	return float64(pct) / 100, nil
}
