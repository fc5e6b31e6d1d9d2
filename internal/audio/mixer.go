// Package audio forwards volume scalars to the operating system mixer.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ayusman/gesturevol/internal/config"
	"github.com/ayusman/gesturevol/internal/plugin"
)

// ErrOutOfRange is returned for scalars outside [0, 1].
var ErrOutOfRange = errors.New("volume scalar out of range")

// Mixer sets and reads the master output volume as a scalar in [0, 1].
type Mixer interface {
	SetScalar(ctx context.Context, v float64) error
	Scalar(ctx context.Context) (float64, error)
	Name() string
}

// CheckScalar returns ErrOutOfRange when v is outside [0, 1] or NaN.
func CheckScalar(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %v", ErrOutOfRange, v)
	}
	return nil
}

// Percent converts a scalar to a rounded integer percent.
func Percent(v float64) int {
	return int(math.Round(v * 100))
}

// NewFromConfig builds the mixer selected by cfg.Volume.Backend. The none
// backend returns a Recorder so the loop still runs without touching audio.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (Mixer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m Mixer
	switch cfg.Volume.Backend {
	case config.BackendSystem:
		m = NewSystemMixer()
	case config.BackendPlugin:
		manager := plugin.NewManager(cfg.Volume.PluginDir, logger)
		if err := manager.Discover(); err != nil {
			return nil, fmt.Errorf("discover plugins: %w", err)
		}
		p, err := manager.Get(cfg.Volume.PluginName)
		if err != nil {
			return nil, err
		}
		if !p.Supports(plugin.ActionVolumeSet) {
			return nil, fmt.Errorf("plugin %s does not support %s", p.Manifest.Name, plugin.ActionVolumeSet)
		}
		timeout := time.Duration(cfg.Volume.PluginTimeoutMs) * time.Millisecond
		m = NewPluginMixer(p, plugin.NewExecutor(timeout))
	case config.BackendNone:
		m = NewRecorder()
	default:
		return nil, fmt.Errorf("unknown volume backend %q", cfg.Volume.Backend)
	}

	if cfg.Volume.Dedupe {
		m = NewDeduped(m)
	}
	logger.Info("volume backend selected", "backend", m.Name())
	return m, nil
}
