package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCamera(); err != nil {
		return err
	}
	if err := c.validateDetector(); err != nil {
		return err
	}
	if err := c.validateVolume(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Server.Enabled && c.Server.Listen == "" {
		return errors.New("server.listen must be set when server.enabled is true")
	}
	if c.Display.BlinkIntervalMs <= 0 {
		return errors.New("display.blink_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateCamera() error {
	if c.Camera.Device < 0 {
		return errors.New("camera.device must be >= 0")
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("camera resolution must be positive, got %dx%d", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0 {
		return errors.New("camera.idle_fps and camera.active_fps must be positive")
	}
	if c.Camera.IdleFPS > c.Camera.ActiveFPS {
		return errors.New("camera.idle_fps must not exceed camera.active_fps")
	}
	if c.Camera.MotionThreshold <= 0 || c.Camera.MotionThreshold > 100 {
		return errors.New("camera.motion_threshold must be in (0, 100]")
	}
	return nil
}

func (c *Config) validateDetector() error {
	if c.Detector.MaxHands < 1 {
		return errors.New("detector.max_hands must be >= 1")
	}
	if c.Detector.HandIndex < 0 || c.Detector.HandIndex >= c.Detector.MaxHands {
		return fmt.Errorf("detector.hand_index must be in [0, %d)", c.Detector.MaxHands)
	}
	if c.Detector.ModelComplexity < 0 || c.Detector.ModelComplexity > 1 {
		return errors.New("detector.model_complexity must be 0 or 1")
	}
	if !unit(c.Detector.MinDetectionConf) || !unit(c.Detector.MinTrackingConf) {
		return errors.New("detector confidences must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateVolume() error {
	switch c.Volume.Backend {
	case BackendSystem, BackendNone:
	case BackendPlugin:
		if c.Volume.PluginName == "" {
			return errors.New("volume.plugin_name must be set when volume.backend is plugin")
		}
		if c.Volume.PluginTimeoutMs <= 0 {
			return errors.New("volume.plugin_timeout_ms must be positive")
		}
	default:
		return fmt.Errorf("volume.backend: unsupported value %q", c.Volume.Backend)
	}
	if c.Volume.Offset < 0 || c.Volume.Offset >= 100 {
		return errors.New("volume.offset must be in [0, 100)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
