package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "GESTUREVOL_"

// Camera contains capture device settings.
type Camera struct {
	Device          int     `toml:"device" env:"DEVICE"`
	Width           int     `toml:"width" env:"WIDTH"`
	Height          int     `toml:"height" env:"HEIGHT"`
	IdleFPS         int     `toml:"idle_fps" env:"IDLE_FPS"`
	ActiveFPS       int     `toml:"active_fps" env:"ACTIVE_FPS"`
	IdleTimeoutMs   int     `toml:"idle_timeout_ms" env:"IDLE_TIMEOUT_MS"`
	MotionThreshold float64 `toml:"motion_threshold" env:"MOTION_THRESHOLD"`
}

// Detector contains hand landmark model settings.
type Detector struct {
	// Script overrides the mediapipe service location. Empty means search
	// the usual install locations.
	Script           string  `toml:"script" env:"SCRIPT"`
	Python           string  `toml:"python" env:"PYTHON"`
	MaxHands         int     `toml:"max_hands" env:"MAX_HANDS"`
	ModelComplexity  int     `toml:"model_complexity" env:"MODEL_COMPLEXITY"`
	MinDetectionConf float64 `toml:"min_detection_confidence" env:"MIN_DETECTION_CONFIDENCE"`
	MinTrackingConf  float64 `toml:"min_tracking_confidence" env:"MIN_TRACKING_CONFIDENCE"`
	// HandIndex selects which detected hand drives the volume.
	HandIndex        int `toml:"hand_index" env:"HAND_INDEX"`
	IdleShutdownSecs int `toml:"idle_shutdown_secs" env:"IDLE_SHUTDOWN_SECS"`
}

// Volume contains output mixer settings.
type Volume struct {
	Backend         string  `toml:"backend" env:"BACKEND"`
	Offset          float64 `toml:"offset" env:"OFFSET"`
	Dedupe          bool    `toml:"dedupe" env:"DEDUPE"`
	PluginDir       string  `toml:"plugin_dir" env:"PLUGIN_DIR"`
	PluginName      string  `toml:"plugin_name" env:"PLUGIN_NAME"`
	PluginTimeoutMs int     `toml:"plugin_timeout_ms" env:"PLUGIN_TIMEOUT_MS"`
}

// Display contains on-screen feedback settings.
type Display struct {
	Window          bool   `toml:"window" env:"WINDOW"`
	Title           string `toml:"title" env:"TITLE"`
	ShowFPS         bool   `toml:"show_fps" env:"SHOW_FPS"`
	DrawLandmarks   bool   `toml:"draw_landmarks" env:"DRAW_LANDMARKS"`
	BlinkIntervalMs int    `toml:"blink_interval_ms" env:"BLINK_INTERVAL_MS"`
	Tray            bool   `toml:"tray" env:"TRAY"`
}

// Server contains the local status API settings.
type Server struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Listen  string `toml:"listen" env:"LISTEN"`
}

// Store contains history database settings.
type Store struct {
	Enabled     bool   `toml:"enabled" env:"ENABLED"`
	DataDir     string `toml:"data_dir" env:"DATA_DIR"`
	HistorySize int    `toml:"history_size" env:"HISTORY_SIZE"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"FORMAT"`
	Level  string `toml:"level" env:"LEVEL"`
}

// Config encapsulates all configuration values for gesturevol.
type Config struct {
	Camera   Camera   `toml:"camera" envPrefix:"CAMERA_"`
	Detector Detector `toml:"detector" envPrefix:"DETECTOR_"`
	Volume   Volume   `toml:"volume" envPrefix:"VOLUME_"`
	Display  Display  `toml:"display" envPrefix:"DISPLAY_"`
	Server   Server   `toml:"server" envPrefix:"SERVER_"`
	Store    Store    `toml:"store" envPrefix:"STORE_"`
	Logging  Logging  `toml:"logging" envPrefix:"LOG_"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gesturevol/config.toml")
}

// Load locates, parses and validates a configuration file, then applies
// environment overrides. A missing file is not an error; defaults are used.
// It returns the config, the resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	return load(path, os.Environ())
}

func load(path string, environ []string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: env.ToMap(environ),
	}); err != nil {
		return nil, "", false, fmt.Errorf("environment overrides: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gesturevol.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// DatabasePath returns the history database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Store.DataDir, "gesturevol.db")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Store.DataDir, "gesturevol.lock")
}

// EnsureDirectories creates the data directory.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Store.DataDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Store.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory %q: %w", c.Store.DataDir, err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
