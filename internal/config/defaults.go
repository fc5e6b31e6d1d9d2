package config

const (
	defaultCameraDevice      = 0
	defaultCameraWidth       = 640
	defaultCameraHeight      = 480
	defaultIdleFPS           = 5
	defaultActiveFPS         = 30
	defaultIdleTimeoutMs     = 2000
	defaultMotionThreshold   = 1.0
	defaultMaxHands          = 2
	defaultModelComplexity   = 1
	defaultMinDetectionConf  = 0.5
	defaultMinTrackingConf   = 0.5
	defaultHandIndex         = 0
	defaultVolumeBackend     = BackendSystem
	defaultVolumeOffset      = 10.0
	defaultPluginDir         = "~/.gesturevol/plugins"
	defaultPluginName        = "system-control"
	defaultPluginTimeoutMs   = 2000
	defaultDataDir           = "~/.gesturevol"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultListenAddr        = "127.0.0.1:8086"
	defaultWindowTitle       = "Result"
	defaultBlinkIntervalMs   = 500
	defaultDetectorIdleSecs  = 30
	defaultHistoryListLength = 20
)

// Volume backends.
const (
	BackendSystem = "system"
	BackendPlugin = "plugin"
	BackendNone   = "none"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Camera: Camera{
			Device:          defaultCameraDevice,
			Width:           defaultCameraWidth,
			Height:          defaultCameraHeight,
			IdleFPS:         defaultIdleFPS,
			ActiveFPS:       defaultActiveFPS,
			IdleTimeoutMs:   defaultIdleTimeoutMs,
			MotionThreshold: defaultMotionThreshold,
		},
		Detector: Detector{
			MaxHands:         defaultMaxHands,
			ModelComplexity:  defaultModelComplexity,
			MinDetectionConf: defaultMinDetectionConf,
			MinTrackingConf:  defaultMinTrackingConf,
			HandIndex:        defaultHandIndex,
			IdleShutdownSecs: defaultDetectorIdleSecs,
		},
		Volume: Volume{
			Backend:         defaultVolumeBackend,
			Offset:          defaultVolumeOffset,
			Dedupe:          true,
			PluginDir:       defaultPluginDir,
			PluginName:      defaultPluginName,
			PluginTimeoutMs: defaultPluginTimeoutMs,
		},
		Display: Display{
			Window:          true,
			Title:           defaultWindowTitle,
			ShowFPS:         true,
			DrawLandmarks:   true,
			BlinkIntervalMs: defaultBlinkIntervalMs,
		},
		Server: Server{
			Enabled: false,
			Listen:  defaultListenAddr,
		},
		Store: Store{
			Enabled:     true,
			DataDir:     defaultDataDir,
			HistorySize: defaultHistoryListLength,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
