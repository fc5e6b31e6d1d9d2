package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/gesturevol/internal/app"
	"github.com/ayusman/gesturevol/internal/audio"
	"github.com/ayusman/gesturevol/internal/capture"
	"github.com/ayusman/gesturevol/internal/config"
	"github.com/ayusman/gesturevol/internal/detector"
	"github.com/ayusman/gesturevol/internal/logging"
	"github.com/ayusman/gesturevol/internal/metrics"
	"github.com/ayusman/gesturevol/internal/overlay"
	"github.com/ayusman/gesturevol/internal/server"
	"github.com/ayusman/gesturevol/internal/store"
	"github.com/ayusman/gesturevol/internal/tray"
	"github.com/ayusman/gesturevol/internal/volume"
)

type runFlags struct {
	camera   int
	noWindow bool
	tray     bool
	dryRun   bool
	listen   string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the camera and control loop",
		Long: `Start the camera and control loop.

Hold thumb and index finger apart and press SPACE to calibrate the maximum
span. Pinching then sets the volume. Press s to stop controlling and q to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applyRunFlags(cfg, cmd, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runControl(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVar(&flags.camera, "camera", 0, "Camera device index")
	cmd.Flags().BoolVar(&flags.noWindow, "no-window", false, "Run without the preview window")
	cmd.Flags().BoolVar(&flags.tray, "tray", false, "Show a system tray menu instead of the window")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Compute volume levels without touching the mixer")
	cmd.Flags().StringVar(&flags.listen, "listen", "", "Enable the HTTP API on this address")
	return cmd
}

// applyRunFlags overrides cfg with flags the user set explicitly.
func applyRunFlags(cfg *config.Config, cmd *cobra.Command, flags runFlags) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("camera") {
		cfg.Camera.Device = flags.camera
	}
	if flags.noWindow {
		cfg.Display.Window = false
	}
	if flags.tray {
		cfg.Display.Tray = true
	}
	if cfg.Display.Tray {
		cfg.Display.Window = false
	}
	if flags.dryRun {
		cfg.Volume.Backend = config.BackendNone
	}
	if listen := strings.TrimSpace(flags.listen); listen != "" {
		cfg.Server.Enabled = true
		cfg.Server.Listen = listen
	}
}

func detectorConfig(cfg *config.Config) detector.Config {
	return detector.Config{
		MaxHands:        cfg.Detector.MaxHands,
		ModelComplexity: cfg.Detector.ModelComplexity,
		MinConfidence:   cfg.Detector.MinDetectionConf,
		MinTrackingConf: cfg.Detector.MinTrackingConf,
		Script:          cfg.Detector.Script,
		Python:          cfg.Detector.Python,
		IdleShutdown:    time.Duration(cfg.Detector.IdleShutdownSecs) * time.Second,
	}
}

func runControl(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(logger)

	lock, err := app.AcquireLock(cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release lock", "error", err)
		}
	}()

	var st *store.Store
	if cfg.Store.Enabled {
		st, err = store.New(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer st.Close()
	}

	mixer, err := audio.NewFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("volume backend: %w", err)
	}

	det, err := detector.NewMediaPipeDetector(detectorConfig(cfg), logger)
	if err != nil {
		if errors.Is(err, detector.ErrScriptNotFound) {
			return fmt.Errorf("%w: set detector.script or install %s", err, detector.ScriptName)
		}
		return fmt.Errorf("hand detector: %w", err)
	}

	camera := capture.NewCamera(capture.Options{
		DeviceID: cfg.Camera.Device,
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
		FPS:      cfg.Camera.IdleFPS,
	})

	events := make(chan volume.Event, app.EventQueueSize)
	m := metrics.New()

	var display overlay.Display = overlay.Headless{}
	if cfg.Display.Window {
		display = overlay.NewWindow(cfg.Display.Title)
	}

	var tr *tray.Tray
	var listener app.StateListener
	if cfg.Display.Tray {
		tr = tray.New(events)
		listener = tr
	}

	var frames *server.FrameBuffer
	var hub *server.Hub
	if cfg.Server.Enabled {
		frames = server.NewFrameBuffer()
		hub = server.NewHub(logger)
	}

	a, err := app.New(app.Options{
		Config:   cfg,
		Camera:   camera,
		Detector: det,
		Mixer:    mixer,
		Display:  display,
		Store:    st,
		Metrics:  m,
		Frames:   frames,
		Hub:      hub,
		Listener: listener,
		Events:   events,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			Status:       func() any { return a.Status() },
			Events:       events,
			Store:        st,
			HistoryLimit: cfg.Store.HistorySize,
			Frames:       frames,
			Hub:          hub,
			Metrics:      m.Handler(),
			Logger:       logger,
		})
		go func() {
			if err := srv.Serve(ctx, cfg.Server.Listen); err != nil {
				logger.Error("http server stopped", "error", err)
			}
		}()
	}

	if tr == nil {
		return a.Run(ctx)
	}

	// The tray owns the main thread; the loop runs beside it.
	tr.OnExit(cancel)
	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
		tr.Quit()
	}()
	tr.Run()
	return <-done
}
