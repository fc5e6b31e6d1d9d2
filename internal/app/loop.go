package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ayusman/gesturevol/internal/audio"
	"github.com/ayusman/gesturevol/internal/detector"
	"github.com/ayusman/gesturevol/internal/overlay"
	"github.com/ayusman/gesturevol/internal/store"
	"github.com/ayusman/gesturevol/internal/volume"
)

// keyPollMs is how long the window waits for a key each frame.
const keyPollMs = 1

// Run opens the camera and processes frames until a quit event, ctx
// cancellation or a camera read failure. Quit and cancellation return nil;
// a read failure returns an error wrapping ErrCameraRead.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			a.logger.Warn("close camera", "error", err)
		}
		a.motion.Close()
	}()

	a.camera.SetFPS(a.governor.FPS())
	if a.metrics != nil {
		a.metrics.CameraFPS.Set(float64(a.governor.FPS()))
	}
	a.logInitialVolume(ctx)
	a.startSession()

	reason := store.EndQuit
	defer func() { a.endSession(reason) }()

	a.logger.Info("control loop started", "backend", a.mixer.Name(), "offset", a.controller.Offset())
	for {
		select {
		case <-ctx.Done():
			reason = store.EndCancelled
			a.logger.Info("control loop cancelled")
			return nil
		default:
		}

		quit, err := a.Step(ctx)
		if err != nil {
			reason = store.EndCameraError
			return err
		}
		if quit {
			a.logger.Info("quit requested")
			return nil
		}
	}
}

// Step processes a single frame: read, motion gating, detection, volume
// update, rendering, then pending events. It reports whether a quit event
// was received. The camera must be open.
func (a *App) Step(ctx context.Context) (bool, error) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCameraRead, err)
	}
	defer frame.Close()

	now := a.now()
	a.mu.Lock()
	a.frameCount++
	a.mu.Unlock()
	if a.metrics != nil {
		a.metrics.FramesTotal.Inc()
	}

	motion, _ := a.motion.Detect(frame)
	width, height := frame.Cols(), frame.Rows()

	started := time.Now()
	hands, err := a.detector.Detect(frame)
	if err != nil {
		a.logger.Warn("hand detection failed", "error", err)
		hands = nil
	}
	landmarks := detector.HandPositions(hands, a.cfg.Detector.HandIndex, width, height)
	reading, calibrated := a.controller.Observe(landmarks)
	thumb, index, visible := a.controller.Tips()
	if a.metrics != nil {
		a.metrics.ObserveDetection(time.Since(started).Seconds(), visible)
	}

	if fps, changed := a.governor.Update(motion, visible, now); changed {
		a.camera.SetFPS(fps)
		if a.metrics != nil {
			a.metrics.CameraFPS.Set(float64(fps))
		}
		a.logger.Debug("camera frame rate changed", "fps", fps, "active", a.governor.Active())
	}

	if calibrated {
		a.writeVolume(ctx, reading.Scalar)
	}

	fps := a.fpsMeter.Tick(now)
	view := overlay.View{
		Phase:       a.controller.Phase(),
		Landmarks:   landmarks,
		HandVisible: visible,
		Thumb:       thumb,
		Index:       index,
		FPS:         fps,
		Notice:      a.currentNotice(now),
	}
	if calibrated {
		view.Reading = &reading
	}
	a.renderer.Draw(frame, view, now)
	a.display.Show(frame)
	if a.frames != nil {
		if err := a.frames.PublishMat(frame); err != nil {
			a.logger.Debug("publish preview frame", "error", err)
		}
	}
	a.publishStatus(fps)

	if a.handle(a.display.PollEvent(keyPollMs)) {
		return true, nil
	}
	for {
		select {
		case ev := <-a.events:
			if a.handle(ev) {
				return true, nil
			}
		default:
			return false, nil
		}
	}
}

// handle applies ev to the controller and reports whether it is a quit.
func (a *App) handle(ev volume.Event) bool {
	switch ev {
	case volume.EventNone:
		return false
	case volume.EventQuit:
		return true
	}

	if err := a.controller.Apply(ev); err != nil {
		a.logger.Info("event ignored", "event", ev.String(), "reason", err)
		a.setNotice(fmt.Sprintf("%s ignored: %v", ev, err))
	} else {
		a.setNotice("")
	}
	a.publishStatus(a.Status().FPS)
	return false
}

func (a *App) writeVolume(ctx context.Context, scalar float64) {
	err := a.mixer.SetScalar(ctx, scalar)
	if a.metrics != nil {
		a.metrics.ObserveVolumeWrite(scalar, err)
	}
	if err != nil {
		a.logger.Warn("volume update failed", "scalar", scalar, "error", err)
	}
}

func (a *App) logInitialVolume(ctx context.Context) {
	v, err := a.mixer.Scalar(ctx)
	if err != nil {
		a.logger.Debug("read current volume", "error", err)
		return
	}
	a.logger.Info("current output volume", "percent", audio.Percent(v))
}

// publishStatus refreshes the status document and notifies listeners when
// the phase, hand visibility or level changed.
func (a *App) publishStatus(fps float64) {
	state := a.controller.Snapshot()
	level := -1
	if state.Phase == volume.Calibrated && state.Last != nil {
		level = audio.Percent(state.Last.Scalar)
	}

	notice := a.currentNotice(a.now())

	a.mu.Lock()
	a.status = Status{
		State:     state,
		Level:     level,
		FPS:       fps,
		CameraFPS: a.camera.FPS(),
		Frames:    a.frameCount,
		SessionID: a.sessionID,
		Backend:   a.mixer.Name(),
		LastError: notice,
	}
	status := a.status
	sig := signature{phase: state.Phase, visible: state.HandVisible, level: level, notice: notice}
	changed := sig != a.lastSig
	a.lastSig = sig
	a.mu.Unlock()

	if !changed {
		return
	}
	if a.hub != nil {
		a.hub.Broadcast(status)
	}
	if a.listener != nil {
		a.listener.Update(state)
	}
}

func (a *App) setNotice(msg string) {
	a.mu.Lock()
	a.notice, a.noticeAt = msg, a.now()
	a.mu.Unlock()
}

// currentNotice returns the rejected-event message while it is fresh.
func (a *App) currentNotice(now time.Time) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.notice == "" || now.Sub(a.noticeAt) >= noticeDuration {
		return ""
	}
	return a.notice
}
