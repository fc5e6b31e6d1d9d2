package app

import (
	"github.com/ayusman/gesturevol/internal/store"
)

func (a *App) startSession() {
	if a.store == nil {
		return
	}
	sess := &store.Session{
		CameraID:  a.cfg.Camera.Device,
		Backend:   a.mixer.Name(),
		StartedAt: a.now(),
	}
	if err := a.store.Sessions().Start(sess); err != nil {
		a.logger.Warn("record session start", "error", err)
		return
	}
	a.mu.Lock()
	a.sessionID = sess.ID
	a.frameCount = 0
	a.mu.Unlock()
	a.logger.Debug("session started", "session", sess.ID)
}

func (a *App) endSession(reason string) {
	a.mu.RLock()
	id, frames := a.sessionID, a.frameCount
	a.mu.RUnlock()
	if a.store == nil || id == "" {
		return
	}
	if err := a.store.Sessions().End(id, frames, reason); err != nil {
		a.logger.Warn("record session end", "error", err)
	}
}

// recordCalibration stores the calibration that just happened. It is
// history only.
func (a *App) recordCalibration() {
	span, ok := a.controller.MaxDistance()
	if !ok {
		return
	}
	thumb, index, _ := a.controller.Tips()
	a.logger.Info("calibrated", "max_distance", span, "thumb", thumb, "index", index)

	id := a.SessionID()
	if a.store == nil || id == "" {
		return
	}
	err := a.store.Calibrations().Create(&store.Calibration{
		SessionID:   id,
		MaxDistance: span,
		ThumbX:      thumb.X,
		ThumbY:      thumb.Y,
		IndexX:      index.X,
		IndexY:      index.Y,
		CreatedAt:   a.now(),
	})
	if err != nil {
		a.logger.Warn("record calibration", "error", err)
	}
}
