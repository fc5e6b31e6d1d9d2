package overlay

import "time"

// Blinker toggles visibility every interval, starting visible.
type Blinker struct {
	interval time.Duration
	start    time.Time
}

// NewBlinker creates a Blinker. A non-positive interval never blinks.
func NewBlinker(interval time.Duration) *Blinker {
	return &Blinker{interval: interval}
}

// Visible reports whether the blinking element is shown at now.
func (b *Blinker) Visible(now time.Time) bool {
	if b.interval <= 0 {
		return true
	}
	if b.start.IsZero() {
		b.start = now
	}
	elapsed := now.Sub(b.start)
	if elapsed < 0 {
		b.start = now
		return true
	}
	return (elapsed/b.interval)%2 == 0
}

// FPSMeter reports the instantaneous frame rate from consecutive ticks.
type FPSMeter struct {
	prev time.Time
}

// Tick records a frame at now and returns 1/(now-prev). The first tick
// returns 0.
func (m *FPSMeter) Tick(now time.Time) float64 {
	prev := m.prev
	m.prev = now
	if prev.IsZero() {
		return 0
	}
	dt := now.Sub(prev).Seconds()
	if dt <= 0 {
		return 0
	}
	return 1 / dt
}
