package audio

import (
	"context"
	"sync"
)

// Deduped suppresses writes whose rounded percent equals the last
// successful write. Failed writes are retried on the next call.
type Deduped struct {
	inner Mixer

	mu   sync.Mutex
	last int
	set  bool
}

// NewDeduped wraps inner.
func NewDeduped(inner Mixer) *Deduped {
	return &Deduped{inner: inner}
}

// Name implements Mixer.
func (d *Deduped) Name() string { return d.inner.Name() }

// Unwrap returns the wrapped mixer.
func (d *Deduped) Unwrap() Mixer { return d.inner }

// SetScalar implements Mixer.
func (d *Deduped) SetScalar(ctx context.Context, v float64) error {
	if err := CheckScalar(v); err != nil {
		return err
	}
	pct := Percent(v)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.set && d.last == pct {
		return nil
	}
	if err := d.inner.SetScalar(ctx, v); err != nil {
		return err
	}
	d.last, d.set = pct, true
	return nil
}

// Scalar implements Mixer.
func (d *Deduped) Scalar(ctx context.Context) (float64, error) {
	return d.inner.Scalar(ctx)
}

// Reset forgets the last written value so the next write always goes through.
func (d *Deduped) Reset() {
	d.mu.Lock()
	d.set = false
	d.mu.Unlock()
}
