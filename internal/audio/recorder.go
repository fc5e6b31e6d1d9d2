package audio

import (
	"context"
	"sync"
)

// Recorder is an in-memory Mixer. It backs --dry-run and the none backend
// and lets tests inspect every scalar written.
type Recorder struct {
	mu      sync.Mutex
	current float64
	writes  []float64
	err     error
}

// NewRecorder creates a Recorder at zero volume.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Name implements Mixer.
func (r *Recorder) Name() string { return "recorder" }

// SetScalar implements Mixer.
func (r *Recorder) SetScalar(_ context.Context, v float64) error {
	if err := CheckScalar(v); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.current = v
	r.writes = append(r.writes, v)
	return nil
}

// Scalar implements Mixer.
func (r *Recorder) Scalar(context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.err
}

// Writes returns a copy of every scalar written.
func (r *Recorder) Writes() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.writes...)
}

// SetError makes subsequent calls fail with err. Pass nil to clear.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}
