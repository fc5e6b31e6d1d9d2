// Package metrics exposes Prometheus collectors for the control loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gesturevol"

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	FramesTotal       prometheus.Counter
	DetectionsTotal   *prometheus.CounterVec
	TransitionsTotal  *prometheus.CounterVec
	VolumeWritesTotal prometheus.Counter
	MixerErrorsTotal  prometheus.Counter
	DetectDuration    prometheus.Histogram
	VolumeLevel       prometheus.Gauge
	Calibrated        prometheus.Gauge
	CameraFPS         prometheus.Gauge
}

// New creates Metrics on a fresh registry with Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FramesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Total number of camera frames processed",
		}),
		DetectionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Total number of detector calls, by whether both fingertips were found",
		}, []string{"hand"}),
		TransitionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Total number of calibration phase changes, by reason",
		}, []string{"reason"}),
		VolumeWritesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "volume_writes_total",
			Help:      "Total number of volume scalars forwarded to the mixer",
		}),
		MixerErrorsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mixer_errors_total",
			Help:      "Total number of failed mixer writes",
		}),
		DetectDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detect_duration_seconds",
			Help:      "Hand landmark detection latency",
			Buckets:   []float64{0.005, 0.01, 0.02, 0.035, 0.05, 0.075, 0.1, 0.2, 0.5},
		}),
		VolumeLevel: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "volume_level",
			Help:      "Last volume scalar written, in [0, 1]",
		}),
		Calibrated: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calibrated",
			Help:      "1 while a calibration is active",
		}),
		CameraFPS: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "camera_fps",
			Help:      "Frame rate currently requested from the camera",
		}),
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveDetection counts a detector call and its latency.
func (m *Metrics) ObserveDetection(seconds float64, handFound bool) {
	label := "no"
	if handFound {
		label = "yes"
	}
	m.DetectionsTotal.WithLabelValues(label).Inc()
	m.DetectDuration.Observe(seconds)
}

// ObserveTransition records a phase change.
func (m *Metrics) ObserveTransition(reason string, calibrated bool) {
	m.TransitionsTotal.WithLabelValues(reason).Inc()
	if calibrated {
		m.Calibrated.Set(1)
	} else {
		m.Calibrated.Set(0)
	}
}

// ObserveVolumeWrite records the outcome of a mixer write.
func (m *Metrics) ObserveVolumeWrite(scalar float64, err error) {
	if err != nil {
		m.MixerErrorsTotal.Inc()
		return
	}
	m.VolumeWritesTotal.Inc()
	m.VolumeLevel.Set(scalar)
}
