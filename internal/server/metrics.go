package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metrics struct {
	validations  *prometheus.CounterVec
	frames       *prometheus.CounterVec
	frameSeconds prometheus.Histogram
	sessions     prometheus.Gauge
}

// Frame outcomes.
const (
	outcomeCurve   = "curve"
	outcomeNoCurve = "no_curve"
	outcomeError   = "error"
)

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "implicit_validations_total",
				Help: "Equations validated, by result.",
			},
			[]string{"result"},
		),
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "implicit_frames_total",
				Help: "Frames rendered, by outcome.",
			},
			[]string{"outcome"},
		),
		frameSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "implicit_frame_duration_seconds",
				Help:    "Time to evaluate and contour one frame.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "implicit_sessions",
				Help: "Live sessions.",
			},
		),
	}
	reg.MustRegister(m.validations, m.frames, m.frameSeconds, m.sessions)
	reg.MustRegister(collectors.NewGoCollector())
	return m
}
