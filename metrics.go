// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package wavecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the streaming pipelines.
type Metrics struct {
	BytesRecorded   prometheus.Counter
	BytesPlayed     prometheus.Counter
	PlaybackLoops   prometheus.Counter
	SourceUnderruns prometheus.Counter
	SessionDuration prometheus.Histogram
}

// NewMetrics creates and registers pipeline metrics on reg. A nil reg
// creates an isolated registry, handy for tests and embedded use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		BytesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavecycle_bytes_recorded_total",
			Help: "Total sample bytes written to the recording file",
		}),
		BytesPlayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavecycle_bytes_played_total",
			Help: "Total sample bytes pushed to the hardware sink",
		}),
		PlaybackLoops: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavecycle_playback_loops_total",
			Help: "Total number of playback restarts at end of data",
		}),
		SourceUnderruns: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavecycle_source_underruns_total",
			Help: "Total number of zero byte reads from the hardware source",
		}),
		SessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wavecycle_capture_session_duration_seconds",
			Help:    "Wall clock duration of capture sessions",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~17 minutes
		}),
	}
}

func (m *Metrics) RecordCaptured(n int) {
	m.BytesRecorded.Add(float64(n))
}

func (m *Metrics) RecordPlayed(n int) {
	m.BytesPlayed.Add(float64(n))
}

func (m *Metrics) RecordLoopRestart() {
	m.PlaybackLoops.Inc()
}

func (m *Metrics) RecordUnderrun() {
	m.SourceUnderruns.Inc()
}

func (m *Metrics) RecordSessionDuration(seconds float64) {
	m.SessionDuration.Observe(seconds)
}
