// Package metrics exposes Prometheus collectors for the diarization pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "diarization_requests_total",
		Help: "Total diarization requests received",
	})

	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "diarization_request_duration_seconds",
		Help:    "End-to-end request processing latency",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "diarization_stage_duration_seconds",
		Help:    "Per-stage pipeline latency",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	}, []string{"stage"})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "diarization_errors_total",
		Help: "Pipeline error counts by stage",
	}, []string{"stage"})

	ClipsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "diarization_clips_extracted_total",
		Help: "Total speaker clips produced",
	})
)
