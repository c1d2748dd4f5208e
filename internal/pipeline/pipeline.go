// Package pipeline orchestrates one diarization request end to end:
// normalize, diarize, merge, extract, bracketed by telemetry snapshots and a
// request log record. Each request is processed independently and fail-fast;
// nothing here retries.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Korak-997/emma-wave/internal/apperr"
	"github.com/Korak-997/emma-wave/internal/audioproc"
	"github.com/Korak-997/emma-wave/internal/clips"
	"github.com/Korak-997/emma-wave/internal/diarize"
	"github.com/Korak-997/emma-wave/internal/metrics"
	"github.com/Korak-997/emma-wave/internal/requestlog"
	"github.com/Korak-997/emma-wave/internal/segment"
	"github.com/Korak-997/emma-wave/internal/telemetry"
)

// Stage names used in step timings, metrics and logs.
const (
	StageLoading    = "audio_loading"
	StageConversion = "audio_conversion"
	StageDiarize    = "diarization_processing"
	StageMerge      = "segmentation_merge"
	StageExtract    = "clip_extraction"
)

// Options tunes per-request processing.
type Options struct {
	Merge            segment.MergeOptions
	SamplingInterval time.Duration
}

// Upload is the request-scoped input. Data is owned by the request and
// discarded after clip extraction. RequestID, when set, carries the id the
// HTTP layer already assigned so access logs and log records correlate; when
// empty the pipeline mints its own.
type Upload struct {
	RequestID string
	Filename  string
	Data      []byte
}

// Result is the response shape for one processed request.
type Result struct {
	RequestID             string                    `json:"request_id"`
	File                  requestlog.FileMetadata   `json:"file_metadata"`
	ProcessingTimeSeconds float64                   `json:"processing_time_seconds"`
	StepTimings           map[string]float64        `json:"step_timings"`
	Speakers              map[string][]clips.Clip   `json:"speakers"`
	SystemMetrics         *requestlog.MetricsReport `json:"system_metrics,omitempty"`
}

// Processor sequences the pipeline components.
type Processor struct {
	normalizer *audioproc.Normalizer
	engine     diarize.Engine
	extractor  *clips.Extractor
	collector  *telemetry.Collector
	recorder   *requestlog.Recorder
	opts       Options
	log        *logrus.Logger
}

// NewProcessor wires the pipeline. All collaborators are request-independent
// and safe to share across sequential requests.
func NewProcessor(
	normalizer *audioproc.Normalizer,
	engine diarize.Engine,
	extractor *clips.Extractor,
	collector *telemetry.Collector,
	recorder *requestlog.Recorder,
	opts Options,
	log *logrus.Logger,
) *Processor {
	if opts.SamplingInterval <= 0 {
		opts.SamplingInterval = time.Second
	}
	return &Processor{
		normalizer: normalizer,
		engine:     engine,
		extractor:  extractor,
		collector:  collector,
		recorder:   recorder,
		opts:       opts,
		log:        log,
	}
}

// Process runs the full pipeline for one upload. It returns an
// apperr.Error on any failure; partial clip sets are never returned.
func (p *Processor) Process(ctx context.Context, up Upload) (*Result, error) {
	metrics.RequestsTotal.Inc()

	requestID := up.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	startedAt := time.Now()
	timings := make(map[string]float64)

	logEntry := p.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"file_name":  up.Filename,
		"file_size":  len(up.Data),
	})
	logEntry.Info("Processing diarization request")

	// Telemetry and log persistence share one toggle: when logging is off,
	// the request must not pay for sampling either.
	report := (*requestlog.MetricsReport)(nil)
	if p.recorder.Enabled() {
		report = &requestlog.MetricsReport{Before: p.collector.Snapshot()}
	}

	// Stage 1: parse the upload so "not audio at all" fails before any
	// transcoding attempt.
	stageStart := time.Now()
	ok, err := p.normalizer.Validate(up.Data)
	timings[StageLoading] = time.Since(stageStart).Seconds()

	// Stage 2: transcode unless already canonical. Normalize re-checks the
	// container and distinguishes unreadable input from wrong-format input.
	stageStart = time.Now()
	canonical := up.Data
	if err != nil || !ok {
		canonical, err = p.normalizer.Normalize(up.Data)
		if err != nil {
			timings[StageConversion] = time.Since(stageStart).Seconds()
			metrics.Errors.WithLabelValues(StageConversion).Inc()
			// Rejected uploads leave no record; conversion breakage on
			// valid audio is a server failure and does.
			if apperr.IsProcessing(err) {
				return nil, p.failed(requestID, up, startedAt, timings, report, err)
			}
			return nil, err
		}
	}
	timings[StageConversion] = time.Since(stageStart).Seconds()

	// Stage 3: diarization, with the background sampler running only for
	// the duration of the engine call.
	stageStart = time.Now()
	var sampler *telemetry.Sampler
	if report != nil {
		sampler = p.collector.StartSampler(ctx, p.opts.SamplingInterval)
	}
	diarization, err := p.engine.Diarize(ctx, canonical)
	if sampler != nil {
		report.During = sampler.Stop()
	}
	timings[StageDiarize] = time.Since(stageStart).Seconds()
	metrics.StageDuration.WithLabelValues(StageDiarize).Observe(timings[StageDiarize])
	if err != nil {
		metrics.Errors.WithLabelValues(StageDiarize).Inc()
		return nil, p.failed(requestID, up, startedAt, timings, report,
			apperr.Processing("speaker diarization failed", err))
	}
	logEntry.WithField("raw_segments", len(diarization.Segments)).Info("Speaker diarization completed")

	// Stage 4: merge raw events into clean segments.
	stageStart = time.Now()
	merged := segment.Merge(diarization.Segments, p.opts.Merge)
	timings[StageMerge] = time.Since(stageStart).Seconds()
	logEntry.WithFields(logrus.Fields{
		"raw_segments":    len(diarization.Segments),
		"merged_segments": len(merged),
	}).Info("Merged speaker segments")

	// Stage 5: slice the canonical waveform into per-speaker clips.
	stageStart = time.Now()
	speakers, err := p.extractor.Extract(ctx, canonical, merged, requestID)
	timings[StageExtract] = time.Since(stageStart).Seconds()
	metrics.StageDuration.WithLabelValues(StageExtract).Observe(timings[StageExtract])
	if err != nil {
		metrics.Errors.WithLabelValues(StageExtract).Inc()
		return nil, p.failed(requestID, up, startedAt, timings, report, err)
	}
	metrics.ClipsExtracted.Add(float64(len(merged)))

	if report != nil {
		report.After = p.collector.Snapshot()
	}

	elapsed := time.Since(startedAt).Seconds()
	metrics.RequestDuration.Observe(elapsed)

	result := &Result{
		RequestID:             requestID,
		File:                  fileMetadata(up),
		ProcessingTimeSeconds: elapsed,
		StepTimings:           timings,
		Speakers:              speakers,
		SystemMetrics:         report,
	}

	if path := p.recorder.Record(requestlog.Record{
		RequestID:             requestID,
		CreatedAt:             startedAt,
		File:                  result.File,
		ProcessingTimeSeconds: elapsed,
		StepTimings:           timings,
		SystemMetrics:         report,
		Speakers:              speakers,
	}); path != requestlog.Disabled {
		logEntry.WithField("log_path", path).Debug("Request log saved")
	}

	logEntry.WithFields(logrus.Fields{
		"merged_segments": len(merged),
		"speakers":        len(speakers),
		"elapsed_seconds": elapsed,
	}).Info("Diarization request completed")

	return result, nil
}

// failed records a processing failure (including the telemetry captured up
// to the failure point) and passes the error through unchanged.
func (p *Processor) failed(requestID string, up Upload, startedAt time.Time, timings map[string]float64, report *requestlog.MetricsReport, err error) error {
	if report != nil {
		report.After = p.collector.Snapshot()
	}
	p.recorder.Record(requestlog.Record{
		RequestID:             requestID,
		CreatedAt:             startedAt,
		File:                  fileMetadata(up),
		ProcessingTimeSeconds: time.Since(startedAt).Seconds(),
		StepTimings:           timings,
		SystemMetrics:         report,
		Error:                 err.Error(),
	})
	return err
}

func fileMetadata(up Upload) requestlog.FileMetadata {
	return requestlog.FileMetadata{
		FileName:      up.Filename,
		FileSizeBytes: len(up.Data),
	}
}
