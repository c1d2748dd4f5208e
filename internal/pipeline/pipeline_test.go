package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Korak-997/emma-wave/internal/apperr"
	"github.com/Korak-997/emma-wave/internal/audioproc"
	"github.com/Korak-997/emma-wave/internal/clips"
	"github.com/Korak-997/emma-wave/internal/diarize"
	"github.com/Korak-997/emma-wave/internal/ffmpeg"
	"github.com/Korak-997/emma-wave/internal/requestlog"
	"github.com/Korak-997/emma-wave/internal/segment"
	"github.com/Korak-997/emma-wave/internal/telemetry"
)

type fakeEngine struct {
	result *diarize.Result
	err    error
	calls  int
}

func (f *fakeEngine) Diarize(_ context.Context, _ []byte) (*diarize.Result, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeEngine) IsAvailable(_ context.Context) bool { return f.err == nil }

type fakeTranscoder struct{}

func (fakeTranscoder) Probe(_ []byte) (*ffmpeg.ProbeInfo, error) {
	return nil, errors.New("no audio stream")
}

func (fakeTranscoder) Transcode(_ []byte, _ ffmpeg.Spec) ([]byte, error) {
	return nil, errors.New("transcoder should not run in these tests")
}

// brokenTranscoder decodes the upload fine but cannot convert it, the shape
// of a host with a broken ffmpeg install.
type brokenTranscoder struct{}

func (brokenTranscoder) Probe(_ []byte) (*ffmpeg.ProbeInfo, error) {
	return &ffmpeg.ProbeInfo{FormatName: "wav", SampleRate: 44100, Channels: 2}, nil
}

func (brokenTranscoder) Transcode(_ []byte, _ ffmpeg.Spec) ([]byte, error) {
	return nil, errors.New("ffmpeg exited with status 1")
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func canonicalUpload(t *testing.T) Upload {
	t.Helper()
	samples := make([]int, 2*audioproc.CanonicalSampleRate)
	for i := range samples {
		samples[i] = i % 500
	}
	return Upload{
		Filename: "recording.wav",
		Data:     audioproc.EncodeWAV(samples, audioproc.CanonicalSampleRate),
	}
}

func newProcessor(t *testing.T, engine diarize.Engine, logsEnabled bool, logsDir string) *Processor {
	return newProcessorWith(t, fakeTranscoder{}, engine, logsEnabled, logsDir)
}

func newProcessorWith(t *testing.T, tr audioproc.Transcoder, engine diarize.Engine, logsEnabled bool, logsDir string) *Processor {
	t.Helper()
	log := quietLogger()
	recorder, err := requestlog.NewRecorder(logsDir, logsEnabled, log)
	require.NoError(t, err)

	return NewProcessor(
		audioproc.NewNormalizer(tr, log),
		engine,
		clips.NewExtractor(clips.DeliveryInline, nil),
		telemetry.NewCollector("/", false, log),
		recorder,
		Options{
			Merge:            segment.MergeOptions{GapThreshold: 0.5},
			SamplingInterval: 10 * time.Millisecond,
		},
		log,
	)
}

func logFiles(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestProcessSuccessProducesFullResult(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{result: &diarize.Result{
		Segments: []segment.Event{
			{Speaker: "SPEAKER_00", Start: 0.0, End: 0.8},
			{Speaker: "SPEAKER_00", Start: 1.0, End: 1.5},
			{Speaker: "SPEAKER_01", Start: 0.9, End: 1.0},
		},
		NumSpeakers: 2,
	}}
	p := newProcessor(t, engine, true, dir)

	result, err := p.Process(context.Background(), canonicalUpload(t))
	require.NoError(t, err)

	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, "recording.wav", result.File.FileName)
	assert.Greater(t, result.ProcessingTimeSeconds, 0.0)

	for _, stage := range []string{StageLoading, StageConversion, StageDiarize, StageMerge, StageExtract} {
		assert.Contains(t, result.StepTimings, stage)
	}

	// SPEAKER_00's two events merge (gap 0.2); SPEAKER_01 stays.
	require.Len(t, result.Speakers, 2)
	assert.Len(t, result.Speakers["SPEAKER_00"], 1)
	assert.Len(t, result.Speakers["SPEAKER_01"], 1)

	require.NotNil(t, result.SystemMetrics)
	assert.Greater(t, result.SystemMetrics.After.RAMPercent, 0.0)

	assert.Len(t, logFiles(t, dir), 1, "one log record per request")
}

func TestProcessWithLoggingDisabledSkipsTelemetryAndLog(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{result: &diarize.Result{
		Segments:    []segment.Event{{Speaker: "SPEAKER_00", Start: 0, End: 1}},
		NumSpeakers: 1,
	}}
	p := newProcessor(t, engine, false, dir)

	result, err := p.Process(context.Background(), canonicalUpload(t))
	require.NoError(t, err)

	assert.Nil(t, result.SystemMetrics, "no telemetry when logging is off")
	assert.NotEmpty(t, result.Speakers, "response is otherwise unaffected")
	assert.Empty(t, logFiles(t, dir), "no log file when logging is off")
}

func TestProcessMalformedUploadIsClientErrorWithoutSideEffects(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{result: &diarize.Result{}}
	p := newProcessor(t, engine, true, dir)

	_, err := p.Process(context.Background(), Upload{Filename: "junk.bin", Data: []byte("not audio at all")})
	assert.True(t, apperr.IsInvalidFormat(err))
	assert.Zero(t, engine.calls, "pipeline halts before diarization")
	assert.Empty(t, logFiles(t, dir), "rejected uploads leave no log file")
}

func TestProcessTranscodeFailureIsRecorded(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{result: &diarize.Result{}}
	p := newProcessorWith(t, brokenTranscoder{}, engine, true, dir)

	samples := make([]int, 44100)
	up := Upload{Filename: "stereo.wav", Data: audioproc.EncodeWAV(samples, 44100)}

	_, err := p.Process(context.Background(), up)
	assert.True(t, apperr.IsProcessing(err))
	assert.Zero(t, engine.calls, "pipeline halts before diarization")
	assert.Len(t, logFiles(t, dir), 1, "conversion failures are recorded like any other server failure")
}

func TestProcessHonorsCallerRequestID(t *testing.T) {
	engine := &fakeEngine{result: &diarize.Result{
		Segments:    []segment.Event{{Speaker: "SPEAKER_00", Start: 0, End: 1}},
		NumSpeakers: 1,
	}}
	p := newProcessor(t, engine, false, t.TempDir())

	up := canonicalUpload(t)
	up.RequestID = "11111111-2222-3333-4444-555555555555"

	result, err := p.Process(context.Background(), up)
	require.NoError(t, err)
	assert.Equal(t, up.RequestID, result.RequestID)
}

func TestProcessEngineFailureIsProcessingError(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{err: errors.New("inference crashed")}
	p := newProcessor(t, engine, true, dir)

	result, err := p.Process(context.Background(), canonicalUpload(t))
	assert.Nil(t, result, "no partial result")
	assert.True(t, apperr.IsProcessing(err))

	assert.Len(t, logFiles(t, dir), 1, "processing failures are recorded")
}

func TestProcessAssignsUniqueRequestIDs(t *testing.T) {
	engine := &fakeEngine{result: &diarize.Result{
		Segments:    []segment.Event{{Speaker: "SPEAKER_00", Start: 0, End: 1}},
		NumSpeakers: 1,
	}}
	p := newProcessor(t, engine, false, t.TempDir())

	first, err := p.Process(context.Background(), canonicalUpload(t))
	require.NoError(t, err)
	second, err := p.Process(context.Background(), canonicalUpload(t))
	require.NoError(t, err)

	assert.NotEqual(t, first.RequestID, second.RequestID)
}
