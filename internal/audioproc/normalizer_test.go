package audioproc

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Korak-997/emma-wave/internal/apperr"
	"github.com/Korak-997/emma-wave/internal/ffmpeg"
)

// fakeTranscoder stands in for the ffmpeg binary in tests.
type fakeTranscoder struct {
	probeInfo    *ffmpeg.ProbeInfo
	probeErr     error
	transcoded   []byte
	transcodeErr error
	calls        int
}

func (f *fakeTranscoder) Probe(data []byte) (*ffmpeg.ProbeInfo, error) {
	return f.probeInfo, f.probeErr
}

func (f *fakeTranscoder) Transcode(data []byte, spec ffmpeg.Spec) ([]byte, error) {
	f.calls++
	if f.transcodeErr != nil {
		return nil, f.transcodeErr
	}
	return f.transcoded, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestValidateCanonicalWAV(t *testing.T) {
	n := NewNormalizer(&fakeTranscoder{}, quietLogger())

	ok, err := n.Validate(EncodeWAV(sineish(1600), CanonicalSampleRate))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateWrongRateIsFalseNotError(t *testing.T) {
	n := NewNormalizer(&fakeTranscoder{}, quietLogger())

	ok, err := n.Validate(EncodeWAV(sineish(1600), 44100))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateUnparseableIsInvalidFormat(t *testing.T) {
	n := NewNormalizer(&fakeTranscoder{}, quietLogger())

	ok, err := n.Validate([]byte("not even close to a WAV file"))
	assert.False(t, ok)
	assert.True(t, apperr.IsInvalidFormat(err))
}

func TestNormalizeCanonicalInputIsBitIdenticalNoOp(t *testing.T) {
	ft := &fakeTranscoder{}
	n := NewNormalizer(ft, quietLogger())
	canonical := EncodeWAV(sineish(1600), CanonicalSampleRate)

	out, err := n.Normalize(canonical)
	require.NoError(t, err)
	assert.Equal(t, canonical, out, "canonical input must pass through unchanged")
	assert.Zero(t, ft.calls, "no transcode for canonical input")
}

func TestNormalizeIsIdempotent(t *testing.T) {
	canonical := EncodeWAV(sineish(1600), CanonicalSampleRate)
	ft := &fakeTranscoder{
		probeInfo:  &ffmpeg.ProbeInfo{FormatName: "wav", SampleRate: 44100, Channels: 2},
		transcoded: canonical,
	}
	n := NewNormalizer(ft, quietLogger())

	once, err := n.Normalize(EncodeWAV(sineish(1600), 44100))
	require.NoError(t, err)

	twice, err := n.Normalize(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	ok, err := n.Validate(once)
	require.NoError(t, err)
	assert.True(t, ok, "normalized output must validate")
}

func TestNormalizeUndecodableInputIsInvalidFormat(t *testing.T) {
	ft := &fakeTranscoder{probeErr: errors.New("ffprobe found no audio stream")}
	n := NewNormalizer(ft, quietLogger())

	_, err := n.Normalize([]byte("random bytes"))
	assert.True(t, apperr.IsInvalidFormat(err))
	assert.Zero(t, ft.calls, "no transcode attempt for unreadable input")
}

func TestNormalizeTranscoderFailureIsProcessingError(t *testing.T) {
	ft := &fakeTranscoder{
		probeInfo:    &ffmpeg.ProbeInfo{FormatName: "mp3", SampleRate: 44100, Channels: 2},
		transcodeErr: errors.New("ffmpeg exited with status 1"),
	}
	n := NewNormalizer(ft, quietLogger())

	_, err := n.Normalize(EncodeWAV(sineish(1600), 44100))
	assert.True(t, apperr.IsProcessing(err))
}
