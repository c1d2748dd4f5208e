package audioproc

import (
	"github.com/sirupsen/logrus"

	"github.com/Korak-997/emma-wave/internal/apperr"
	"github.com/Korak-997/emma-wave/internal/ffmpeg"
)

// Transcoder converts arbitrary audio bytes to the requested PCM layout.
// It is satisfied by the ffmpeg wrapper and faked in tests.
type Transcoder interface {
	Probe(data []byte) (*ffmpeg.ProbeInfo, error)
	Transcode(data []byte, spec ffmpeg.Spec) ([]byte, error)
}

// Normalizer validates uploads against the canonical format and transcodes
// anything that does not already match it.
type Normalizer struct {
	transcoder Transcoder
	log        *logrus.Logger
}

// NewNormalizer creates a Normalizer backed by the given transcoder.
func NewNormalizer(transcoder Transcoder, log *logrus.Logger) *Normalizer {
	return &Normalizer{transcoder: transcoder, log: log}
}

// Validate reports whether data is canonical audio: a WAV container holding
// mono 16-bit PCM at 16 kHz. A parse failure is returned as an InvalidFormat
// error rather than a plain false, so callers can tell "unparseable" apart
// from "wrong format".
func (n *Normalizer) Validate(data []byte) (bool, error) {
	format, err := ProbeWAV(data)
	if err != nil {
		return false, apperr.InvalidFormat("input is not a readable WAV container")
	}
	return format.IsCanonical(), nil
}

// Normalize returns canonical audio bytes for data. Already-canonical input
// is returned unchanged. Anything else must first survive an ffprobe decode
// check (otherwise InvalidFormat), then goes through the transcoder
// (failures surface as ProcessingError).
func (n *Normalizer) Normalize(data []byte) ([]byte, error) {
	ok, err := n.Validate(data)
	if err == nil && ok {
		return data, nil
	}

	// Not canonical WAV. The upload may still be readable audio in another
	// container, which only ffprobe can tell us.
	info, probeErr := n.transcoder.Probe(data)
	if probeErr != nil {
		n.log.WithError(probeErr).Warn("Upload rejected: not decodable as audio")
		return nil, apperr.InvalidFormat("uploaded file is not decodable as audio")
	}

	n.log.WithFields(logrus.Fields{
		"format":      info.FormatName,
		"sample_rate": info.SampleRate,
		"channels":    info.Channels,
	}).Info("Audio needs conversion to canonical format")

	converted, err := n.transcoder.Transcode(data, ffmpeg.Spec{
		SampleRate: CanonicalSampleRate,
		Channels:   CanonicalChannels,
	})
	if err != nil {
		return nil, apperr.Processing("audio format conversion failed", err)
	}

	return converted, nil
}
