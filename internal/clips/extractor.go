// Package clips slices the canonical waveform into per-speaker audio clips.
package clips

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Korak-997/emma-wave/internal/apperr"
	"github.com/Korak-997/emma-wave/internal/audioproc"
	"github.com/Korak-997/emma-wave/internal/clipstore"
	"github.com/Korak-997/emma-wave/internal/segment"
)

// DeliveryMode selects how clip payloads reach the caller.
type DeliveryMode string

const (
	// DeliveryInline embeds base64-encoded WAV bytes in the response.
	DeliveryInline DeliveryMode = "inline"
	// DeliveryPersisted writes clips to a store and returns references.
	DeliveryPersisted DeliveryMode = "persisted"
)

// Clip is one independently playable excerpt of the recording, attributed to
// a speaker. Exactly one of AudioBase64 and AudioURL is set, depending on the
// delivery mode.
type Clip struct {
	ID          string  `json:"id"`
	Speaker     string  `json:"speaker"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	AudioBase64 string  `json:"audio_base64,omitempty"`
	AudioURL    string  `json:"audio_url,omitempty"`
}

// Extractor turns merged segments plus the canonical waveform into clips.
type Extractor struct {
	mode  DeliveryMode
	store clipstore.Store
}

// NewExtractor creates an Extractor. store may be nil in inline mode.
func NewExtractor(mode DeliveryMode, store clipstore.Store) *Extractor {
	return &Extractor{mode: mode, store: store}
}

// Extract decodes the canonical waveform once and slices it per segment,
// grouping clips by speaker in segment time order. Extraction is
// all-or-nothing: any decode, slice or store failure returns a
// ProcessingError and no partial result.
func (e *Extractor) Extract(ctx context.Context, canonical []byte, segments []segment.Event, requestID string) (map[string][]Clip, error) {
	samples, format, err := audioproc.DecodePCM(canonical)
	if err != nil {
		return nil, apperr.Processing("failed to decode canonical waveform", err)
	}

	speakers := make(map[string][]Clip)
	for i, seg := range segments {
		slice := sliceSamples(samples, seg, format.SampleRate)
		encoded := audioproc.EncodeWAV(slice, format.SampleRate)

		clip := Clip{
			ID:      uuid.NewString(),
			Speaker: seg.Speaker,
			Start:   seg.Start,
			End:     seg.End,
		}

		switch e.mode {
		case DeliveryPersisted:
			name := fmt.Sprintf("%s_segment_%d.wav", requestID, i+1)
			ref, err := e.store.Save(ctx, name, encoded)
			if err != nil {
				return nil, apperr.Processing("failed to persist speaker clip", err)
			}
			clip.AudioURL = ref
		default:
			clip.AudioBase64 = base64.StdEncoding.EncodeToString(encoded)
		}

		speakers[seg.Speaker] = append(speakers[seg.Speaker], clip)
	}

	return speakers, nil
}

// sliceSamples maps a segment's time range onto sample indices, clamped to
// the buffer, and returns a copy so the source buffer is never aliased.
func sliceSamples(samples []int, seg segment.Event, sampleRate int) []int {
	start := int(math.Round(seg.Start * float64(sampleRate)))
	end := int(math.Round(seg.End * float64(sampleRate)))

	if start < 0 {
		start = 0
	}
	if end > len(samples) {
		end = len(samples)
	}
	if start >= end {
		return []int{}
	}

	out := make([]int, end-start)
	copy(out, samples[start:end])
	return out
}
