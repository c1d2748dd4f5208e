// Package diarize defines the narrow interface the pipeline needs from a
// speaker diarization backend. The neural model itself is an opaque external
// collaborator; any concrete engine is injected behind Engine.
package diarize

import (
	"context"

	"github.com/Korak-997/emma-wave/internal/segment"
)

// Result holds the outcome of one diarization run.
type Result struct {
	// Segments are raw speaker-attributed time ranges at the model's native
	// resolution, unordered across speakers.
	Segments []segment.Event `json:"segments"`
	// NumSpeakers is the number of distinct speaker labels detected.
	NumSpeakers int `json:"num_speakers"`
}

// Engine is the interface diarization backends must implement. Diarize is
// synchronous and blocking for the duration of inference; callers sharing one
// accelerator should serialize invocations.
type Engine interface {
	// Diarize sends canonical PCM WAV audio for speaker diarization.
	Diarize(ctx context.Context, audio []byte) (*Result, error)
	// IsAvailable reports whether the backend is loaded and reachable.
	IsAvailable(ctx context.Context) bool
}
