// Package segment implements the speaker segment merge engine: collapsing
// noisy frame-level speaker events into few, clean, gap-tolerant segments.
package segment

import "sort"

// DefaultGapThreshold is the maximum silence, in seconds, between two
// same-speaker events that still lets them merge into one segment.
const DefaultGapThreshold = 0.5

// Event is a speaker-attributed time range, as produced by the diarization
// engine. Start and End are seconds from the beginning of the recording.
type Event struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Duration returns the event length in seconds.
func (e Event) Duration() float64 { return e.End - e.Start }

// MergeOptions tunes the merge pass.
type MergeOptions struct {
	// GapThreshold is the largest same-speaker gap, in seconds, that still
	// merges. Touching or overlapping events always merge.
	GapThreshold float64
	// MinDuration drops every merged segment shorter than this many seconds.
	// Zero disables filtering. Applied uniformly after merging.
	MinDuration float64
}

// DefaultMergeOptions returns the options the service runs with out of the box.
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{GapThreshold: DefaultGapThreshold}
}

// Merge collapses raw speaker events into ordered, gap-merged segments.
//
// Events are stably sorted by start time, then walked with one open segment
// per speaker: an event extends its speaker's open segment when the gap from
// that segment's end does not exceed the threshold, otherwise the open
// segment is committed and the event starts a new one. Interleaved events
// from other speakers do not break a speaker's run, and different speakers
// never merge regardless of gap or overlap. The result is ordered by start
// time. Merging is deterministic and idempotent: re-merging an already
// merged list with the same threshold is a no-op.
//
// Input is never mutated; committed segments are fresh values.
func Merge(events []Event, opts MergeOptions) []Event {
	if len(events) == 0 {
		return []Event{}
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	open := make(map[string]*Event)
	merged := make([]Event, 0, len(sorted))

	for _, ev := range sorted {
		current, ok := open[ev.Speaker]
		if ok && ev.Start-current.End <= opts.GapThreshold {
			if ev.End > current.End {
				current.End = ev.End
			}
			continue
		}
		if ok {
			merged = append(merged, *current)
		}
		next := ev
		open[ev.Speaker] = &next
	}
	for _, current := range open {
		merged = append(merged, *current)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Start != merged[j].Start {
			return merged[i].Start < merged[j].Start
		}
		return merged[i].Speaker < merged[j].Speaker
	})

	if opts.MinDuration <= 0 {
		return merged
	}
	return filterShort(merged, opts.MinDuration)
}

// filterShort drops every segment shorter than minDuration. Filtering runs
// after merging so a short event absorbed into a long segment survives.
func filterShort(segments []Event, minDuration float64) []Event {
	kept := make([]Event, 0, len(segments))
	for _, s := range segments {
		if s.Duration() >= minDuration {
			kept = append(kept, s)
		}
	}
	return kept
}
