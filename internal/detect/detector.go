package detect

import (
	"image"

	"cleancut/internal/timebase"
)

// EventKind describes the type of boundary a detector found.
type EventKind int

const (
	// Cut is an instantaneous boundary; the frame it lands on belongs to
	// the following scene.
	Cut EventKind = iota + 1
	// In opens a scene with extent (e.g. the end of a fade-in).
	In
	// Out closes a scene with extent (e.g. the start of a fade-out).
	Out
)

func (k EventKind) String() string {
	switch k {
	case Cut:
		return "cut"
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return "unknown"
	}
}

// Event is a boundary produced by a detector. Events are immutable once
// appended to the aggregator's log. Context carries detector-specific
// values such as the score that triggered the event.
type Event struct {
	Kind    EventKind
	Time    timebase.Timecode
	Context map[string]any
}

// Detector is the interface every scene detection strategy implements.
//
// Process is called once per frame in increasing time order and may return
// zero or more events for that exact frame. Finish is called exactly once
// after the last frame with the first and last frame times actually seen,
// allowing deferred batch computation.
type Detector interface {
	// RequiresCache reports whether the detector cannot operate without a
	// backing metric cache.
	RequiresCache() bool

	// MetricNames returns every cache key the detector owns.
	MetricNames() []string

	// NeedsFrame reports whether Process requires decoded image data for
	// the given frame. It returns false only when every metric the
	// detector would compute for that frame is already cached.
	NeedsFrame(frame int) bool

	// Process consumes one frame. img may be nil only when NeedsFrame
	// returned false for the same frame.
	Process(t timebase.Timecode, img image.Image) ([]Event, error)

	// Finish runs once after the last frame, with the first and last
	// frame times seen during the scan.
	Finish(start, end timebase.Timecode) ([]Event, error)
}
