package video

import (
	"image"

	"cleancut/internal/timebase"
)

// Stream is an ordered frame source at a fixed frame rate.
//
// Read returns the frame at the current position. With decode false the
// image is nil but the position still advances when advance is true; this
// lets a caller skip decoding when cached metrics make it unnecessary. The
// end of the stream is reported as io.EOF.
type Stream interface {
	// FrameRate returns the stream's frames per second.
	FrameRate() float64

	// Position returns the timecode of the frame the next Read returns.
	Position() timebase.Timecode

	// Read returns the next frame. decode false yields a nil image;
	// advance false re-reads the current position. Returns io.EOF once
	// the stream is exhausted.
	Read(decode, advance bool) (image.Image, error)

	// Seek positions the stream so the next Read returns the frame at t.
	Seek(t timebase.Timecode) error
}
