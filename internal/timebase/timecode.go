package timebase

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MinFrameRate is the lowest frame rate a Timecode may carry. Construction
// with anything lower fails so that seconds conversions can never divide by
// a near-zero rate.
const MinFrameRate = 1.0 / 1000.0

var (
	// ErrInvalidFrameRate indicates a frame rate at or below the supported minimum.
	ErrInvalidFrameRate = errors.New("invalid frame rate")
	// ErrFrameRateMismatch indicates arithmetic between Timecodes with different rates.
	ErrFrameRateMismatch = errors.New("frame rate mismatch")
	// ErrInvalidTimecode indicates an unparsable or out-of-range timecode value.
	ErrInvalidTimecode = errors.New("invalid timecode")
)

// Timecode is an integer frame index paired with the frame rate that
// produced it. Timecodes are immutable values; arithmetic returns new ones.
type Timecode struct {
	frame int
	fps   float64
}

// New constructs a Timecode from a frame index and frame rate.
func New(frame int, fps float64) (Timecode, error) {
	if fps < MinFrameRate {
		return Timecode{}, fmt.Errorf("%w: %g fps", ErrInvalidFrameRate, fps)
	}
	if frame < 0 {
		return Timecode{}, fmt.Errorf("%w: negative frame %d", ErrInvalidTimecode, frame)
	}
	return Timecode{frame: frame, fps: fps}, nil
}

// FromSeconds constructs a Timecode from a seconds value, rounded to the
// nearest frame.
func FromSeconds(seconds float64, fps float64) (Timecode, error) {
	if fps < MinFrameRate {
		return Timecode{}, fmt.Errorf("%w: %g fps", ErrInvalidFrameRate, fps)
	}
	if seconds < 0 {
		return Timecode{}, fmt.Errorf("%w: negative seconds %g", ErrInvalidTimecode, seconds)
	}
	return Timecode{frame: int(math.Round(seconds * fps)), fps: fps}, nil
}

// Parse interprets value as a frame count ("1234"), a seconds suffix form
// ("123.4s"), or a colon-delimited clock string ("HH:MM:SS" or
// "HH:MM:SS.nnn"), producing a Timecode at the given frame rate.
func Parse(value string, fps float64) (Timecode, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Timecode{}, fmt.Errorf("%w: empty value", ErrInvalidTimecode)
	}
	if strings.Contains(value, ":") {
		seconds, err := parseClock(value)
		if err != nil {
			return Timecode{}, err
		}
		return FromSeconds(seconds, fps)
	}
	if strings.HasSuffix(value, "s") {
		seconds, err := strconv.ParseFloat(strings.TrimSuffix(value, "s"), 64)
		if err != nil {
			return Timecode{}, fmt.Errorf("%w: %q", ErrInvalidTimecode, value)
		}
		return FromSeconds(seconds, fps)
	}
	frame, err := strconv.Atoi(value)
	if err != nil {
		return Timecode{}, fmt.Errorf("%w: %q", ErrInvalidTimecode, value)
	}
	return New(frame, fps)
}

func parseClock(value string) (float64, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q (expected HH:MM:SS)", ErrInvalidTimecode, value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimecode, value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimecode, value)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimecode, value)
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}

// Frame returns the frame index.
func (t Timecode) Frame() int { return t.frame }

// FrameRate returns the frame rate the Timecode was constructed with.
func (t Timecode) FrameRate() float64 { return t.fps }

// Seconds converts the frame index back to seconds.
func (t Timecode) Seconds() float64 { return float64(t.frame) / t.fps }

// AddFrames returns a Timecode offset by the given frame count. The result
// is clamped at frame zero.
func (t Timecode) AddFrames(frames int) Timecode {
	next := t.frame + frames
	if next < 0 {
		next = 0
	}
	return Timecode{frame: next, fps: t.fps}
}

// Add returns the sum of two Timecodes sharing the same frame rate.
func (t Timecode) Add(other Timecode) (Timecode, error) {
	if t.fps != other.fps {
		return Timecode{}, fmt.Errorf("%w: %g vs %g", ErrFrameRateMismatch, t.fps, other.fps)
	}
	return t.AddFrames(other.frame), nil
}

// Sub returns the difference of two Timecodes sharing the same frame rate,
// clamped at frame zero.
func (t Timecode) Sub(other Timecode) (Timecode, error) {
	if t.fps != other.fps {
		return Timecode{}, fmt.Errorf("%w: %g vs %g", ErrFrameRateMismatch, t.fps, other.fps)
	}
	return t.AddFrames(-other.frame), nil
}

// Less reports whether t precedes other by frame index.
func (t Timecode) Less(other Timecode) bool { return t.frame < other.frame }

// Equal reports whether two Timecodes refer to the same frame index.
func (t Timecode) Equal(other Timecode) bool { return t.frame == other.frame }

// Compare orders Timecodes by frame index, returning -1, 0, or +1.
func (t Timecode) Compare(other Timecode) int {
	switch {
	case t.frame < other.frame:
		return -1
	case t.frame > other.frame:
		return 1
	default:
		return 0
	}
}

// String renders the Timecode as a clock string with millisecond precision.
func (t Timecode) String() string {
	if t.fps < MinFrameRate {
		return fmt.Sprintf("frame %d", t.frame)
	}
	total := t.Seconds()
	hours := int(total) / 3600
	minutes := (int(total) % 3600) / 60
	seconds := total - float64(hours*3600+minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, seconds)
}
