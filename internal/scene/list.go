package scene

import (
	"errors"
	"fmt"

	"cleancut/internal/timebase"
)

// ErrInvalidArgument indicates a negative or out-of-range length, distance,
// or bias passed to a scene list operation.
var ErrInvalidArgument = errors.New("invalid argument")

// Scene is a closed interval between two boundaries, start inclusive.
type Scene struct {
	Start timebase.Timecode
	End   timebase.Timecode
}

// Frames returns the interval width in frames, excluding the presentation
// time of the final frame.
func (s Scene) Frames() int { return s.End.Frame() - s.Start.Frame() }

// List is an ordered sequence of non-overlapping scenes.
//
// Every valid List satisfies, for each consecutive pair n, n+1:
//
//	list[n].Start < list[n].End
//	list[n].End  <= list[n+1].Start
//	list[n].Start < list[n+1].Start
//
// The algebra assumes these hold and does not enforce them; feeding a
// violating list produces undefined output.
type List []Scene

// Drop returns a new list keeping only scenes at least minLen frames long,
// counting the presentation duration of the last frame. A minLen of 1 or
// less is a no-op and Drop is idempotent for any minLen.
func (l List) Drop(minLen int) (List, error) {
	if minLen < 0 {
		return nil, fmt.Errorf("%w: min length must be 0 or greater, got %d", ErrInvalidArgument, minLen)
	}
	if minLen <= 1 {
		return append(List(nil), l...), nil
	}
	out := make(List, 0, len(l))
	for _, scene := range l {
		if scene.Frames()+1 >= minLen {
			out = append(out, scene)
		}
	}
	return out, nil
}

// Merge returns a new list in which scenes shorter than minLen frames are
// absorbed into a neighbour at most maxDist frames away. The predecessor is
// preferred; failing that the successor is absorbed instead, and the merged
// result is re-examined in place. A short scene with no neighbour in reach
// is kept unchanged — chain Drop afterwards to remove leftovers.
func (l List) Merge(minLen, maxDist int) (List, error) {
	if minLen < 0 {
		return nil, fmt.Errorf("%w: min length must be 0 or greater, got %d", ErrInvalidArgument, minLen)
	}
	if maxDist < 0 {
		return nil, fmt.Errorf("%w: max distance must be 0 or greater, got %d", ErrInvalidArgument, maxDist)
	}

	pending := append(List(nil), l...)
	out := make(List, 0, len(pending))
	for i := 0; i < len(pending); i++ {
		scene := pending[i]
		if scene.Frames() >= minLen {
			out = append(out, scene)
			continue
		}
		// Prefer the predecessor, which is already in the result.
		if len(out) > 0 && scene.Start.Frame()-out[len(out)-1].End.Frame() <= maxDist {
			out[len(out)-1].End = scene.End
			continue
		}
		// Otherwise grow into the successor and revisit the merged scene
		// when the loop reaches it.
		if i+1 < len(pending) && pending[i+1].Start.Frame()-scene.End.Frame() <= maxDist {
			pending[i+1].Start = scene.Start
			continue
		}
		out = append(out, scene)
	}
	return out, nil
}

// Contract returns a new list with every scene's start shifted forward by
// startAmount frames and its end shifted backward by endAmount frames.
// Scenes that would invert are dropped from the result.
func (l List) Contract(startAmount, endAmount int) List {
	out := make(List, 0, len(l))
	for _, scene := range l {
		contracted := Scene{
			Start: scene.Start.AddFrames(startAmount),
			End:   scene.End.AddFrames(-endAmount),
		}
		if contracted.Start.Frame() >= contracted.End.Frame() {
			continue
		}
		out = append(out, contracted)
	}
	return out
}
