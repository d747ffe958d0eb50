// Package timebase provides the Timecode value type: a frame-indexed
// position tied to a fixed frame rate.
//
// Every component in cleancut that talks about time does so through a
// Timecode so that frame indices and wall-clock seconds are never mixed
// by accident. Arithmetic between two Timecodes is only defined when both
// share the same frame rate.
package timebase
