// Package testsupport provides shared helpers for package tests: synthetic
// frame streams with known boundaries and temporary config fixtures.
package testsupport

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"cleancut/internal/timebase"
)

// ScriptStream is an in-memory frame source producing one solid-colour
// frame per script entry. It records how many frames were actually decoded
// so tests can assert that warm caches skip decoding.
type ScriptStream struct {
	Colors []color.RGBA
	FPS    float64

	pos     int
	Decoded int
}

// NewScriptStream builds a stream of solid frames at the given rate.
func NewScriptStream(fps float64, colors ...color.RGBA) *ScriptStream {
	return &ScriptStream{Colors: colors, FPS: fps}
}

// Fade appends count frames of uniform grey level to the script.
func (s *ScriptStream) Fade(level uint8, count int) *ScriptStream {
	for i := 0; i < count; i++ {
		s.Colors = append(s.Colors, color.RGBA{R: level, G: level, B: level, A: 255})
	}
	return s
}

// Repeat appends count frames of the given colour to the script.
func (s *ScriptStream) Repeat(c color.RGBA, count int) *ScriptStream {
	for i := 0; i < count; i++ {
		s.Colors = append(s.Colors, c)
	}
	return s
}

// FrameRate implements video.Stream.
func (s *ScriptStream) FrameRate() float64 { return s.FPS }

// Position implements video.Stream.
func (s *ScriptStream) Position() timebase.Timecode {
	tc, err := timebase.New(s.pos, s.FPS)
	if err != nil {
		panic(fmt.Sprintf("script stream position: %v", err))
	}
	return tc
}

// Read implements video.Stream.
func (s *ScriptStream) Read(decode, advance bool) (image.Image, error) {
	if s.pos >= len(s.Colors) {
		return nil, io.EOF
	}
	var img image.Image
	if decode {
		img = solid(s.Colors[s.pos])
		s.Decoded++
	}
	if advance {
		s.pos++
	}
	return img, nil
}

// Seek implements video.Stream.
func (s *ScriptStream) Seek(t timebase.Timecode) error {
	frame := t.Frame()
	if frame > len(s.Colors) {
		frame = len(s.Colors)
	}
	s.pos = frame
	return nil
}

// Rewind resets the stream to the first frame without clearing the decode
// counter.
func (s *ScriptStream) Rewind() {
	s.pos = 0
}

func solid(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
