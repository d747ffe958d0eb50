package video

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cleancut/internal/timebase"
)

// ImageSequence reads an extracted image sequence (one file per frame) from
// a directory in lexical order. Frame N is the Nth file, so extraction
// tools should zero-pad their numbering.
type ImageSequence struct {
	files []string
	fps   float64
	pos   int
}

// NewImageSequence scans dir for PNG and JPEG files and returns a Stream
// over them at the given frame rate.
func NewImageSequence(dir string, fps float64) (*ImageSequence, error) {
	if fps < timebase.MinFrameRate {
		return nil, fmt.Errorf("image sequence: %w: %g", timebase.ErrInvalidFrameRate, fps)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("image sequence: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("image sequence: no frames found in %s", dir)
	}
	sort.Strings(files)
	return &ImageSequence{files: files, fps: fps}, nil
}

// FrameRate returns the configured frames per second.
func (s *ImageSequence) FrameRate() float64 { return s.fps }

// FrameCount returns the number of frames in the sequence.
func (s *ImageSequence) FrameCount() int { return len(s.files) }

// Position returns the timecode of the frame the next Read returns.
func (s *ImageSequence) Position() timebase.Timecode {
	tc, err := timebase.New(s.pos, s.fps)
	if err != nil {
		// fps was validated at construction; only a corrupted position
		// could get here.
		panic(fmt.Sprintf("image sequence: position %d: %v", s.pos, err))
	}
	return tc
}

// Read returns the frame at the current position, optionally without
// decoding, and optionally advances. Returns io.EOF past the last frame.
func (s *ImageSequence) Read(decode, advance bool) (image.Image, error) {
	if s.pos >= len(s.files) {
		return nil, io.EOF
	}
	var img image.Image
	if decode {
		f, err := os.Open(s.files[s.pos])
		if err != nil {
			return nil, fmt.Errorf("image sequence: %w", err)
		}
		img, _, err = image.Decode(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("image sequence: decode %s: %w", s.files[s.pos], err)
		}
	}
	if advance {
		s.pos++
	}
	return img, nil
}

// Seek positions the sequence so the next Read returns the frame at t.
// Seeking past the end leaves the stream at EOF.
func (s *ImageSequence) Seek(t timebase.Timecode) error {
	frame := t.Frame()
	if frame > len(s.files) {
		frame = len(s.files)
	}
	s.pos = frame
	return nil
}
