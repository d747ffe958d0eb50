package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"cleancut/internal/scene"
)

// WriteEDL writes the scenes as a CMX 3600 edit decision list. Source
// timecodes use the scene boundaries; record timecodes splice the scenes
// back to back starting at zero.
func WriteEDL(w io.Writer, scenes scene.List, title string, frameRate float64) error {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", SanitizeName(title, 70))}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	recordOffset := 0
	for i, sc := range scenes {
		srcIn := frameToTimecode(sc.Start.Frame(), fps)
		srcOut := frameToTimecode(sc.End.Frame(), fps)
		recIn := frameToTimecode(recordOffset, fps)
		recOut := frameToTimecode(recordOffset+sc.Frames(), fps)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V", srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", SanitizeName(title, 70)),
		)

		recordOffset += sc.Frames()
	}

	lines = append(lines, "")
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	if err != nil {
		return fmt.Errorf("write edl: %w", err)
	}
	return nil
}

func frameToTimecode(totalFrames, fps int) string {
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
