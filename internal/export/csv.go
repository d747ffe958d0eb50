package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"cleancut/internal/scene"
)

var csvHeader = []string{
	"Scene Number",
	"Start Frame", "Start Timecode", "Start Time (seconds)",
	"End Frame", "End Timecode", "End Time (seconds)",
	"Length (frames)", "Length (seconds)",
}

// WriteCSV writes one row per scene with frame numbers, timecodes, and
// lengths.
func WriteCSV(w io.Writer, scenes scene.List) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i, sc := range scenes {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(sc.Start.Frame()),
			sc.Start.String(),
			formatSeconds(sc.Start.Seconds()),
			strconv.Itoa(sc.End.Frame()),
			sc.End.String(),
			formatSeconds(sc.End.Seconds()),
			strconv.Itoa(sc.Frames()),
			formatSeconds(sc.End.Seconds() - sc.Start.Seconds()),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
