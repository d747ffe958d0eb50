package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cleancut/internal/scene"
)

const (
	ansiReset = "\x1b[0m"
	ansiBlue  = "\x1b[34m"
)

// detectorTitle renders a detector name for display, e.g. "content" to
// "Content".
func detectorTitle(name string) string {
	return cases.Title(language.Und).String(name)
}

func renderSummaryLine(w io.Writer, text string) {
	if shouldColorize(w) {
		fmt.Fprintln(w, ansiBlue+text+ansiReset)
		return
	}
	fmt.Fprintln(w, text)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func buildSceneRows(scenes scene.List) [][]string {
	rows := make([][]string, 0, len(scenes))
	for i, sc := range scenes {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(sc.Start.Frame()),
			sc.Start.String(),
			strconv.Itoa(sc.End.Frame()),
			sc.End.String(),
			strconv.Itoa(sc.Frames()),
		})
	}
	return rows
}

var sceneTableHeaders = []string{"Scene", "Start Frame", "Start Time", "End Frame", "End Time", "Length"}

var sceneTableAligns = []columnAlignment{
	alignRight, alignRight, alignLeft, alignRight, alignLeft, alignRight,
}

// sceneJSON is the machine-readable shape of one detected scene.
type sceneJSON struct {
	StartFrame  int     `json:"start_frame"`
	StartTime   string  `json:"start_time"`
	StartSecond float64 `json:"start_seconds"`
	EndFrame    int     `json:"end_frame"`
	EndTime     string  `json:"end_time"`
	EndSecond   float64 `json:"end_seconds"`
	Frames      int     `json:"frames"`
}

func buildSceneJSON(scenes scene.List) []sceneJSON {
	out := make([]sceneJSON, 0, len(scenes))
	for _, sc := range scenes {
		out = append(out, sceneJSON{
			StartFrame:  sc.Start.Frame(),
			StartTime:   sc.Start.String(),
			StartSecond: sc.Start.Seconds(),
			EndFrame:    sc.End.Frame(),
			EndTime:     sc.End.String(),
			EndSecond:   sc.End.Seconds(),
			Frames:      sc.Frames(),
		})
	}
	return out
}
