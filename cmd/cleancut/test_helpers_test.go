package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	framesDir  string
	runLogPath string
}

// setupCLITestEnv writes a config pointing every path at a temp dir and an
// extracted frame sequence of three black then three white frames.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	framesDir := filepath.Join(base, "frames")
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		t.Fatalf("mkdir frames: %v", err)
	}
	writeFrames(t, framesDir, 0, color.RGBA{A: 255}, 3)
	writeFrames(t, framesDir, 3, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 3)

	runLogPath := filepath.Join(base, "runs.db")
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
stats_dir = %q
log_dir = %q

[detection]
min_scene_len = 1

[run_log]
enabled = true
path = %q
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "stats"),
		filepath.Join(base, "logs"),
		runLogPath,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		framesDir:  framesDir,
		runLogPath: runLogPath,
	}
}

func writeFrames(t *testing.T, dir string, offset int, c color.RGBA, count int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	for i := 0; i < count; i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.png", offset+i))
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("create frame %s: %v", path, err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatalf("encode frame %s: %v", path, err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close frame %s: %v", path, err)
		}
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
