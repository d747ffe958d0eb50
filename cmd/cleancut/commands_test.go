package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScanCommandDetectsScenes(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "scan", env.framesDir, "--fps", "10")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Content detector: 2 scenes in 6 frames")
	requireContains(t, out, "00:00:00.300")

	if _, err := os.Stat(env.runLogPath); err != nil {
		t.Fatalf("expected run log database: %v", err)
	}

	out, _, err = runCLI(t, env.configPath, "runs")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, env.framesDir)
	requireContains(t, out, "Content")
}

func TestScanCommandJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "scan", env.framesDir, "--fps", "10", "--json")
	if err != nil {
		t.Fatalf("scan --json: %v", err)
	}

	var payload struct {
		Detector string  `json:"detector"`
		FPS      float64 `json:"fps"`
		Frames   int     `json:"frames"`
		Scenes   []struct {
			StartFrame int `json:"start_frame"`
			EndFrame   int `json:"end_frame"`
		} `json:"scenes"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("parse JSON output: %v\n%s", err, out)
	}
	if payload.Detector != "content" || payload.FPS != 10 || payload.Frames != 6 {
		t.Fatalf("unexpected payload header: %+v", payload)
	}
	if len(payload.Scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %+v", payload.Scenes)
	}
	if payload.Scenes[0].EndFrame != 3 || payload.Scenes[1].StartFrame != 3 {
		t.Fatalf("unexpected scene boundaries: %+v", payload.Scenes)
	}
}

func TestScanCommandRejectsUnknownDetector(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env.configPath, "scan", env.framesDir, "--fps", "10", "--detector", "histogram")
	if err == nil || !strings.Contains(err.Error(), "unknown detector") {
		t.Fatalf("expected unknown detector error, got %v", err)
	}
}

func TestStatsCommandWritesCache(t *testing.T) {
	env := setupCLITestEnv(t)
	statsPath := filepath.Join(env.baseDir, "metrics.csv")

	out, _, err := runCLI(t, env.configPath, "stats", env.framesDir, "--fps", "10", "--stats", statsPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "Saved metrics")

	contents, err := os.ReadFile(statsPath)
	if err != nil {
		t.Fatalf("read stats file: %v", err)
	}
	requireContains(t, string(contents), "content_val")

	// A second pass over the same frames finds the cache complete.
	out, _, err = runCLI(t, env.configPath, "stats", env.framesDir, "--fps", "10", "--stats", statsPath)
	if err != nil {
		t.Fatalf("stats rerun: %v", err)
	}
	requireContains(t, out, "nothing to save")
}

func TestScanCommandIgnoresCorruptStatsCache(t *testing.T) {
	env := setupCLITestEnv(t)
	statsPath := filepath.Join(env.baseDir, "metrics.csv")
	if err := os.WriteFile(statsPath, []byte("not,a\nstats file at all\n"), 0o644); err != nil {
		t.Fatalf("write corrupt stats file: %v", err)
	}

	// The unreadable cache is discarded and the scan recomputes from the
	// frames, rewriting the file with valid metrics.
	out, _, err := runCLI(t, env.configPath, "scan", env.framesDir, "--fps", "10", "--stats", statsPath)
	if err != nil {
		t.Fatalf("scan with corrupt stats file: %v", err)
	}
	requireContains(t, out, "Content detector: 2 scenes in 6 frames")

	contents, err := os.ReadFile(statsPath)
	if err != nil {
		t.Fatalf("read stats file: %v", err)
	}
	requireContains(t, string(contents), "content_val")
}

func TestStatsCommandRequiresStatsPath(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env.configPath, "stats", env.framesDir, "--fps", "10")
	if err == nil || !strings.Contains(err.Error(), "--stats is required") {
		t.Fatalf("expected missing --stats error, got %v", err)
	}
}

func TestExportCommandWritesCSV(t *testing.T) {
	env := setupCLITestEnv(t)
	outPath := filepath.Join(env.baseDir, "scenes.csv")

	out, _, err := runCLI(t, env.configPath, "export", env.framesDir,
		"--fps", "10", "--format", "csv", "--output", outPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Wrote 2 scenes")

	contents, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	requireContains(t, string(contents), "Scene Number,Start Frame")
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got:\n%s", contents)
	}
}

func TestExportCommandWritesEDL(t *testing.T) {
	env := setupCLITestEnv(t)
	outPath := filepath.Join(env.baseDir, "scenes.edl")

	_, _, err := runCLI(t, env.configPath, "export", env.framesDir,
		"--fps", "24", "--format", "edl", "--output", outPath, "--title", "Test Reel")
	if err != nil {
		t.Fatalf("export edl: %v", err)
	}

	contents, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	requireContains(t, string(contents), "TITLE: Test Reel")
	requireContains(t, string(contents), "FCM: NON-DROP FRAME")
}

func TestConfigShowHonorsConfigFlag(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# Config path: "+env.configPath)
	requireContains(t, out, "min_scene_len = 1")
}

func TestConfigInit(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}
