package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cleancut/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_DATA_HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "cleancut")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.StatsDir != filepath.Join(wantData, "stats") {
		t.Fatalf("unexpected stats dir: %q", cfg.Paths.StatsDir)
	}
	if cfg.Detection.Detector != "content" {
		t.Fatalf("unexpected default detector: %q", cfg.Detection.Detector)
	}
	if cfg.Detection.ContentThreshold != 30.0 {
		t.Fatalf("unexpected content threshold: %v", cfg.Detection.ContentThreshold)
	}
	if cfg.Detection.MinSceneLen != 15 {
		t.Fatalf("unexpected min scene len: %d", cfg.Detection.MinSceneLen)
	}
	if cfg.Scene.MergeLen >= 0 {
		t.Fatalf("expected merging disabled by default, got merge_len %d", cfg.Scene.MergeLen)
	}
	if !cfg.Scene.MergeOverlapping {
		t.Fatal("expected overlap merging enabled by default")
	}
	if !cfg.RunLog.Enabled {
		t.Fatal("expected run log enabled by default")
	}
	if cfg.RunLog.Path != filepath.Join(wantData, "runs.db") {
		t.Fatalf("unexpected run log path: %q", cfg.RunLog.Path)
	}
	if cfg.FFprobe.Binary != "ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.FFprobe.Binary)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.StatsDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cleancut.toml")

	type payload struct {
		Detection struct {
			Detector         string  `toml:"detector"`
			ContentThreshold float64 `toml:"content_threshold"`
			MinSceneLen      int     `toml:"min_scene_len"`
		} `toml:"detection"`
		Scene struct {
			DropShort int `toml:"drop_short"`
			MergeLen  int `toml:"merge_len"`
		} `toml:"scene"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Detection.Detector = "ADAPTIVE"
	custom.Detection.ContentThreshold = 27.5
	custom.Detection.MinSceneLen = 24
	custom.Scene.DropShort = 10
	custom.Scene.MergeLen = 5
	custom.Logging.Format = "json"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Detection.Detector != "adaptive" {
		t.Fatalf("expected detector normalized to adaptive, got %q", cfg.Detection.Detector)
	}
	if cfg.Detection.ContentThreshold != 27.5 {
		t.Fatalf("expected content threshold 27.5, got %v", cfg.Detection.ContentThreshold)
	}
	if cfg.Detection.MinSceneLen != 24 {
		t.Fatalf("expected min scene len 24, got %d", cfg.Detection.MinSceneLen)
	}
	if cfg.Scene.DropShort != 10 {
		t.Fatalf("expected drop_short 10, got %d", cfg.Scene.DropShort)
	}
	if cfg.Scene.MergeLen != 5 {
		t.Fatalf("expected merge_len 5, got %d", cfg.Scene.MergeLen)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestEnvVarOverridesFFprobeBinary(t *testing.T) {
	t.Setenv("CLEANCUT_FFPROBE", "/opt/ffmpeg/bin/ffprobe")

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cleancut.toml")
	if err := os.WriteFile(configPath, []byte("[ffprobe]\nbinary = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFprobe.Binary != "/opt/ffmpeg/bin/ffprobe" {
		t.Fatalf("expected ffprobe binary from env, got %q", cfg.FFprobe.Binary)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[detection]") {
		t.Fatalf("sample config missing detection section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Detection.Detector = "histogram"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown detector")
	}

	cfg = config.Default()
	cfg.Detection.ContentThreshold = 300
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range content threshold")
	}

	cfg = config.Default()
	cfg.Scene.DropShort = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative drop_short")
	}

	cfg = config.Default()
	cfg.Scene.OverlapBias = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range overlap bias")
	}

	cfg = config.Default()
	cfg.FFprobe.Binary = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty ffprobe binary")
	}
}
