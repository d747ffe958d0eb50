package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	StatsDir string `toml:"stats_dir"`
	LogDir   string `toml:"log_dir"`
}

// Detection contains detector selection and tuning.
type Detection struct {
	// Detector selects the default detection algorithm: "content",
	// "threshold", or "adaptive".
	Detector string `toml:"detector"`

	// Content detector tuning.
	ContentThreshold float64 `toml:"content_threshold"`
	LumaOnly         bool    `toml:"luma_only"`

	// Threshold (fade) detector tuning.
	FadeThreshold float64 `toml:"fade_threshold"`

	// Adaptive detector tuning.
	AdaptiveThreshold float64 `toml:"adaptive_threshold"`
	MinContentValue   float64 `toml:"min_content_value"`
	WindowWidth       int     `toml:"window_width"`

	// MinSceneLen is the minimum number of frames between emitted cuts.
	MinSceneLen int `toml:"min_scene_len"`
}

// Scene contains scene list assembly settings.
type Scene struct {
	// DropShort removes assembled scenes shorter than this many frames,
	// counting the last frame's presentation time. 0 disables the pass.
	DropShort int `toml:"drop_short"`
	// MergeLen lets short scenes merge into a neighbour at most this many
	// frames away before dropping. Negative disables merging.
	MergeLen int `toml:"merge_len"`
	// ShiftStart and ShiftEnd offset every scene boundary by a frame
	// count after assembly.
	ShiftStart int `toml:"shift_start"`
	ShiftEnd   int `toml:"shift_end"`
	// MergeOverlapping merges neighbours that overlap after shifting.
	// When false, OverlapBias places the shared boundary instead.
	MergeOverlapping bool    `toml:"merge_overlapping"`
	OverlapBias      float64 `toml:"overlap_bias"`
	// AlwaysIncludeEnd closes a trailing open scene at the end of the
	// scanned range.
	AlwaysIncludeEnd bool `toml:"always_include_end"`
}

// RunLog contains configuration for the analysis run history database.
type RunLog struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// FFprobe contains configuration for media inspection.
type FFprobe struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cleancut.
//
// Configuration sections by subsystem:
//   - Paths: data, stats cache, and log directories
//   - Detection: detector selection and per-detector tuning
//   - Scene: scene list assembly (drop/merge/shift) settings
//   - RunLog: analysis run history database
//   - FFprobe: media inspection binary and timeout
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Detection Detection `toml:"detection"`
	Scene     Scene     `toml:"scene"`
	RunLog    RunLog    `toml:"run_log"`
	FFprobe   FFprobe   `toml:"ffprobe"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cleancut/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is not
// an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cleancut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for normal operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.StatsDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.RunLog.Enabled {
		if err := os.MkdirAll(filepath.Dir(c.RunLog.Path), 0o755); err != nil {
			return fmt.Errorf("create run log directory: %w", err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultDataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "cleancut")
	}
	return "~/.local/share/cleancut"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
