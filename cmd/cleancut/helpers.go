package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cleancut/internal/config"
	"cleancut/internal/detect"
	"cleancut/internal/logging"
	"cleancut/internal/media/ffprobe"
	"cleancut/internal/scene"
	"cleancut/internal/stats"
	"cleancut/internal/timebase"
	"cleancut/internal/video"
)

// defaultFrameRate applies when neither --fps nor --video supplies one.
const defaultFrameRate = 23.976

// scanFlags are the flags shared by every command that runs a scan.
type scanFlags struct {
	detector string
	fps      string
	video    string
	stats    string
	start    string
	end      string
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.detector, "detector", "d", "", "Detection algorithm: content, threshold, or adaptive")
	cmd.Flags().StringVar(&f.fps, "fps", "", "Frame rate of the sequence, as a decimal or fraction such as 30000/1001")
	cmd.Flags().StringVar(&f.video, "video", "", "Original video file; its frame rate is probed with ffprobe")
	cmd.Flags().StringVar(&f.stats, "stats", "", "Metric cache CSV to load before scanning and save afterwards")
	cmd.Flags().StringVar(&f.start, "start", "", "First frame to scan (frame number, seconds with s suffix, or HH:MM:SS)")
	cmd.Flags().StringVar(&f.end, "end", "", "Last frame to scan (frame number, seconds with s suffix, or HH:MM:SS)")
}

// sceneFlags are the scene assembly flags shared by scan and export.
type sceneFlags struct {
	dropShort   int
	mergeLen    int
	shiftStart  int
	shiftEnd    int
	overlapBias float64
	includeEnd  bool
}

func (f *sceneFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.dropShort, "drop-short", 0, "Drop assembled scenes shorter than this many frames")
	cmd.Flags().IntVar(&f.mergeLen, "merge-len", -1, "Merge short scenes into a neighbour at most this many frames away (negative disables)")
	cmd.Flags().IntVar(&f.shiftStart, "shift-start", 0, "Offset every scene start by this many frames")
	cmd.Flags().IntVar(&f.shiftEnd, "shift-end", 0, "Offset every scene end by this many frames")
	cmd.Flags().Float64Var(&f.overlapBias, "overlap-bias", 0, "Place overlapping shifted boundaries (-1 earliest to 1 latest) instead of merging")
	cmd.Flags().BoolVar(&f.includeEnd, "include-end", false, "Close a trailing open scene at the end of the scanned range")
}

// options merges flag values with configured defaults: an unchanged flag
// falls back to the [scene] config section.
func (f *sceneFlags) options(cmd *cobra.Command, cfg *config.Config) scene.SceneOptions {
	flags := cmd.Flags()
	opts := scene.SceneOptions{
		MinSceneLen:      f.dropShort,
		ShiftStart:       f.shiftStart,
		ShiftEnd:         f.shiftEnd,
		AlwaysIncludeEnd: f.includeEnd,
	}
	if !flags.Changed("drop-short") {
		opts.MinSceneLen = cfg.Scene.DropShort
	}
	if !flags.Changed("shift-start") {
		opts.ShiftStart = cfg.Scene.ShiftStart
	}
	if !flags.Changed("shift-end") {
		opts.ShiftEnd = cfg.Scene.ShiftEnd
	}
	if !flags.Changed("include-end") {
		opts.AlwaysIncludeEnd = cfg.Scene.AlwaysIncludeEnd
	}

	mergeLen := f.mergeLen
	if !flags.Changed("merge-len") {
		mergeLen = cfg.Scene.MergeLen
	}
	if mergeLen >= 0 {
		opts.MergeLen = &mergeLen
	}

	if flags.Changed("overlap-bias") {
		bias := f.overlapBias
		opts.OverlapBias = &bias
	} else if !cfg.Scene.MergeOverlapping {
		bias := cfg.Scene.OverlapBias
		opts.OverlapBias = &bias
	}
	return opts
}

// resolveFrameRate determines the sequence frame rate from --fps, --video
// (via ffprobe), or the built-in default, and returns the source label to
// record alongside results.
func resolveFrameRate(ctx context.Context, cfg *config.Config, flags scanFlags, input string) (float64, string, error) {
	if strings.TrimSpace(flags.fps) != "" {
		fps, err := parseRate(flags.fps)
		if err != nil {
			return 0, "", err
		}
		return fps, input, nil
	}
	if strings.TrimSpace(flags.video) != "" {
		videoPath, err := config.ExpandPath(flags.video)
		if err != nil {
			return 0, "", err
		}
		probeCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.FFprobe.TimeoutSeconds)*time.Second)
		defer cancel()
		result, err := ffprobe.Inspect(probeCtx, cfg.FFprobe.Binary, videoPath)
		if err != nil {
			return 0, "", err
		}
		stream, ok := result.VideoStream()
		if !ok {
			return 0, "", fmt.Errorf("no video stream in %s", videoPath)
		}
		fps := stream.FrameRate()
		if fps <= 0 {
			return 0, "", fmt.Errorf("could not determine frame rate of %s", videoPath)
		}
		return fps, videoPath, nil
	}
	return defaultFrameRate, input, nil
}

func parseRate(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	if num, den, ok := strings.Cut(cleaned, "/"); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid frame rate %q", value)
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("invalid frame rate %q", value)
		}
		return n / d, nil
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q", value)
	}
	return parsed, nil
}

// buildDetector constructs the selected detector over the cache, merging
// the --detector flag with the [detection] config section.
func buildDetector(cfg *config.Config, name string, cache *stats.Cache) (detect.Detector, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = cfg.Detection.Detector
	}
	switch name {
	case "content":
		return detect.NewContentDetector(cache, detect.ContentConfig{
			Threshold:   cfg.Detection.ContentThreshold,
			MinSceneLen: cfg.Detection.MinSceneLen,
			LumaOnly:    cfg.Detection.LumaOnly,
		}), name, nil
	case "threshold":
		return detect.NewThresholdDetector(cache, detect.ThresholdConfig{
			Threshold: cfg.Detection.FadeThreshold,
		}), name, nil
	case "adaptive":
		return detect.NewAdaptiveDetector(cache, detect.AdaptiveConfig{
			AdaptiveThreshold: cfg.Detection.AdaptiveThreshold,
			MinDelta:          cfg.Detection.MinContentValue,
			WindowWidth:       cfg.Detection.WindowWidth,
			MinSceneLen:       cfg.Detection.MinSceneLen,
			LumaOnly:          cfg.Detection.LumaOnly,
		}), name, nil
	default:
		return nil, "", fmt.Errorf("unknown detector %q (expected content, threshold, or adaptive)", name)
	}
}

// openSequence resolves the input argument to an image sequence directory.
func openSequence(input string, fps float64) (*video.ImageSequence, string, error) {
	path, err := config.ExpandPath(input)
	if err != nil {
		return nil, "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("inspect input %q: %w", input, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("input %q is not a directory of extracted frames", input)
	}
	seq, err := video.NewImageSequence(path, fps)
	if err != nil {
		return nil, "", err
	}
	return seq, path, nil
}

// loadStatsCache populates the cache from a stats CSV when the file exists.
// A file that fails to parse is reported and ignored; the scan recomputes
// its metrics into the empty cache and overwrites the file on save.
func loadStatsCache(cache *stats.Cache, path string, logger *slog.Logger) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open stats file: %w", err)
	}
	defer file.Close()
	if err := cache.Load(file); err != nil {
		if errors.Is(err, stats.ErrCorruptCache) {
			logger.Warn("ignoring unreadable metric cache",
				logging.String(logging.FieldSource, path),
				logging.Error(err))
			return false, nil
		}
		return false, fmt.Errorf("load stats file %s: %w", path, err)
	}
	return true, nil
}

// saveStatsCache writes the cache to a stats CSV when it holds unsaved
// metrics.
func saveStatsCache(cache *stats.Cache, path string, fps float64) error {
	if !cache.NeedsSave() {
		return nil
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create stats file: %w", err)
	}
	if err := cache.Save(file, fps); err != nil {
		_ = file.Close()
		return fmt.Errorf("save stats file %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close stats file: %w", err)
	}
	return nil
}

func parseBound(value string, fps float64) (*timebase.Timecode, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return nil, nil
	}
	tc, err := timebase.Parse(cleaned, fps)
	if err != nil {
		return nil, err
	}
	return &tc, nil
}
