package detect

import (
	"fmt"
	"image"
	"math"

	"cleancut/internal/stats"
	"cleancut/internal/timebase"
)

// Defaults for AdaptiveConfig.
const (
	DefaultAdaptiveThreshold = 3.0
	DefaultMinDelta          = 15.0
	DefaultWindowWidth       = 2
)

// maxAdaptiveRatio is the sentinel ratio stored when the rolling mean is
// numerically zero but the frame's own score clears the minimum delta.
const maxAdaptiveRatio = 255.0

// zeroDenominator is the magnitude below which a rolling mean counts as zero.
const zeroDenominator = 0.00001

// AdaptiveConfig configures an AdaptiveDetector.
type AdaptiveConfig struct {
	// AdaptiveThreshold is the ratio of a frame's score to its rolling
	// neighbourhood mean at or above which a cut is emitted.
	AdaptiveThreshold float64
	// MinDelta is the raw score floor a frame must also clear.
	MinDelta float64
	// WindowWidth is the number of frames sampled on each side of a frame
	// when computing its neighbourhood mean.
	WindowWidth int
	// MinSceneLen is the minimum number of frames between emitted cuts.
	MinSceneLen int
	// LumaOnly scores frames using only the lightness channel.
	LumaOnly bool
}

// DefaultAdaptiveConfig returns the stock AdaptiveDetector tuning.
func DefaultAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{
		AdaptiveThreshold: DefaultAdaptiveThreshold,
		MinDelta:          DefaultMinDelta,
		WindowWidth:       DefaultWindowWidth,
		MinSceneLen:       DefaultMinSceneLen,
	}
}

// AdaptiveDetector detects cuts as short isolated peaks in the content
// score: a frame whose score is several times the mean score of its
// neighbours marks a fast cut, while sustained high scores (camera motion,
// lighting changes) do not.
//
// The detector owns a ContentDetector that produces the raw per-frame
// scores during the scan. Ratios are computed in Finish once the full range
// is known, which is why this detector cannot operate without the metric
// cache: ratio computation reads scores from frames visited after the frame
// being rated.
type AdaptiveDetector struct {
	content *ContentDetector
	cache   *stats.Cache

	adaptiveThreshold float64
	minDelta          float64
	windowWidth       int
	minSceneLen       int

	ratioKey string
}

// NewAdaptiveDetector constructs an AdaptiveDetector writing to the given
// cache. A nil cache gets a private empty one shared with the inner
// ContentDetector.
func NewAdaptiveDetector(cache *stats.Cache, cfg AdaptiveConfig) *AdaptiveDetector {
	if cache == nil {
		cache = stats.NewCache()
	}
	lumaSuffix := ""
	if cfg.LumaOnly {
		lumaSuffix = "_lum"
	}
	return &AdaptiveDetector{
		content: NewContentDetector(cache, ContentConfig{
			Threshold:   DefaultContentThreshold,
			MinSceneLen: cfg.MinSceneLen,
			LumaOnly:    cfg.LumaOnly,
		}),
		cache:             cache,
		adaptiveThreshold: cfg.AdaptiveThreshold,
		minDelta:          cfg.MinDelta,
		windowWidth:       cfg.WindowWidth,
		minSceneLen:       cfg.MinSceneLen,
		ratioKey:          fmt.Sprintf("adaptive_ratio%s (w=%d)", lumaSuffix, cfg.WindowWidth),
	}
}

// RequiresCache reports that the two-pass algorithm needs the metric cache.
func (d *AdaptiveDetector) RequiresCache() bool { return true }

// MetricNames returns the inner ContentDetector's keys plus the ratio key.
func (d *AdaptiveDetector) MetricNames() []string {
	return append(d.content.MetricNames(), d.ratioKey)
}

// NeedsFrame reports whether decoded image data is required for the frame.
// The ratio metric is derived later from cached scores, so only the inner
// ContentDetector's metrics decide.
func (d *AdaptiveDetector) NeedsFrame(frame int) bool {
	return d.content.NeedsFrame(frame)
}

// Process delegates scoring to the inner ContentDetector. Its cut events
// are discarded; cuts are decided in Finish from the full score sequence.
func (d *AdaptiveDetector) Process(t timebase.Timecode, img image.Image) ([]Event, error) {
	if _, err := d.content.Process(t, img); err != nil {
		return nil, err
	}
	return nil, nil
}

// Finish computes the adaptive ratio for every interior frame and emits
// cuts where the ratio and the raw score both clear their thresholds,
// subject to minimum scene length gating.
func (d *AdaptiveDetector) Finish(start, end timebase.Timecode) ([]Event, error) {
	startFrame := start.Frame()
	endFrame := end.Frame()
	scoreKey := d.content.ScoreMetric()

	// First pass: store the ratio of each interior frame's score to the
	// mean score of the window on either side of it. The margin excludes
	// frames whose window would reach past the scanned range, plus the
	// first frame which has no score of its own.
	for frame := startFrame + d.windowWidth + 1; frame < endFrame-d.windowWidth; frame++ {
		var sum float64
		for offset := -d.windowWidth; offset <= d.windowWidth; offset++ {
			if offset == 0 {
				continue
			}
			value, err := d.score(frame+offset, scoreKey)
			if err != nil {
				return nil, err
			}
			sum += value
		}
		mean := sum / (2.0 * float64(d.windowWidth))

		value, err := d.score(frame, scoreKey)
		if err != nil {
			return nil, err
		}

		var ratio float64
		switch {
		case math.Abs(mean) >= zeroDenominator:
			ratio = value / mean
		case value >= d.minDelta:
			ratio = maxAdaptiveRatio
		default:
			ratio = 0.0
		}
		d.cache.Set(frame, map[string]float64{d.ratioKey: ratio})
	}

	// Second pass: emit cuts from the stored ratios.
	var events []Event
	lastCut := -1
	for frame := startFrame + d.windowWidth + 1; frame < endFrame-d.windowWidth; frame++ {
		ratios, err := d.cache.Get(frame, []string{d.ratioKey})
		if err != nil {
			return nil, err
		}
		value, err := d.score(frame, scoreKey)
		if err != nil {
			return nil, err
		}
		if ratios[0] >= d.adaptiveThreshold && value >= d.minDelta {
			if lastCut < 0 || frame-lastCut >= d.minSceneLen {
				events = append(events, Event{
					Kind:    Cut,
					Time:    start.AddFrames(frame - startFrame),
					Context: map[string]any{"ratio": ratios[0], "score": value},
				})
				lastCut = frame
			}
		}
	}
	return events, nil
}

func (d *AdaptiveDetector) score(frame int, key string) (float64, error) {
	values, err := d.cache.Get(frame, []string{key})
	if err != nil {
		return 0, fmt.Errorf("adaptive detector: %w", err)
	}
	return values[0], nil
}
