package detect

import (
	"fmt"
	"image"

	"cleancut/internal/stats"
	"cleancut/internal/timebase"
)

// Metric names owned by ContentDetector.
const (
	FrameScoreKey = "content_val"
	DeltaHueKey   = "delta_hue"
	DeltaSatKey   = "delta_sat"
	DeltaLumKey   = "delta_lum"
)

// Defaults for ContentConfig.
const (
	DefaultContentThreshold = 30.0
	DefaultMinSceneLen      = 15
)

// ContentConfig configures a ContentDetector.
type ContentConfig struct {
	// Threshold is the score at or above which a cut is emitted. Lower
	// values make the detector more sensitive.
	Threshold float64
	// MinSceneLen is the minimum number of frames between emitted cuts.
	// The first cut is always allowed.
	MinSceneLen int
	// LumaOnly scores frames using only the lightness channel. Set for
	// greyscale input.
	LumaOnly bool
}

// DefaultContentConfig returns the stock ContentDetector tuning.
func DefaultContentConfig() ContentConfig {
	return ContentConfig{Threshold: DefaultContentThreshold, MinSceneLen: DefaultMinSceneLen}
}

// ContentDetector detects fast cuts from colour changes between adjacent
// frames. Each frame is split into HSV planes and scored as the mean
// absolute channel delta against the previous frame, averaged across the
// three channels (or the lightness channel alone in luma-only mode).
//
// Raw scores and per-channel deltas are cached, so a second run over the
// same footage with a warm cache skips image decoding entirely.
type ContentDetector struct {
	cache       *stats.Cache
	threshold   float64
	minSceneLen int
	lumaOnly    bool

	primed  bool
	prev    *hsvPlanes
	lastCut int
}

// NewContentDetector constructs a ContentDetector writing to the given
// cache. A nil cache gets a private empty one.
func NewContentDetector(cache *stats.Cache, cfg ContentConfig) *ContentDetector {
	if cache == nil {
		cache = stats.NewCache()
	}
	return &ContentDetector{
		cache:       cache,
		threshold:   cfg.Threshold,
		minSceneLen: cfg.MinSceneLen,
		lumaOnly:    cfg.LumaOnly,
		lastCut:     -1,
	}
}

// RequiresCache reports that content detection works without a persistent
// cache (the cache is still used when present).
func (d *ContentDetector) RequiresCache() bool { return false }

// MetricNames returns the cache keys the detector owns.
func (d *ContentDetector) MetricNames() []string {
	return []string{FrameScoreKey, DeltaHueKey, DeltaSatKey, DeltaLumKey}
}

// ScoreMetric returns the cache key holding the score the detector compares
// against its threshold: the combined content score, or the lightness delta
// in luma-only mode.
func (d *ContentDetector) ScoreMetric() string {
	if d.lumaOnly {
		return DeltaLumKey
	}
	return FrameScoreKey
}

// NeedsFrame reports whether decoded image data is required for the frame.
// The last frame of a cached run is still decoded: the frame after it is
// scored as a delta and needs this frame's colour planes.
func (d *ContentDetector) NeedsFrame(frame int) bool {
	if !d.cache.MetricsExist(frame, d.MetricNames()) {
		return true
	}
	return !d.cache.MetricsExist(frame+1, d.MetricNames())
}

// Process scores the frame against its predecessor and emits a Cut when the
// score crosses the threshold and the minimum scene length has elapsed
// since the last emitted cut.
func (d *ContentDetector) Process(t timebase.Timecode, img image.Image) ([]Event, error) {
	frame := t.Frame()

	var events []Event
	var cur *hsvPlanes
	if !d.primed {
		d.primed = true
	} else {
		score, planes, err := d.frameScore(frame, img)
		if err != nil {
			return nil, err
		}
		cur = planes
		if score >= d.threshold && (d.lastCut < 0 || frame-d.lastCut >= d.minSceneLen) {
			events = append(events, Event{
				Kind:    Cut,
				Time:    t,
				Context: map[string]any{"score": score},
			})
			d.lastCut = frame
		}
	}

	// Keep the current planes for the next delta unless the next frame is
	// already scored, in which case the cache serves the lookup instead.
	switch {
	case d.cache.MetricsExist(frame+1, d.MetricNames()):
		d.prev = nil
	case cur != nil:
		d.prev = cur
	case img != nil:
		d.prev = splitHSV(img)
	default:
		d.prev = nil
	}
	return events, nil
}

// Finish implements Detector; content detection has no deferred work.
func (d *ContentDetector) Finish(start, end timebase.Timecode) ([]Event, error) {
	return nil, nil
}

func (d *ContentDetector) frameScore(frame int, img image.Image) (float64, *hsvPlanes, error) {
	key := d.ScoreMetric()
	if d.cache.MetricsExist(frame, []string{key}) {
		values, err := d.cache.Get(frame, []string{key})
		if err != nil {
			return 0, nil, err
		}
		return values[0], nil, nil
	}

	if img == nil || d.prev == nil {
		return 0, nil, fmt.Errorf("content detector: frame %d requires image data", frame)
	}

	cur := splitHSV(img)
	deltaHue := meanAbsDelta(d.prev.h, cur.h)
	deltaSat := meanAbsDelta(d.prev.s, cur.s)
	deltaLum := meanAbsDelta(d.prev.v, cur.v)
	score := (deltaHue + deltaSat + deltaLum) / 3.0

	d.cache.Set(frame, map[string]float64{
		FrameScoreKey: score,
		DeltaHueKey:   deltaHue,
		DeltaSatKey:   deltaSat,
		DeltaLumKey:   deltaLum,
	})

	if d.lumaOnly {
		return deltaLum, cur, nil
	}
	return score, cur, nil
}
