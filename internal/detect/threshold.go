package detect

import (
	"fmt"
	"image"

	"cleancut/internal/stats"
	"cleancut/internal/timebase"
)

// IntensityKey is the metric name owned by ThresholdDetector.
const IntensityKey = "average_rgb"

// DefaultFadeThreshold is the stock intensity level for fade detection.
const DefaultFadeThreshold = 12.0

// ThresholdConfig configures a ThresholdDetector.
type ThresholdConfig struct {
	// Threshold is the 8-bit intensity level whose crossings produce
	// fade events.
	Threshold float64
}

// DefaultThresholdConfig returns the stock ThresholdDetector tuning.
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{Threshold: DefaultFadeThreshold}
}

// ThresholdDetector detects fades by comparing each frame's mean pixel
// intensity against a fixed level: a rising crossing emits In, a falling
// crossing emits Out. Every crossing is reported; there is no minimum
// distance gating.
type ThresholdDetector struct {
	cache     *stats.Cache
	threshold float64
	lastAvg   *float64
}

// NewThresholdDetector constructs a ThresholdDetector writing to the given
// cache. A nil cache gets a private empty one.
func NewThresholdDetector(cache *stats.Cache, cfg ThresholdConfig) *ThresholdDetector {
	if cache == nil {
		cache = stats.NewCache()
	}
	return &ThresholdDetector{cache: cache, threshold: cfg.Threshold}
}

// RequiresCache reports that fade detection works without a persistent cache.
func (d *ThresholdDetector) RequiresCache() bool { return false }

// MetricNames returns the cache keys the detector owns.
func (d *ThresholdDetector) MetricNames() []string { return []string{IntensityKey} }

// NeedsFrame reports whether decoded image data is required for the frame.
func (d *ThresholdDetector) NeedsFrame(frame int) bool {
	return !d.cache.MetricsExist(frame, d.MetricNames())
}

// Process computes the frame's mean intensity and reports threshold
// crossings against the previous frame.
func (d *ThresholdDetector) Process(t timebase.Timecode, img image.Image) ([]Event, error) {
	frame := t.Frame()

	var avg float64
	if d.cache.MetricsExist(frame, d.MetricNames()) {
		values, err := d.cache.Get(frame, d.MetricNames())
		if err != nil {
			return nil, err
		}
		avg = values[0]
	} else {
		if img == nil {
			return nil, fmt.Errorf("threshold detector: frame %d requires image data", frame)
		}
		avg = meanIntensity(img)
		d.cache.Set(frame, map[string]float64{IntensityKey: avg})
	}

	lastAvg := d.lastAvg
	d.lastAvg = &avg

	if lastAvg == nil {
		return nil, nil
	}
	if *lastAvg < d.threshold && avg >= d.threshold {
		return []Event{{Kind: In, Time: t}}, nil
	}
	if *lastAvg >= d.threshold && avg < d.threshold {
		return []Event{{Kind: Out, Time: t}}, nil
	}
	return nil, nil
}

// Finish implements Detector; fade detection has no deferred work.
func (d *ThresholdDetector) Finish(start, end timebase.Timecode) ([]Event, error) {
	return nil, nil
}
