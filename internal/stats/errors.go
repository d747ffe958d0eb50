package stats

import "errors"

var (
	// ErrMissingMetric indicates a read for a (frame, metric) pair that was
	// never written. Always a programming error; the cache never recomputes
	// or defaults a value.
	ErrMissingMetric = errors.New("missing metric")

	// ErrMetricNameCollision indicates that a detector tried to register a
	// metric name already owned by a previously registered detector.
	ErrMetricNameCollision = errors.New("metric name collision")

	// ErrCorruptCache indicates a malformed persisted cache. Callers should
	// treat this as recoverable and fall back to an empty cache.
	ErrCorruptCache = errors.New("corrupt stats cache")
)
