package stats

import (
	"fmt"
	"sync"
)

// MetricSource is the slice of a detector the cache needs at registration
// time: the set of metric names the detector will write.
type MetricSource interface {
	MetricNames() []string
}

// Cache is a sparse table of named numeric metrics keyed by frame index.
//
// One Cache is created per analysis run and shared by every registered
// detector. All mutation happens on the scan goroutine; the mutex exists so
// inspection from other goroutines (status output, tests) stays safe.
type Cache struct {
	mu         sync.RWMutex
	metrics    map[int]map[string]float64
	registered map[string]struct{}
	dirty      bool
}

// NewCache returns an empty metric cache.
func NewCache() *Cache {
	return &Cache{
		metrics:    make(map[int]map[string]float64),
		registered: make(map[string]struct{}),
	}
}

// Register reserves the metric names owned by the given detector. It fails
// with ErrMetricNameCollision if any name is already owned by a previously
// registered detector; no names are reserved in that case.
func (c *Cache) Register(source MetricSource) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := source.MetricNames()
	for _, name := range names {
		if _, taken := c.registered[name]; taken {
			return fmt.Errorf("%w: %q is already registered", ErrMetricNameCollision, name)
		}
	}
	for _, name := range names {
		c.registered[name] = struct{}{}
	}
	return nil
}

// MetricsExist reports whether every named metric has a stored value for the
// given frame.
func (c *Cache) MetricsExist(frame int, names []string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row, ok := c.metrics[frame]
	if !ok {
		return false
	}
	for _, name := range names {
		if _, ok := row[name]; !ok {
			return false
		}
	}
	return true
}

// Get returns the stored values for the named metrics at the given frame, in
// the order requested. It fails with ErrMissingMetric if any value is absent
// and never computes one on the fly.
func (c *Cache) Get(frame int, names []string) ([]float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row := c.metrics[frame]
	values := make([]float64, 0, len(names))
	for _, name := range names {
		value, ok := row[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q at frame %d", ErrMissingMetric, name, frame)
		}
		values = append(values, value)
	}
	return values, nil
}

// Set stores the given metric values for a frame. Writes are idempotent
// upserts: a later write for the same (frame, name) pair silently replaces
// the earlier value. The dirty flag is raised only when at least one new
// pair appears, so callers can skip saving an unchanged cache.
func (c *Cache) Set(frame int, values map[string]float64) {
	if len(values) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	row, ok := c.metrics[frame]
	if !ok {
		row = make(map[string]float64, len(values))
		c.metrics[frame] = row
	}
	for name, value := range values {
		if _, exists := row[name]; !exists {
			c.dirty = true
		}
		row[name] = value
	}
}

// NeedsSave reports whether the cache gained new entries since the last
// load or save.
func (c *Cache) NeedsSave() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// FrameCount returns the number of frames with at least one stored metric.
func (c *Cache) FrameCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.metrics)
}
