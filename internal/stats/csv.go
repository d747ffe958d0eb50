package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"cleancut/internal/timebase"
)

const (
	frameColumn    = "frame"
	timecodeColumn = "timecode"
)

// Save writes every stored entry as CSV: a header naming the frame and
// timecode columns plus one column per metric, then one row per frame that
// has at least one stored metric. Rows are ordered by frame index and blank
// fields mark absent metrics. A successful save lowers the dirty flag.
func (c *Cache) Save(w io.Writer, fps float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.registered))
	for name := range c.registered {
		names = append(names, name)
	}
	// Include metrics that arrived via Set without registration (loaded
	// caches carry their own column set).
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		seen[name] = struct{}{}
	}
	for _, row := range c.metrics {
		for name := range row {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	frames := make([]int, 0, len(c.metrics))
	for frame := range c.metrics {
		frames = append(frames, frame)
	}
	sort.Ints(frames)

	cw := csv.NewWriter(w)
	header := append([]string{frameColumn, timecodeColumn}, names...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write stats header: %w", err)
	}

	for _, frame := range frames {
		row := c.metrics[frame]
		record := make([]string, 0, len(header))
		record = append(record, strconv.Itoa(frame))
		if tc, err := timebase.New(frame, fps); err == nil {
			record = append(record, tc.String())
		} else {
			record = append(record, "")
		}
		for _, name := range names {
			if value, ok := row[name]; ok {
				record = append(record, strconv.FormatFloat(value, 'f', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write stats row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush stats: %w", err)
	}
	c.dirty = false
	return nil
}

// Load replaces the cache contents with entries parsed from a previously
// saved table. It fails with ErrCorruptCache on malformed input: a short or
// duplicated header, a row with the wrong field count, a non-numeric frame
// index, or a non-numeric metric value. Callers should treat a failed load
// as recoverable and continue with an empty cache.
func (c *Cache) Load(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: empty input", ErrCorruptCache)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	if len(header) < 2 {
		return fmt.Errorf("%w: header has %d columns, need at least 2", ErrCorruptCache, len(header))
	}
	seen := make(map[string]struct{}, len(header))
	for _, column := range header {
		if _, dup := seen[column]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrCorruptCache, column)
		}
		seen[column] = struct{}{}
	}
	names := header[2:]

	type entry struct {
		frame  int
		values map[string]float64
	}
	entries := make([]entry, 0, 64)

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrCorruptCache, line, err)
		}
		if len(record) != len(header) {
			return fmt.Errorf("%w: line %d has %d fields, want %d", ErrCorruptCache, line, len(record), len(header))
		}
		frame, err := strconv.Atoi(record[0])
		if err != nil {
			return fmt.Errorf("%w: line %d: bad frame index %q", ErrCorruptCache, line, record[0])
		}
		values := make(map[string]float64, len(names))
		for i, name := range names {
			field := record[i+2]
			if field == "" {
				continue
			}
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("%w: line %d: metric %q has non-numeric value %q", ErrCorruptCache, line, name, field)
			}
			values[name] = value
		}
		entries = append(entries, entry{frame: frame, values: values})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = make(map[int]map[string]float64, len(entries))
	for _, e := range entries {
		if len(e.values) == 0 {
			continue
		}
		row := make(map[string]float64, len(e.values))
		for name, value := range e.values {
			row[name] = value
		}
		c.metrics[e.frame] = row
	}
	c.dirty = false
	return nil
}
