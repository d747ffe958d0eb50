package scene

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"cleancut/internal/detect"
	"cleancut/internal/logging"
	"cleancut/internal/stats"
	"cleancut/internal/timebase"
	"cleancut/internal/video"
)

// Manager drives a frame stream through registered detectors, accumulates
// their events, and derives cut and scene lists.
//
// Scanning is strictly sequential: no detector sees frame N+1 before every
// detector has processed frame N, and all cache mutation happens on the
// scanning goroutine.
type Manager struct {
	logger    *slog.Logger
	cache     *stats.Cache
	detectors []detect.Detector

	events   map[int][]detect.Event
	startPos timebase.Timecode
	lastPos  timebase.Timecode
	hasRange bool
}

// NewManager constructs a Manager over the given metric cache. A nil cache
// gets a fresh empty one; a nil logger discards records.
func NewManager(cache *stats.Cache, logger *slog.Logger) *Manager {
	if cache == nil {
		cache = stats.NewCache()
	}
	return &Manager{
		logger: logging.NewComponentLogger(logger, "scene"),
		cache:  cache,
		events: make(map[int][]detect.Event),
	}
}

// Cache returns the metric cache shared by the registered detectors.
func (m *Manager) Cache() *stats.Cache { return m.cache }

// AddDetector registers a detector, reserving its metric names in the
// cache. Registration fails with stats.ErrMetricNameCollision when another
// detector already owns one of the names.
func (m *Manager) AddDetector(d detect.Detector) error {
	if err := m.cache.Register(d); err != nil {
		return fmt.Errorf("add detector: %w", err)
	}
	m.detectors = append(m.detectors, d)
	return nil
}

// ScanOptions bounds a scan and hooks progress reporting.
type ScanOptions struct {
	// Start seeks the stream before scanning begins. The manager never
	// seeks mid-scan.
	Start *timebase.Timecode
	// End bounds the scan; frames after it are not read.
	End *timebase.Timecode
	// Callback is invoked synchronously each time an event closes a
	// scene boundary (a Cut or an Out), once per scene found. It blocks
	// further scanning until it returns.
	Callback func(detect.Event)
}

// Scan reads frames in increasing order, feeds every registered detector,
// and records the resulting events. Frame decoding is skipped when no
// detector needs image data for the frame. Returns the number of frames
// processed.
func (m *Manager) Scan(ctx context.Context, stream video.Stream, opts ScanOptions) (int, error) {
	if len(m.detectors) == 0 {
		return 0, errors.New("scan: no detectors registered")
	}
	if opts.Start != nil {
		if err := stream.Seek(*opts.Start); err != nil {
			return 0, fmt.Errorf("scan: seek to start: %w", err)
		}
	}

	var first, last timebase.Timecode
	seen := false
	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		pos := stream.Position()
		if opts.End != nil && pos.Frame() > opts.End.Frame() {
			break
		}

		decode := false
		for _, d := range m.detectors {
			if d.NeedsFrame(pos.Frame()) {
				decode = true
				break
			}
		}

		img, err := stream.Read(decode, true)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return frames, fmt.Errorf("scan: frame %d: %w", pos.Frame(), err)
		}

		for _, d := range m.detectors {
			events, err := d.Process(pos, img)
			if err != nil {
				return frames, fmt.Errorf("scan: frame %d: %w", pos.Frame(), err)
			}
			m.record(events, opts.Callback)
		}

		if !seen {
			first = pos
			seen = true
		}
		last = pos
		frames++
	}

	if seen {
		for _, d := range m.detectors {
			events, err := d.Finish(first, last)
			if err != nil {
				return frames, fmt.Errorf("scan: finish: %w", err)
			}
			m.record(events, opts.Callback)
		}
		m.startPos = first
		m.lastPos = last
		m.hasRange = true
	}

	m.logger.Debug("scan complete",
		logging.Int("frames", frames),
		logging.Int("event_buckets", len(m.events)))
	return frames, nil
}

func (m *Manager) record(events []detect.Event, callback func(detect.Event)) {
	for _, ev := range events {
		frame := ev.Time.Frame()
		m.events[frame] = append(m.events[frame], ev)
		if callback != nil && (ev.Kind == detect.Cut || ev.Kind == detect.Out) {
			callback(ev)
		}
	}
}

// SetEvents replaces the event bucket at the given time key. Events are
// otherwise immutable once recorded; this hook exists for inspection and
// test setups.
func (m *Manager) SetEvents(t timebase.Timecode, events []detect.Event) {
	m.events[t.Frame()] = append([]detect.Event(nil), events...)
}

// Clear empties the event log and resets the processing range so analysis
// can be re-run without reopening the frame source.
func (m *Manager) Clear() {
	m.events = make(map[int][]detect.Event)
	m.hasRange = false
}

// Cuts returns the times of all Cut events in increasing order, greedily
// filtered: the first cut is always kept and each later cut only if it is
// at least minGap frames after the last kept one. A minGap of 0 keeps
// every deduplicated cut.
func (m *Manager) Cuts(minGap int) []timebase.Timecode {
	frames := make([]int, 0, len(m.events))
	times := make(map[int]timebase.Timecode, len(m.events))
	for frame, bucket := range m.events {
		for _, ev := range bucket {
			if ev.Kind == detect.Cut {
				if _, ok := times[frame]; !ok {
					frames = append(frames, frame)
					times[frame] = ev.Time
				}
				break
			}
		}
	}
	sort.Ints(frames)

	out := make([]timebase.Timecode, 0, len(frames))
	lastKept := 0
	for _, frame := range frames {
		if len(out) == 0 || frame-lastKept >= minGap {
			out = append(out, times[frame])
			lastKept = frame
		}
	}
	return out
}

// SceneOptions controls how Scenes assembles intervals from the event log.
type SceneOptions struct {
	// MinSceneLen, when positive, drops (or merges, see MergeLen) scenes
	// shorter than this many frames.
	MinSceneLen int
	// MergeLen, when set, lets short scenes merge into a neighbour at
	// most this many frames away before the drop pass. Nil never merges.
	MergeLen *int
	// ShiftStart and ShiftEnd offset every scene boundary by a frame
	// count; negative values extend backward in time.
	ShiftStart int
	ShiftEnd   int
	// OverlapBias places the shared boundary when shifting makes
	// neighbours overlap: -1 collapses to the earlier scene's pre-shift
	// end, +1 to the later scene's pre-shift start, 0 the midpoint. Nil
	// merges overlapping scenes instead.
	OverlapBias *float64
	// AlwaysIncludeEnd closes a trailing open scene at the end of the
	// processed range, and emits the tail between the last closing event
	// and the range end as its own scene.
	AlwaysIncludeEnd bool
}

// Scenes derives a fresh scene list from the event log. The result is an
// independent snapshot; transforming it never mutates the manager.
func (m *Manager) Scenes(opts SceneOptions) (List, error) {
	if opts.MinSceneLen < 0 {
		return nil, fmt.Errorf("%w: min scene length must be 0 or greater", ErrInvalidArgument)
	}
	if opts.MergeLen != nil && *opts.MergeLen < 0 {
		return nil, fmt.Errorf("%w: merge length must be 0 or greater", ErrInvalidArgument)
	}
	if opts.OverlapBias != nil && (*opts.OverlapBias < -1.0 || *opts.OverlapBias > 1.0) {
		return nil, fmt.Errorf("%w: overlap bias must be within [-1, 1]", ErrInvalidArgument)
	}
	if !m.hasRange {
		return List{}, nil
	}

	rangeEnd := m.lastPos.AddFrames(1)
	var scenes List
	if m.hasSparseEvents() {
		scenes = m.scenesFromSparseEvents(rangeEnd, opts.AlwaysIncludeEnd)
	} else {
		scenes = m.scenesFromCuts(rangeEnd)
	}

	if opts.MinSceneLen > 0 {
		var err error
		if opts.MergeLen != nil {
			scenes, err = scenes.Merge(opts.MinSceneLen, *opts.MergeLen)
			if err != nil {
				return nil, err
			}
		}
		scenes, err = scenes.Drop(opts.MinSceneLen)
		if err != nil {
			return nil, err
		}
	}

	if opts.ShiftStart != 0 || opts.ShiftEnd != 0 {
		scenes = m.shiftScenes(scenes, opts, rangeEnd)
	}
	return scenes, nil
}

func (m *Manager) hasSparseEvents() bool {
	for _, bucket := range m.events {
		for _, ev := range bucket {
			if ev.Kind == detect.In || ev.Kind == detect.Out {
				return true
			}
		}
	}
	return false
}

// scenesFromCuts segments the processed range at the deduplicated cut
// points.
func (m *Manager) scenesFromCuts(rangeEnd timebase.Timecode) List {
	cuts := m.Cuts(0)
	scenes := make(List, 0, len(cuts)+1)
	prev := m.startPos
	for _, cut := range cuts {
		if cut.Frame() > prev.Frame() {
			scenes = append(scenes, Scene{Start: prev, End: cut})
		}
		prev = cut
	}
	if rangeEnd.Frame() > prev.Frame() {
		scenes = append(scenes, Scene{Start: prev, End: rangeEnd})
	}
	return scenes
}

// scenesFromSparseEvents pairs In events with the nearest following Out or
// Cut. A Cut inside an open scene closes it and reopens at the same frame;
// closing events seen while no scene is open are ignored, as are gaps
// between a close and the next In.
func (m *Manager) scenesFromSparseEvents(rangeEnd timebase.Timecode, alwaysIncludeEnd bool) List {
	frames := make([]int, 0, len(m.events))
	for frame := range m.events {
		frames = append(frames, frame)
	}
	sort.Ints(frames)

	var scenes List
	open := false
	var openTime timebase.Timecode
	var lastClose *timebase.Timecode
	for _, frame := range frames {
		for _, ev := range m.events[frame] {
			switch ev.Kind {
			case detect.In:
				if !open {
					open = true
					openTime = ev.Time
				}
			case detect.Out:
				if open {
					if ev.Time.Frame() > openTime.Frame() {
						scenes = append(scenes, Scene{Start: openTime, End: ev.Time})
					}
					open = false
					closeTime := ev.Time
					lastClose = &closeTime
				}
			case detect.Cut:
				if open {
					if ev.Time.Frame() > openTime.Frame() {
						scenes = append(scenes, Scene{Start: openTime, End: ev.Time})
					}
					openTime = ev.Time
					closeTime := ev.Time
					lastClose = &closeTime
				}
			}
		}
	}

	if open {
		if alwaysIncludeEnd && rangeEnd.Frame() > openTime.Frame() {
			scenes = append(scenes, Scene{Start: openTime, End: rangeEnd})
		}
	} else if alwaysIncludeEnd && lastClose != nil && rangeEnd.Frame() > lastClose.Frame() {
		scenes = append(scenes, Scene{Start: *lastClose, End: rangeEnd})
	}
	return scenes
}

// shiftScenes offsets every boundary, clamps to the processed range, and
// resolves any overlap between neighbours per the overlap bias.
func (m *Manager) shiftScenes(scenes List, opts SceneOptions, rangeEnd timebase.Timecode) List {
	type shiftedScene struct {
		cur  Scene
		orig Scene
	}
	shifted := make([]shiftedScene, 0, len(scenes))
	for _, sc := range scenes {
		next := Scene{
			Start: sc.Start.AddFrames(opts.ShiftStart),
			End:   sc.End.AddFrames(opts.ShiftEnd),
		}
		if next.Start.Frame() < m.startPos.Frame() {
			next.Start = m.startPos
		}
		if next.End.Frame() > rangeEnd.Frame() {
			next.End = rangeEnd
		}
		if next.Start.Frame() >= next.End.Frame() {
			continue
		}
		shifted = append(shifted, shiftedScene{cur: next, orig: sc})
	}

	out := make([]shiftedScene, 0, len(shifted))
	for _, item := range shifted {
		if len(out) > 0 && out[len(out)-1].cur.End.Frame() > item.cur.Start.Frame() {
			prev := &out[len(out)-1]
			if opts.OverlapBias == nil {
				prev.cur.End = item.cur.End
				prev.orig.End = item.orig.End
				continue
			}
			// The contested region is bounded by the pre-shift
			// boundaries; the resolved boundary must also stay
			// inside both shifted scenes.
			ratio := (*opts.OverlapBias + 1.0) / 2.0
			low := prev.orig.End.Frame()
			high := item.orig.Start.Frame()
			boundary := prev.orig.End.AddFrames(int(math.Round(ratio * float64(high-low))))
			if boundary.Frame() > item.cur.End.Frame() {
				boundary = item.cur.End
			}
			prev.cur.End = boundary
			item.cur.Start = boundary
			if prev.cur.Start.Frame() >= prev.cur.End.Frame() {
				out = out[:len(out)-1]
				if len(out) > 0 && out[len(out)-1].cur.End.Frame() > item.cur.Start.Frame() {
					item.cur.Start = out[len(out)-1].cur.End
				}
			}
		}
		if item.cur.Start.Frame() >= item.cur.End.Frame() {
			continue
		}
		out = append(out, item)
	}

	result := make(List, 0, len(out))
	for _, item := range out {
		result = append(result, item.cur)
	}
	return result
}
