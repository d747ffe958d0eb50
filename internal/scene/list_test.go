package scene

import (
	"errors"
	"testing"

	"cleancut/internal/timebase"
)

const testFPS = 10.0

func makeList(t *testing.T, pairs [][2]int) List {
	t.Helper()
	list := make(List, 0, len(pairs))
	for _, pair := range pairs {
		start, err := timebase.New(pair[0], testFPS)
		if err != nil {
			t.Fatalf("timecode %d: %v", pair[0], err)
		}
		end, err := timebase.New(pair[1], testFPS)
		if err != nil {
			t.Fatalf("timecode %d: %v", pair[1], err)
		}
		list = append(list, Scene{Start: start, End: end})
	}
	return list
}

func assertScenes(t *testing.T, got List, want [][2]int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("scene count = %d (%v), want %d (%v)", len(got), framePairs(got), len(want), want)
	}
	for i := range want {
		if got[i].Start.Frame() != want[i][0] || got[i].End.Frame() != want[i][1] {
			t.Fatalf("scenes = %v, want %v", framePairs(got), want)
		}
	}
}

func framePairs(list List) [][2]int {
	pairs := make([][2]int, 0, len(list))
	for _, sc := range list {
		pairs = append(pairs, [2]int{sc.Start.Frame(), sc.End.Frame()})
	}
	return pairs
}

func TestDrop(t *testing.T) {
	scenes := makeList(t, [][2]int{{2, 2}, {10, 20}, {20, 40}})

	// The presentation time of a scene's final frame counts toward its
	// length, so a zero-width pair still survives min lengths of 0 and 1.
	cases := []struct {
		minLen int
		want   [][2]int
	}{
		{0, [][2]int{{2, 2}, {10, 20}, {20, 40}}},
		{1, [][2]int{{2, 2}, {10, 20}, {20, 40}}},
		{2, [][2]int{{10, 20}, {20, 40}}},
		{10, [][2]int{{10, 20}, {20, 40}}},
		{11, [][2]int{{10, 20}, {20, 40}}},
		{12, [][2]int{{20, 40}}},
		{20, [][2]int{{20, 40}}},
		{21, [][2]int{{20, 40}}},
		{22, [][2]int{}},
	}
	for _, tc := range cases {
		got, err := scenes.Drop(tc.minLen)
		if err != nil {
			t.Fatalf("Drop(%d): %v", tc.minLen, err)
		}
		assertScenes(t, got, tc.want)
	}
}

func TestDropIdempotent(t *testing.T) {
	scenes := makeList(t, [][2]int{{2, 2}, {10, 20}, {20, 40}})
	once, err := scenes.Drop(12)
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	twice, err := once.Drop(12)
	if err != nil {
		t.Fatalf("Drop twice: %v", err)
	}
	assertScenes(t, twice, framePairs(once))
}

func TestDropRejectsNegative(t *testing.T) {
	scenes := makeList(t, [][2]int{{10, 20}})
	if _, err := scenes.Drop(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Drop(-1): got %v, want ErrInvalidArgument", err)
	}
}

func TestMerge(t *testing.T) {
	cases := []struct {
		minLen  int
		maxDist int
		want    [][2]int
	}{
		{10, 9, [][2]int{{10, 20}, {30, 40}, {40, 60}}},
		{11, 9, [][2]int{{10, 20}, {30, 60}}},
		{20, 9, [][2]int{{10, 20}, {30, 60}}},
		{21, 9, [][2]int{{10, 20}, {30, 60}}},
		{11, 10, [][2]int{{10, 40}, {40, 60}}},
		{21, 10, [][2]int{{10, 60}}},
	}
	for _, tc := range cases {
		scenes := makeList(t, [][2]int{{10, 20}, {30, 40}, {40, 60}})
		got, err := scenes.Merge(tc.minLen, tc.maxDist)
		if err != nil {
			t.Fatalf("Merge(%d, %d): %v", tc.minLen, tc.maxDist, err)
		}
		assertScenes(t, got, tc.want)
	}
}

func TestMergePrefersPredecessorOnTie(t *testing.T) {
	// Both neighbours are exactly 5 frames away; the earlier one wins.
	scenes := makeList(t, [][2]int{{0, 20}, {25, 30}, {35, 60}})
	got, err := scenes.Merge(10, 5)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	assertScenes(t, got, [][2]int{{0, 30}, {35, 60}})
}

func TestMergeKeepsUnmergeableShortScenes(t *testing.T) {
	scenes := makeList(t, [][2]int{{10, 20}, {50, 55}, {90, 120}})
	got, err := scenes.Merge(11, 5)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	// Nothing is in reach of the short scenes; they survive untouched so
	// a chained Drop can decide their fate.
	assertScenes(t, got, [][2]int{{10, 20}, {50, 55}, {90, 120}})
}

func TestMergeRejectsNegative(t *testing.T) {
	scenes := makeList(t, [][2]int{{10, 20}})
	if _, err := scenes.Merge(-1, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Merge(-1, 0): got %v, want ErrInvalidArgument", err)
	}
	if _, err := scenes.Merge(0, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Merge(0, -1): got %v, want ErrInvalidArgument", err)
	}
}

func TestContract(t *testing.T) {
	scenes := makeList(t, [][2]int{{10, 40}, {40, 50}, {50, 60}})

	assertScenes(t, scenes.Contract(5, 0), [][2]int{{15, 40}, {45, 50}, {55, 60}})
	assertScenes(t, scenes.Contract(0, 5), [][2]int{{10, 35}, {40, 45}, {50, 55}})
	// Shrinking from both sides inverts the two short scenes, which are
	// dropped from the result.
	assertScenes(t, scenes.Contract(5, 5), [][2]int{{15, 35}})
}

func TestTransformsReturnSnapshots(t *testing.T) {
	original := makeList(t, [][2]int{{10, 20}, {30, 40}, {40, 60}})
	if _, err := original.Merge(21, 10); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	// The input list must be untouched by any transformation.
	assertScenes(t, original, [][2]int{{10, 20}, {30, 40}, {40, 60}})
}
