package frame

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/framegate/framegate/internal/trace"
)

// storeWithBoundaries builds a store whose DrawFrame events sit at the
// given microsecond timestamps, interleaved with unrelated events.
func storeWithBoundaries(t *testing.T, timestamps []int64) *trace.EventStore {
	t.Helper()
	var records []string
	for _, ts := range timestamps {
		records = append(records, fmt.Sprintf(`{"name":"DrawFrame","cat":"cc","ph":"I","ts":%d,"tid":1}`, ts))
		records = append(records, fmt.Sprintf(`{"name":"FunctionCall","cat":"v8","ph":"X","ts":%d,"dur":3,"tid":1}`, ts+1))
	}
	raw := "[" + strings.Join(records, ",") + "]"
	store, err := trace.Load([]byte(raw))
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	return store
}

func TestExtractSampleCount(t *testing.T) {
	store := storeWithBoundaries(t, []int64{0, 16666, 33333, 133333})
	res := Extract(store, nil)

	if res.Boundaries != 4 {
		t.Fatalf("expected 4 boundaries, got %d", res.Boundaries)
	}
	// boundaryCount - 1 samples, nothing dropped.
	if len(res.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(res.Samples))
	}
	if res.Dropped != 0 {
		t.Fatalf("expected 0 dropped, got %d", res.Dropped)
	}
}

func TestExtractInstantaneousFPS(t *testing.T) {
	store := storeWithBoundaries(t, []int64{0, 16666, 33333, 133333})
	res := Extract(store, nil)

	want := []float64{60.0, 60.0, 10.0}
	for i, w := range want {
		if math.Abs(res.Samples[i].FPS-w) > 0.01 {
			t.Errorf("sample %d: fps = %f, want ≈ %f", i, res.Samples[i].FPS, w)
		}
	}
}

func TestExtractPreservesChronologicalOrder(t *testing.T) {
	store := storeWithBoundaries(t, []int64{0, 10000, 30000, 45000, 61000})
	res := Extract(store, nil)

	for i := 1; i < len(res.Samples); i++ {
		if res.Samples[i].TimestampMicros <= res.Samples[i-1].TimestampMicros {
			t.Fatalf("samples out of order at %d", i)
		}
	}
}

func TestExtractDropsZeroIntervals(t *testing.T) {
	// Duplicate timestamp: second boundary at 16666 twice.
	store := storeWithBoundaries(t, []int64{0, 16666, 16666, 33333})
	res := Extract(store, nil)

	if res.Dropped != 1 {
		t.Fatalf("expected 1 dropped interval, got %d", res.Dropped)
	}
	if len(res.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(res.Samples))
	}
	for _, s := range res.Samples {
		if s.FPS <= 0 || math.IsInf(s.FPS, 0) {
			t.Fatalf("invalid FPS value escaped: %f", s.FPS)
		}
	}
}

func TestExtractFewerThanTwoBoundaries(t *testing.T) {
	for _, timestamps := range [][]int64{{}, {16666}} {
		store := storeWithBoundaries(t, timestamps)
		res := Extract(store, nil)
		if res.Samples == nil {
			t.Fatal("expected empty slice, got nil")
		}
		if len(res.Samples) != 0 {
			t.Fatalf("expected no samples for %d boundaries, got %d", len(timestamps), len(res.Samples))
		}
	}
}

func TestExtractCustomMarkers(t *testing.T) {
	raw := `[
		{"name":"Swap","cat":"cc","ph":"I","ts":0,"tid":1},
		{"name":"Swap","cat":"cc","ph":"I","ts":20000,"tid":1},
		{"name":"DrawFrame","cat":"cc","ph":"I","ts":5000,"tid":1}
	]`
	store, err := trace.Load([]byte(raw))
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}

	res := Extract(store, []string{"Swap"})
	if res.Boundaries != 2 {
		t.Fatalf("expected 2 Swap boundaries, got %d", res.Boundaries)
	}
	if len(res.Samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(res.Samples))
	}
	if math.Abs(res.Samples[0].FPS-50.0) > 0.01 {
		t.Fatalf("fps = %f, want 50.0", res.Samples[0].FPS)
	}
}

func TestExtractIgnoresNonBoundaryEvents(t *testing.T) {
	store := storeWithBoundaries(t, []int64{0, 16666})
	res := Extract(store, nil)
	// The interleaved FunctionCall events must not count as boundaries.
	if res.Boundaries != 2 {
		t.Fatalf("expected 2 boundaries, got %d", res.Boundaries)
	}
}
