package frame

import "github.com/framegate/framegate/internal/trace"

// Sample pairs a frame-boundary timestamp with the instantaneous frame
// rate computed from the interval ending at that boundary.
type Sample struct {
	TimestampMicros int64   `json:"timestamp"`
	FPS             float64 `json:"instantaneousFps"`
}

// DefaultMarkers is the event-name set treated as frame boundaries when
// the caller does not override it. Marker names vary by browser build;
// DrawFrame is the compositor's frame-completion marker.
var DefaultMarkers = []string{"DrawFrame"}

// Result is the materialized output of one extraction pass.
type Result struct {
	Samples    []Sample
	Boundaries int // frame-boundary events found in the store
	Dropped    int // zero/negative intervals excluded from Samples
}

const microsPerSecond = 1_000_000

// Extract walks the store and derives instantaneous-FPS samples from
// adjacent pairs of frame-boundary events. The first boundary has no
// predecessor and yields no sample; fewer than two boundaries yield an
// empty (non-nil) sample slice. Zero and negative intervals — duplicate
// timestamps, clock anomalies — are excluded from the samples and counted
// in Dropped so the exclusion stays observable.
func Extract(store *trace.EventStore, markers []string) Result {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	markerSet := make(map[string]bool, len(markers))
	for _, m := range markers {
		markerSet[m] = true
	}

	var boundaries []int64
	for _, ev := range store.Events() {
		if markerSet[ev.Name] {
			boundaries = append(boundaries, ev.StartMicros)
		}
	}

	res := Result{
		Samples:    []Sample{},
		Boundaries: len(boundaries),
	}
	for i := 1; i < len(boundaries); i++ {
		dt := boundaries[i] - boundaries[i-1]
		if dt <= 0 {
			res.Dropped++
			continue
		}
		res.Samples = append(res.Samples, Sample{
			TimestampMicros: boundaries[i],
			FPS:             microsPerSecond / float64(dt),
		})
	}
	return res
}
