package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/framegate/framegate/internal/frame"
	"github.com/framegate/framegate/internal/gate"
	"github.com/framegate/framegate/internal/stats"
	"github.com/framegate/framegate/internal/trace"
)

// Report is the flat record produced by one pipeline run and handed to
// report sinks. All fields are structs or scalars (no map[string]any) so
// json.Marshal field order stays deterministic for hash chaining.
type Report struct {
	RunID            string            `json:"run_id"`
	Timestamp        string            `json:"ts"`
	Source           string            `json:"source,omitempty"`
	EventCount       int               `json:"eventCount"`
	BoundaryCount    int               `json:"boundaryCount"`
	DroppedIntervals int               `json:"droppedIntervals"`
	Categories       CategoryBreakdown `json:"categories"`
	Summary          stats.Summary     `json:"summary"`
	Verdict          gate.Verdict      `json:"verdict"`
	ConfigHash       string            `json:"config_hash,omitempty"`
}

// CategoryBreakdown counts the trace's timed events by engine subsystem.
// Fixed fields rather than a map, for the same deterministic-marshal
// reason as Report itself.
type CategoryBreakdown struct {
	Render    int `json:"render"`
	Script    int `json:"script"`
	Paint     int `json:"paint"`
	Composite int `json:"composite"`
	Other     int `json:"other"`
}

// String renders the non-zero counts for text output.
func (c CategoryBreakdown) String() string {
	var parts []string
	for _, e := range []struct {
		cat trace.Category
		n   int
	}{
		{trace.CategoryRender, c.Render},
		{trace.CategoryScript, c.Script},
		{trace.CategoryPaint, c.Paint},
		{trace.CategoryComposite, c.Composite},
		{trace.CategoryOther, c.Other},
	} {
		if e.n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", e.cat, e.n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func countCategories(store *trace.EventStore) CategoryBreakdown {
	var c CategoryBreakdown
	for _, ev := range store.Events() {
		switch ev.Category {
		case trace.CategoryRender:
			c.Render++
		case trace.CategoryScript:
			c.Script++
		case trace.CategoryPaint:
			c.Paint++
		case trace.CategoryComposite:
			c.Composite++
		default:
			c.Other++
		}
	}
	return c
}

// Run executes the full analysis pipeline on one raw trace:
// load → extract → summarize → evaluate. Configuration is validated
// before any computation; errors from any stage propagate unmodified
// (*gate.ConfigError, *trace.ParseError, *stats.InsufficientDataError).
func Run(raw []byte, cfg *gate.Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := trace.Load(raw)
	if err != nil {
		return nil, err
	}

	extracted := frame.Extract(store, cfg.Markers())

	trim, err := cfg.TrimStrategy()
	if err != nil {
		return nil, err
	}
	summary, err := stats.Summarize(extracted.Samples, trim)
	if err != nil {
		return nil, err
	}

	verdict := gate.Evaluate(summary, cfg)

	return &Report{
		RunID:            uuid.NewString(),
		Timestamp:        time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		EventCount:       store.Len(),
		BoundaryCount:    extracted.Boundaries,
		DroppedIntervals: extracted.Dropped,
		Categories:       countCategories(store),
		Summary:          summary,
		Verdict:          verdict,
	}, nil
}
