package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ParseError reports a malformed trace envelope. The store is never
// partially populated: a ParseError means no events were accepted.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("trace: %s: %v", e.Reason, e.Err)
	}
	return "trace: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// rawEvent mirrors the on-disk record shape. The envelope is owned by the
// upstream browser tooling; only the fields needed to derive frame cadence
// are decoded. TS is a pointer so a missing timestamp is distinguishable
// from ts: 0.
type rawEvent struct {
	Name  string   `json:"name"`
	Cat   string   `json:"cat"`
	Phase string   `json:"ph"`
	TS    *float64 `json:"ts"`
	Dur   float64  `json:"dur"`
	TID   int      `json:"tid"`
}

// metadataPhase marks records that describe the trace itself (process
// names, thread names). They carry no timeline position and are skipped.
const metadataPhase = "M"

// EventStore is the ordered, read-only sequence of timed events loaded
// from one trace file. Events are sorted ascending by start timestamp;
// ties keep their original file order.
type EventStore struct {
	events []Event
}

// Load parses raw trace bytes into an EventStore.
// Accepted envelopes: a bare JSON array of event records, or an object
// with a "traceEvents" array (both produced by browser tracing exports).
// Unknown event categories map to CategoryOther. A structurally malformed
// envelope, or a timed record missing its timestamp, fails with *ParseError.
func Load(raw []byte) (*EventStore, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &ParseError{Reason: "empty input"}
	}

	var records []rawEvent
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, &ParseError{Reason: "malformed event array", Err: err}
		}
	case '{':
		var env struct {
			TraceEvents []rawEvent `json:"traceEvents"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, &ParseError{Reason: "malformed trace object", Err: err}
		}
		if env.TraceEvents == nil {
			return nil, &ParseError{Reason: "trace object has no traceEvents array"}
		}
		records = env.TraceEvents
	default:
		return nil, &ParseError{Reason: "input is neither a JSON array nor a trace object"}
	}

	events := make([]Event, 0, len(records))
	for i, r := range records {
		if r.Phase == metadataPhase {
			continue
		}
		if r.TS == nil {
			return nil, &ParseError{Reason: fmt.Sprintf("record %d (%q) is timed but has no timestamp", i, r.Name)}
		}
		if r.Dur < 0 {
			return nil, &ParseError{Reason: fmt.Sprintf("record %d (%q) has negative duration", i, r.Name)}
		}
		events = append(events, Event{
			Name:        r.Name,
			Category:    ParseCategory(r.Cat),
			StartMicros: int64(*r.TS),
			DurMicros:   int64(r.Dur),
			ThreadID:    r.TID,
		})
	}

	// Establish the ordering invariant regardless of on-disk order.
	// Stable sort keeps file order for equal timestamps.
	sort.SliceStable(events, func(a, b int) bool {
		return events[a].StartMicros < events[b].StartMicros
	})

	return &EventStore{events: events}, nil
}

// Len returns the number of timed events in the store.
func (s *EventStore) Len() int { return len(s.events) }

// Events returns the ordered event sequence. Callers must not modify it.
func (s *EventStore) Events() []Event { return s.events }
