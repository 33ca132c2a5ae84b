package trace

import (
	"errors"
	"testing"
)

func TestLoadBareArray(t *testing.T) {
	raw := []byte(`[
		{"name":"DrawFrame","cat":"disabled-by-default-devtools.timeline","ph":"I","ts":100,"tid":1},
		{"name":"FunctionCall","cat":"v8","ph":"X","ts":50,"dur":20,"tid":1}
	]`)
	store, err := Load(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 events, got %d", store.Len())
	}
}

func TestLoadTraceObject(t *testing.T) {
	raw := []byte(`{"traceEvents":[{"name":"DrawFrame","ph":"I","ts":100,"tid":1}],"metadata":{}}`)
	store, err := Load(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 event, got %d", store.Len())
	}
}

func TestLoadSortsByTimestamp(t *testing.T) {
	raw := []byte(`[
		{"name":"c","ph":"I","ts":300,"tid":1},
		{"name":"a","ph":"I","ts":100,"tid":1},
		{"name":"b","ph":"I","ts":200,"tid":1}
	]`)
	store, err := Load(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := store.Events()
	for i := 1; i < len(events); i++ {
		if events[i].StartMicros < events[i-1].StartMicros {
			t.Fatalf("events out of order at %d: %d < %d", i, events[i].StartMicros, events[i-1].StartMicros)
		}
	}
	if events[0].Name != "a" || events[2].Name != "c" {
		t.Fatalf("unexpected order: %q %q %q", events[0].Name, events[1].Name, events[2].Name)
	}
}

func TestLoadStableSortKeepsFileOrderOnTies(t *testing.T) {
	raw := []byte(`[
		{"name":"first","ph":"I","ts":100,"tid":1},
		{"name":"second","ph":"I","ts":100,"tid":1}
	]`)
	store, err := Load(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := store.Events()
	if events[0].Name != "first" || events[1].Name != "second" {
		t.Fatalf("tie order not preserved: %q, %q", events[0].Name, events[1].Name)
	}
}

func TestLoadSkipsMetadataRecords(t *testing.T) {
	// Metadata records (ph=M) carry no timeline position and no ts.
	raw := []byte(`[
		{"name":"thread_name","ph":"M","tid":1},
		{"name":"DrawFrame","ph":"I","ts":100,"tid":1}
	]`)
	store, err := Load(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected metadata to be skipped, got %d events", store.Len())
	}
}

func TestLoadUnknownCategoryMapsToOther(t *testing.T) {
	raw := []byte(`[{"name":"x","cat":"some-future-category","ph":"I","ts":1,"tid":1}]`)
	store, err := Load(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Events()[0].Category; got != CategoryOther {
		t.Fatalf("expected CategoryOther, got %v", got)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want Category
	}{
		{"v8", CategoryScript},
		{"v8.execute", CategoryScript},
		{"blink", CategoryRender},
		{"cc", CategoryComposite},
		{"devtools.timeline,compositor", CategoryComposite},
		{"paint", CategoryPaint},
		{"toplevel", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		if got := ParseCategory(tt.raw); got != tt.want {
			t.Errorf("ParseCategory(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLoadMalformedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"truncated array", `[{"name":"DrawFrame","ph":"I","ts":1`},
		{"truncated object", `{"traceEvents":[{"name":"x"`},
		{"not json", `this is not a trace`},
		{"empty input", ``},
		{"object without traceEvents", `{"metadata":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Load([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
			if store != nil {
				t.Fatal("expected no partial store on parse failure")
			}
		})
	}
}

func TestLoadTimedRecordMissingTimestamp(t *testing.T) {
	raw := []byte(`[{"name":"DrawFrame","ph":"I","tid":1}]`)
	_, err := Load(raw)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError for missing ts, got %v", err)
	}
}

func TestLoadNegativeDuration(t *testing.T) {
	raw := []byte(`[{"name":"x","ph":"X","ts":100,"dur":-5,"tid":1}]`)
	_, err := Load(raw)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError for negative duration, got %v", err)
	}
}

func TestLoadEmptyArray(t *testing.T) {
	store, err := Load([]byte(`[]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d events", store.Len())
	}
}

func TestLoadZeroTimestampIsValid(t *testing.T) {
	// ts: 0 is a real timestamp, distinct from a missing field.
	store, err := Load([]byte(`[{"name":"DrawFrame","ph":"I","ts":0,"tid":1}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 event, got %d", store.Len())
	}
}
