package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/framegate/framegate/internal/gate"
	"github.com/framegate/framegate/internal/trace"
)

const goodTrace = `[
	{"name":"DrawFrame","cat":"cc","ph":"I","ts":0,"tid":1},
	{"name":"DrawFrame","cat":"cc","ph":"I","ts":16666,"tid":1},
	{"name":"DrawFrame","cat":"cc","ph":"I","ts":33333,"tid":1},
	{"name":"DrawFrame","cat":"cc","ph":"I","ts":50000,"tid":1}
]`

func newTestProcessor(t *testing.T) (*Processor, Dirs) {
	t.Helper()
	dirs := Dirs{Root: t.TempDir()}
	if err := dirs.Ensure(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}
	proc := NewProcessor(ProcessorConfig{
		Dirs: dirs,
		Gate: &gate.Config{
			MinAcceptableFPS: 30,
			Statistic:        "mean",
			Trim:             gate.TrimConfig{Strategy: "none"},
		},
	})
	return proc, dirs
}

func dropTrace(t *testing.T, dirs Dirs, name, content string) string {
	t.Helper()
	path := filepath.Join(dirs.Inbox(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write trace: %v", err)
	}
	return path
}

func TestProcessWritesReportToOutbox(t *testing.T) {
	proc, dirs := newTestProcessor(t)
	path := dropTrace(t, dirs, "scroll.json", goodTrace)

	if err := proc.Process(context.Background(), path); err != nil {
		t.Fatalf("process: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dirs.Outbox(), "scroll.report.json"))
	if err != nil {
		t.Fatalf("expected outbox report: %v", err)
	}
	var report struct {
		Verdict struct {
			Passed bool `json:"passed"`
		} `json:"verdict"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if !report.Verdict.Passed {
		t.Error("expected passing verdict for 60fps trace")
	}
	if report.Source != "scroll.json" {
		t.Errorf("source = %q, want scroll.json", report.Source)
	}

	// The inbox file is consumed.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected inbox trace to be removed after processing")
	}
}

func TestProcessMovesBrokenTraceToFailed(t *testing.T) {
	proc, dirs := newTestProcessor(t)
	path := dropTrace(t, dirs, "corrupt.json", `{"traceEvents":[{`)

	err := proc.Process(context.Background(), path)
	var parseErr *trace.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *trace.ParseError, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(dirs.Failed(), "corrupt.json")); err != nil {
		t.Fatalf("expected trace in failed dir: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dirs.Failed(), "corrupt.report.json"))
	if err != nil {
		t.Fatalf("expected failure record: %v", err)
	}
	var rec failureRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("unmarshal failure record: %v", err)
	}
	if rec.Kind != "parse_error" {
		t.Errorf("kind = %q, want parse_error", rec.Kind)
	}
}

func TestProcessClassifiesInsufficientData(t *testing.T) {
	proc, dirs := newTestProcessor(t)
	// Parses fine, but no frame boundaries.
	path := dropTrace(t, dirs, "empty.json", `[{"name":"FunctionCall","cat":"v8","ph":"X","ts":0,"dur":1,"tid":1}]`)

	if err := proc.Process(context.Background(), path); err == nil {
		t.Fatal("expected error")
	}

	data, err := os.ReadFile(filepath.Join(dirs.Failed(), "empty.report.json"))
	if err != nil {
		t.Fatalf("expected failure record: %v", err)
	}
	var rec failureRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("unmarshal failure record: %v", err)
	}
	if rec.Kind != "insufficient_data" {
		t.Errorf("kind = %q, want insufficient_data", rec.Kind)
	}
}

func TestProcessRejectsSymlink(t *testing.T) {
	proc, dirs := newTestProcessor(t)

	target := filepath.Join(t.TempDir(), "outside.json")
	if err := os.WriteFile(target, []byte(goodTrace), 0600); err != nil {
		t.Fatalf("write target: %v", err)
	}
	link := filepath.Join(dirs.Inbox(), "sneaky.json")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if err := proc.Process(context.Background(), link); err == nil {
		t.Fatal("expected symlink rejection")
	}
}

func TestPollWatcherScanHandlesEachFileOnce(t *testing.T) {
	dirs := Dirs{Root: t.TempDir()}
	if err := dirs.Ensure(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	var handled []string
	w := NewPollWatcher(dirs.Inbox(), func(path string) {
		handled = append(handled, path)
	}, 0)

	dropTrace(t, dirs, "a.json", goodTrace)
	dropTrace(t, dirs, "b.json", goodTrace)
	dropTrace(t, dirs, "notes.txt", "not a trace")

	w.scan()
	w.scan() // second scan must not re-handle

	if len(handled) != 2 {
		t.Fatalf("expected 2 handled files, got %d: %v", len(handled), handled)
	}
}
