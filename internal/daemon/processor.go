package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/framegate/framegate/internal/gate"
	"github.com/framegate/framegate/internal/pipeline"
	"github.com/framegate/framegate/internal/report"
	"github.com/framegate/framegate/internal/stats"
	"github.com/framegate/framegate/internal/trace"
)

// ProcessorConfig holds runtime configuration for trace processing.
type ProcessorConfig struct {
	Dirs       Dirs
	Gate       *gate.Config
	ConfigHash string
	Sinks      report.Sink // optional; nil disables persistence
}

// Processor analyzes inbox traces and routes the results:
// pass/fail reports to the outbox, broken traces to failed.
type Processor struct {
	cfg ProcessorConfig
}

// NewProcessor creates a processor with the given configuration.
func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{cfg: cfg}
}

// failureRecord is written next to a trace whose analysis failed.
// kind distinguishes a broken measurement pipeline from a gate failure;
// CI consumers key off it.
type failureRecord struct {
	Source string `json:"source"`
	TS     string `json:"ts"`
	Kind   string `json:"kind"` // parse_error | insufficient_data | error
	Error  string `json:"error"`
}

// Process handles a single trace file through its full lifecycle:
// read → analyze → write report to outbox, or move to failed with a
// failure record. Returns the analysis error, if any, after routing.
func (p *Processor) Process(_ context.Context, tracePath string) error {
	// Reject symlinks before reading: an inbox symlink would let a
	// writer route arbitrary filesystem paths through the analyzer.
	fi, err := os.Lstat(tracePath)
	if err != nil {
		return fmt.Errorf("stat trace file: %w", err)
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("rejected symlink: %s", filepath.Base(tracePath))
	}

	raw, err := os.ReadFile(tracePath)
	if err != nil {
		return fmt.Errorf("read trace file: %w", err)
	}

	r, err := pipeline.Run(raw, p.cfg.Gate)
	if err != nil {
		if ferr := p.moveToFailed(tracePath, err); ferr != nil {
			return ferr
		}
		return err
	}
	r.Source = filepath.Base(tracePath)
	r.ConfigHash = p.cfg.ConfigHash

	if p.cfg.Sinks != nil {
		if err := p.cfg.Sinks.Record(r); err != nil {
			return fmt.Errorf("record report: %w", err)
		}
	}

	outPath := filepath.Join(p.cfg.Dirs.Outbox(), reportName(tracePath))
	if err := writeJSON(outPath, r); err != nil {
		return err
	}

	return os.Remove(tracePath)
}

// moveToFailed relocates a broken trace and writes a failure record
// alongside it.
func (p *Processor) moveToFailed(tracePath string, cause error) error {
	base := filepath.Base(tracePath)
	if err := moveFile(tracePath, filepath.Join(p.cfg.Dirs.Failed(), base)); err != nil {
		return fmt.Errorf("move to failed: %w", err)
	}

	rec := failureRecord{
		Source: base,
		TS:     time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Kind:   failureKind(cause),
		Error:  cause.Error(),
	}
	return writeJSON(filepath.Join(p.cfg.Dirs.Failed(), reportName(tracePath)), rec)
}

// failureKind classifies an analysis error for the failure record.
func failureKind(err error) string {
	var parseErr *trace.ParseError
	if errors.As(err, &parseErr) {
		return "parse_error"
	}
	var dataErr *stats.InsufficientDataError
	if errors.As(err, &dataErr) {
		return "insufficient_data"
	}
	return "error"
}

// reportName derives the report filename from a trace filename:
// scroll.json → scroll.report.json.
func reportName(tracePath string) string {
	base := filepath.Base(tracePath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".report.json"
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// moveFile renames src to dst, falling back to copy+remove across
// filesystem boundaries (EXDEV under bind mounts).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0600); err != nil {
		return err
	}
	return os.Remove(src)
}
