package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/framegate/framegate/internal/gate"
	"github.com/framegate/framegate/internal/pipeline"
	"github.com/framegate/framegate/internal/stats"
	"github.com/framegate/framegate/internal/trace"
)

// --- Input/Output types ---

// AnalyzeInput defines parameters for the analyze_trace tool.
type AnalyzeInput struct {
	Path string `json:"path" jsonschema:"path to the trace JSON file"`
}

// AnalyzeOutput contains the frame-rate statistics or failure details.
type AnalyzeOutput struct {
	EventCount       int            `json:"eventCount,omitempty"`
	BoundaryCount    int            `json:"boundaryCount,omitempty"`
	DroppedIntervals int            `json:"droppedIntervals,omitempty"`
	Summary          *stats.Summary `json:"summary,omitempty"`
	ErrorKind        string         `json:"errorKind,omitempty"` // parse_error | insufficient_data
	Error            string         `json:"error,omitempty"`
}

// GateInput defines parameters for the evaluate_gate tool.
type GateInput struct {
	Path         string  `json:"path" jsonschema:"path to the trace JSON file"`
	MinFPS       float64 `json:"min_fps,omitempty" jsonschema:"override the configured FPS threshold"`
	RecordResult bool    `json:"record_result,omitempty" jsonschema:"persist the run to the history database"`
}

// GateOutput contains the gate verdict or failure details.
type GateOutput struct {
	Passed    bool           `json:"passed"`
	Verdict   *gate.Verdict  `json:"verdict,omitempty"`
	Summary   *stats.Summary `json:"summary,omitempty"`
	ErrorKind string         `json:"errorKind,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// HistoryInput defines parameters for the gate_history tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum runs to return (default 20)"`
}

// HistoryOutput lists recent gate runs.
type HistoryOutput struct {
	Runs  []pipeline.Report `json:"runs,omitempty"`
	Error string            `json:"error,omitempty"`
}

// --- Handlers ---

func (s *Server) handleAnalyze(ctx context.Context, req *mcpsdk.CallToolRequest, input AnalyzeInput) (*mcpsdk.CallToolResult, AnalyzeOutput, error) {
	r, err := s.runPipeline(input.Path, s.gateCfg)
	if err != nil {
		out := AnalyzeOutput{ErrorKind: errorKind(err), Error: err.Error()}
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, AnalyzeOutput{
		EventCount:       r.EventCount,
		BoundaryCount:    r.BoundaryCount,
		DroppedIntervals: r.DroppedIntervals,
		Summary:          &r.Summary,
	}, nil
}

func (s *Server) handleGate(ctx context.Context, req *mcpsdk.CallToolRequest, input GateInput) (*mcpsdk.CallToolResult, GateOutput, error) {
	cfg := s.gateCfg
	if input.MinFPS > 0 {
		override := *s.gateCfg
		override.MinAcceptableFPS = input.MinFPS
		cfg = &override
	}

	r, err := s.runPipeline(input.Path, cfg)
	if err != nil {
		out := GateOutput{ErrorKind: errorKind(err), Error: err.Error()}
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}

	if input.RecordResult && s.history != nil {
		if err := s.history.Record(r); err != nil {
			out := GateOutput{Error: err.Error()}
			return &mcpsdk.CallToolResult{IsError: true}, out, nil
		}
	}

	// A failed gate is a valid result, not a tool error.
	return nil, GateOutput{
		Passed:  r.Verdict.Passed,
		Verdict: &r.Verdict,
		Summary: &r.Summary,
	}, nil
}

func (s *Server) handleHistory(ctx context.Context, req *mcpsdk.CallToolRequest, input HistoryInput) (*mcpsdk.CallToolResult, HistoryOutput, error) {
	if s.history == nil {
		return &mcpsdk.CallToolResult{IsError: true}, HistoryOutput{Error: "history database not configured"}, nil
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	runs, err := s.history.Recent(limit)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, HistoryOutput{Error: err.Error()}, nil
	}
	return nil, HistoryOutput{Runs: runs}, nil
}

// runPipeline reads a trace file and runs the full pipeline on it.
func (s *Server) runPipeline(path string, cfg *gate.Config) (*pipeline.Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := pipeline.Run(raw, cfg)
	if err != nil {
		return nil, err
	}
	r.Source = filepath.Base(path)
	r.ConfigHash = s.configHash
	return r, nil
}

// errorKind classifies pipeline errors for tool consumers, so agents can
// tell a broken measurement apart from a regressed application.
func errorKind(err error) string {
	var parseErr *trace.ParseError
	if errors.As(err, &parseErr) {
		return "parse_error"
	}
	var dataErr *stats.InsufficientDataError
	if errors.As(err, &dataErr) {
		return "insufficient_data"
	}
	var cfgErr *gate.ConfigError
	if errors.As(err, &cfgErr) {
		return "config_error"
	}
	return "error"
}
