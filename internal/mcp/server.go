// Package mcp exposes the trace analysis pipeline as MCP tools over
// stdio, so agent tooling can run the quality gate without shelling out.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/framegate/framegate/internal/gate"
	"github.com/framegate/framegate/internal/report"
)

// Config holds MCP server configuration.
type Config struct {
	GateConfigPath string
	HistoryDBPath  string // optional; enables the SQLite sink
}

// Server wraps the MCP SDK server around the analysis pipeline.
type Server struct {
	mcpServer  *mcpsdk.Server
	gateCfg    *gate.Config
	configHash string
	history    *report.SQLiteSink
}

// New creates an MCP server with loaded gate configuration.
func New(cfg Config) (*Server, error) {
	gateCfg, hash, err := gate.LoadConfigWithHash(cfg.GateConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load gate config: %w", err)
	}
	if err := gateCfg.Validate(); err != nil {
		return nil, err
	}

	var history *report.SQLiteSink
	if cfg.HistoryDBPath != "" {
		history, err = report.OpenSQLite(cfg.HistoryDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
	}

	s := &Server{
		gateCfg:    gateCfg,
		configHash: hash,
		history:    history,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "framegate",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the history sink if configured.
func (s *Server) Close() error {
	if s.history != nil {
		return s.history.Close()
	}
	return nil
}

// registerTools adds all framegate tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "analyze_trace",
		Description: "Analyze a browser performance trace file: frame-rate statistics (mean, median, stddev, trimmed mean) derived from frame-boundary events.",
	}, s.handleAnalyze)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "evaluate_gate",
		Description: "Run the frame-rate quality gate on a trace file. Returns the verdict with failure reasons; optionally overrides the configured FPS threshold.",
	}, s.handleGate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "gate_history",
		Description: "List recent quality-gate runs from the history database.",
	}, s.handleHistory)
}
