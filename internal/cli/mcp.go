package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	framemcp "github.com/framegate/framegate/internal/mcp"
)

var (
	mcpConfig  string
	mcpHistory string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpConfig, "config", "", "Path to gate YAML (optional)")
	mcpCmd.Flags().StringVar(&mcpHistory, "history", "", "SQLite history database (optional)")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs framegate as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes tools: analyze_trace, evaluate_gate, gate_history.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	srv, err := framemcp.New(framemcp.Config{
		GateConfigPath: mcpConfig,
		HistoryDBPath:  mcpHistory,
	})
	if err != nil {
		fail(err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "framegate MCP server running on stdio")
	return srv.Run(ctx)
}
