package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/framegate/framegate/internal/gate"
	"github.com/framegate/framegate/internal/stats"
	"github.com/framegate/framegate/internal/trace"
)

// Exit codes. A broken measurement (unparsable trace, no usable samples)
// must be distinguishable from a failed quality gate: the former means
// the pipeline is broken, the latter means the application regressed.
const (
	exitGateFailed = 1
	exitDataErr    = 65 // EX_DATAERR: parse error or insufficient data
	exitConfig     = 78 // EX_CONFIG: invalid gate configuration
)

var rootCmd = &cobra.Command{
	Use:   "framegate",
	Short: "Frame-rate quality gate for browser performance traces",
	Long: "Ingests a raw browser trace, derives instantaneous-FPS samples from\n" +
		"frame-boundary events, summarizes them, and applies a configurable\n" +
		"pass/fail threshold. Built for CI pipelines.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// fail prints the error and exits with the code matching its kind.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "framegate: %v\n", err)
	os.Exit(exitCodeFor(err))
}

// exitCodeFor maps an analysis error to a process exit code.
func exitCodeFor(err error) int {
	var cfgErr *gate.ConfigError
	if errors.As(err, &cfgErr) {
		return exitConfig
	}
	var parseErr *trace.ParseError
	if errors.As(err, &parseErr) {
		return exitDataErr
	}
	var dataErr *stats.InsufficientDataError
	if errors.As(err, &dataErr) {
		return exitDataErr
	}
	return 1
}
