package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/framegate/framegate/internal/pipeline"
	"github.com/framegate/framegate/internal/report"
)

var (
	gateConfig  string
	gateFormat  string
	gateHistory string
	gateLog     string
)

func init() {
	rootCmd.AddCommand(gateCmd)
	gateCmd.Flags().StringVar(&gateConfig, "config", "", "Path to gate YAML (optional)")
	gateCmd.Flags().StringVarP(&gateFormat, "format", "f", "text", "Output format (text|json)")
	gateCmd.Flags().StringVar(&gateHistory, "history", "", "SQLite history database to record the run (optional)")
	gateCmd.Flags().StringVar(&gateLog, "log", "", "Hash-chained JSONL report log to append the run (optional)")
}

var gateCmd = &cobra.Command{
	Use:   "gate <trace.json>",
	Short: "Apply the quality gate to one trace",
	Long: "Analyzes a trace and applies the configured FPS threshold.\n\n" +
		"Exit code 0 if the gate passes, 1 if it fails,\n" +
		"65 if the trace is unparsable or yields no usable samples,\n" +
		"78 if the gate configuration is invalid.\n" +
		"Use in CI to block frame-rate regressions.",
	Args: cobra.ExactArgs(1),
	RunE: runGate,
}

func runGate(cmd *cobra.Command, args []string) error {
	code, err := gateTrace(args[0], os.Stdout)
	if err != nil {
		return err
	}
	if code != 0 {
		// os.Exit skips deferred calls, so gateTrace has already
		// released the sinks by the time we get here.
		os.Exit(code)
	}
	return nil
}

// gateTrace analyzes one trace, records the run to the configured sinks,
// prints the report, and returns the process exit code. Sinks are closed
// before returning on every path.
func gateTrace(tracePath string, out io.Writer) (int, error) {
	r, err := analyzeTrace(tracePath, gateConfig)
	if err != nil {
		fail(err)
	}

	sinks, err := openSinks(gateHistory, gateLog)
	if err != nil {
		return 0, err
	}
	if len(sinks) > 0 {
		if err := sinks.Record(r); err != nil {
			sinks.Close()
			return 0, err
		}
	}
	if err := sinks.Close(); err != nil {
		return 0, err
	}

	switch gateFormat {
	case "json":
		rendered, err := pipeline.FormatJSON(r)
		if err != nil {
			return 0, err
		}
		fmt.Fprintln(out, rendered)
	default:
		fmt.Fprint(out, pipeline.FormatText(r))
	}

	if !r.Verdict.Passed {
		return exitGateFailed, nil
	}
	return 0, nil
}

// openSinks assembles the optional report sinks from flag values.
func openSinks(historyPath, logPath string) (report.Multi, error) {
	var sinks report.Multi
	if historyPath != "" {
		s, err := report.OpenSQLite(historyPath)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if logPath != "" {
		s, err := report.OpenJSONL(logPath)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}
