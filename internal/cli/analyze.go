package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/framegate/framegate/internal/gate"
	"github.com/framegate/framegate/internal/pipeline"
)

var (
	analyzeConfig string
	analyzeFormat string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeConfig, "config", "", "Path to gate YAML (optional)")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text", "Output format (text|json)")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <trace.json>",
	Short: "Compute frame-rate statistics for one trace",
	Long: "Loads a browser trace file, extracts instantaneous-FPS samples from\n" +
		"frame-boundary events, and prints the statistical summary.\n\n" +
		"Exit code 65 if the trace is unparsable or yields no usable samples.",
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	r, err := analyzeTrace(args[0], analyzeConfig)
	if err != nil {
		fail(err)
	}

	switch analyzeFormat {
	case "json":
		out, err := pipeline.FormatJSON(r)
		if err != nil {
			return err
		}
		fmt.Println(out)
	default:
		fmt.Print(pipeline.FormatText(r))
	}
	return nil
}

// analyzeTrace loads config and trace, and runs the pipeline.
func analyzeTrace(tracePath, configPath string) (*pipeline.Report, error) {
	cfg, hash, err := gate.LoadConfigWithHash(configPath)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(tracePath)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}

	r, err := pipeline.Run(raw, cfg)
	if err != nil {
		return nil, err
	}
	r.Source = filepath.Base(tracePath)
	r.ConfigHash = hash
	return r, nil
}
