package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/framegate/framegate/internal/pipeline"
	"github.com/framegate/framegate/internal/report"
)

var (
	historyDB     string
	historyLimit  int
	historyFormat string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyDB, "db", "", "SQLite history database (required)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to show")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "Output format (text|json)")
	historyCmd.MarkFlagRequired("db")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent quality-gate runs",
	Long:  "Lists runs recorded in the SQLite history database, newest first.",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	sink, err := report.OpenSQLite(historyDB)
	if err != nil {
		return err
	}
	defer sink.Close()

	runs, err := sink.Recent(historyLimit)
	if err != nil {
		return err
	}

	switch historyFormat {
	case "json":
		out, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal history: %w", err)
		}
		fmt.Println(string(out))
	default:
		fmt.Print(formatHistoryText(runs))
	}
	return nil
}

func formatHistoryText(runs []pipeline.Report) string {
	if len(runs) == 0 {
		return "No runs recorded.\n"
	}

	var b strings.Builder
	for _, r := range runs {
		status := "PASS"
		if !r.Verdict.Passed {
			status = "FAIL"
		}
		source := r.Source
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(&b, "  %s  %s  %-30s %s %.1f (threshold %.1f, %d samples)\n",
			r.Timestamp, status, source,
			r.Verdict.StatisticUsed, r.Verdict.ObservedValue, r.Verdict.Threshold,
			r.Summary.SampleCount)
	}
	return b.String()
}
