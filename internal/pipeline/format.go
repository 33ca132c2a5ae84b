package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatText renders a report as human-readable text.
func FormatText(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Trace: %s events, %s frame boundaries",
		humanize.Comma(int64(r.EventCount)), humanize.Comma(int64(r.BoundaryCount)))
	if r.Source != "" {
		fmt.Fprintf(&b, " (%s)", r.Source)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  categories: %s\n", r.Categories)
	if r.DroppedIntervals > 0 {
		fmt.Fprintf(&b, "  %d zero/negative intervals excluded\n", r.DroppedIntervals)
	}

	s := r.Summary
	fmt.Fprintf(&b, "\nFPS over %d samples:\n", s.SampleCount)
	fmt.Fprintf(&b, "  mean    %7.2f\n", s.Mean)
	fmt.Fprintf(&b, "  median  %7.2f\n", s.Median)
	fmt.Fprintf(&b, "  stddev  %7.2f\n", s.StdDev)
	fmt.Fprintf(&b, "  trimmed %7.2f\n", s.TrimmedMean)
	fmt.Fprintf(&b, "  min     %7.2f\n", s.Min)
	fmt.Fprintf(&b, "  max     %7.2f\n", s.Max)

	v := r.Verdict
	if v.Passed {
		fmt.Fprintf(&b, "\n  PASS  %s %.1f >= threshold %.1f\n", v.StatisticUsed, v.ObservedValue, v.Threshold)
	} else {
		fmt.Fprintf(&b, "\n  FAIL  %s\n", strings.Join(v.Reasons, "; "))
	}

	return b.String()
}

// FormatJSON renders a report as indented JSON.
func FormatJSON(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(data), nil
}
