package gate

import (
	"fmt"

	"github.com/framegate/framegate/internal/stats"
)

// Verdict is the immutable outcome of one gate evaluation.
type Verdict struct {
	Passed        bool      `json:"passed"`
	ObservedValue float64   `json:"observedValue"`
	Threshold     float64   `json:"threshold"`
	StatisticUsed Statistic `json:"statisticUsed"`
	Reasons       []string  `json:"reasons,omitempty"`
}

// Evaluate applies the configured threshold to the summary and produces
// a verdict. Pure: reads nothing beyond its arguments, mutates nothing.
// The config must have passed Validate; an unknown statistic here falls
// back to the trimmed mean rather than panicking.
func Evaluate(summary stats.Summary, cfg *Config) Verdict {
	stat, err := cfg.StatisticUnderTest()
	if err != nil {
		stat = StatTrimmedMean
	}

	var observed float64
	switch stat {
	case StatMean:
		observed = summary.Mean
	case StatMedian:
		observed = summary.Median
	default:
		observed = summary.TrimmedMean
	}

	v := Verdict{
		Passed:        observed >= cfg.MinAcceptableFPS,
		ObservedValue: observed,
		Threshold:     cfg.MinAcceptableFPS,
		StatisticUsed: stat,
	}
	if !v.Passed {
		v.Reasons = append(v.Reasons, fmt.Sprintf("%s %.1f < threshold %.1f (%d samples)",
			stat, observed, cfg.MinAcceptableFPS, summary.SampleCount))
	}
	return v
}
