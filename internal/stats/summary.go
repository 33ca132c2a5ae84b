package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/framegate/framegate/internal/frame"
)

// InsufficientDataError reports that no usable samples remained — either
// the input was empty or trimming removed everything. Available is the
// sample count that existed before trimming.
type InsufficientDataError struct {
	Available int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("stats: insufficient data (%d samples available)", e.Available)
}

// Summary aggregates the instantaneous-FPS values of one sample sequence.
// Field names match the flat record consumed by report sinks.
type Summary struct {
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	StdDev      float64 `json:"standardDeviation"`
	TrimmedMean float64 `json:"trimmedMean"`
	SampleCount int     `json:"sampleCount"`
	Min         float64 `json:"minValue"`
	Max         float64 `json:"maxValue"`
}

// Summarize computes a Summary over the FPS values of samples.
// Mean and standard deviation use population formulas; the median is the
// middle of the sorted values (average of the two middle values when the
// count is even). Timestamps are carried by the samples but never enter
// the arithmetic. Empty input, or trimming that removes every sample,
// fails with *InsufficientDataError.
func Summarize(samples []frame.Sample, trim Trim) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, &InsufficientDataError{Available: 0}
	}

	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.FPS
	}

	mean := meanOf(values)
	stddev := stddevOf(values, mean)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	trimmed, err := trimmedMean(values, mean, stddev, trim)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Mean:        mean,
		Median:      medianOfSorted(sorted),
		StdDev:      stddev,
		TrimmedMean: trimmed,
		SampleCount: len(samples),
		Min:         sorted[0],
		Max:         sorted[len(sorted)-1],
	}, nil
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddevOf(values []float64, mean float64) float64 {
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

func medianOfSorted(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// trimmedMean applies the trim strategy to the chronological value
// sequence and averages the remainder.
func trimmedMean(values []float64, mean, stddev float64, trim Trim) (float64, error) {
	switch trim.Kind {
	case TrimNone:
		return mean, nil

	case TrimDropFirstN:
		if trim.N >= len(values) {
			return 0, &InsufficientDataError{Available: len(values)}
		}
		return meanOf(values[trim.N:]), nil

	case TrimDropBeyondStdDev:
		kept := make([]float64, 0, len(values))
		for _, v := range values {
			if math.Abs(v-mean) <= trim.K*stddev {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			return 0, &InsufficientDataError{Available: len(values)}
		}
		return meanOf(kept), nil

	default:
		return mean, nil
	}
}
