// Package report persists completed pipeline runs for plotting and
// alerting collaborators. Two sinks ship: a hash-chained JSONL log and
// a SQLite history store.
package report

import "github.com/framegate/framegate/internal/pipeline"

// Sink receives completed run reports. Implementations own durability;
// the pipeline itself has no external effects before this boundary.
type Sink interface {
	Record(r *pipeline.Report) error
	Close() error
}

// Multi fans one report out to several sinks, stopping at the first error.
type Multi []Sink

// Record sends the report to every sink in order.
func (m Multi) Record(r *pipeline.Report) error {
	for _, s := range m {
		if err := s.Record(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, returning the first error encountered.
func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
