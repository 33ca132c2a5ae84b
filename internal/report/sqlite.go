package report

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/framegate/framegate/internal/gate"
	"github.com/framegate/framegate/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id             TEXT PRIMARY KEY,
	ts                 TEXT NOT NULL,
	source             TEXT,
	event_count        INTEGER NOT NULL,
	boundary_count     INTEGER NOT NULL,
	dropped_intervals  INTEGER NOT NULL,
	mean               REAL NOT NULL,
	median             REAL NOT NULL,
	standard_deviation REAL NOT NULL,
	trimmed_mean       REAL NOT NULL,
	sample_count       INTEGER NOT NULL,
	min_value          REAL NOT NULL,
	max_value          REAL NOT NULL,
	statistic_used     TEXT NOT NULL,
	observed_value     REAL NOT NULL,
	threshold          REAL NOT NULL,
	passed             INTEGER NOT NULL,
	reasons            TEXT,
	config_hash        TEXT
);
CREATE INDEX IF NOT EXISTS runs_ts ON runs(ts);
`

// SQLiteSink persists one flat row per pipeline run, queryable by the
// history command and external plotting tools.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the history database at path and
// ensures the schema exists.
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("report: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("report: create schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Record inserts one run row.
func (s *SQLiteSink) Record(r *pipeline.Report) error {
	_, err := s.db.Exec(`INSERT INTO runs (
		run_id, ts, source, event_count, boundary_count, dropped_intervals,
		mean, median, standard_deviation, trimmed_mean, sample_count,
		min_value, max_value, statistic_used, observed_value, threshold,
		passed, reasons, config_hash
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Timestamp, r.Source, r.EventCount, r.BoundaryCount, r.DroppedIntervals,
		r.Summary.Mean, r.Summary.Median, r.Summary.StdDev, r.Summary.TrimmedMean, r.Summary.SampleCount,
		r.Summary.Min, r.Summary.Max, string(r.Verdict.StatisticUsed), r.Verdict.ObservedValue, r.Verdict.Threshold,
		boolToInt(r.Verdict.Passed), strings.Join(r.Verdict.Reasons, "; "), r.ConfigHash,
	)
	if err != nil {
		return fmt.Errorf("report: insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *SQLiteSink) Recent(limit int) ([]pipeline.Report, error) {
	rows, err := s.db.Query(`SELECT
		run_id, ts, source, event_count, boundary_count, dropped_intervals,
		mean, median, standard_deviation, trimmed_mean, sample_count,
		min_value, max_value, statistic_used, observed_value, threshold,
		passed, reasons, config_hash
	FROM runs ORDER BY ts DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("report: query runs: %w", err)
	}
	defer rows.Close()

	var out []pipeline.Report
	for rows.Next() {
		var r pipeline.Report
		var stat, reasons string
		var passed int
		if err := rows.Scan(
			&r.RunID, &r.Timestamp, &r.Source, &r.EventCount, &r.BoundaryCount, &r.DroppedIntervals,
			&r.Summary.Mean, &r.Summary.Median, &r.Summary.StdDev, &r.Summary.TrimmedMean, &r.Summary.SampleCount,
			&r.Summary.Min, &r.Summary.Max, &stat, &r.Verdict.ObservedValue, &r.Verdict.Threshold,
			&passed, &reasons, &r.ConfigHash,
		); err != nil {
			return nil, fmt.Errorf("report: scan run: %w", err)
		}
		r.Verdict.StatisticUsed = gate.Statistic(stat)
		r.Verdict.Passed = passed != 0
		if reasons != "" {
			r.Verdict.Reasons = strings.Split(reasons, "; ")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: iterate runs: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
