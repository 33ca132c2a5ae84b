package report

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/framegate/framegate/internal/pipeline"
)

// GenesisHash is the prev_hash for the first entry in a new report log.
const GenesisHash = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// chainedReport is one JSONL line: the report plus the hash of the
// previous line, forming a tamper-evident chain.
type chainedReport struct {
	pipeline.Report
	PrevHash string `json:"prev_hash"`
}

// JSONLSink is an append-only JSONL report log with SHA-256 hash chaining.
type JSONLSink struct {
	path     string
	file     *os.File
	prevHash string
	mu       sync.Mutex
}

// OpenJSONL opens (or creates) a report log file for appending.
// If the file already exists, it reads the last line to recover the
// chain tail.
func OpenJSONL(path string) (*JSONLSink, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("report: create directory: %w", err)
	}

	prevHash := GenesisHash

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("report: read existing log: %w", err)
		}
		scanner := bufio.NewScanner(f)
		var lastLine []byte
		for scanner.Scan() {
			lastLine = make([]byte, len(scanner.Bytes()))
			copy(lastLine, scanner.Bytes())
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("report: scan existing log: %w", err)
		}
		if len(lastLine) > 0 {
			prevHash = HashLine(lastLine)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("report: open file: %w", err)
	}

	return &JSONLSink{
		path:     path,
		file:     file,
		prevHash: prevHash,
	}, nil
}

// Record appends one report line with hash chaining and syncs to disk.
func (s *JSONLSink) Record(r *pipeline.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := chainedReport{Report: *r, PrevHash: s.prevHash}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("report: marshal entry: %w", err)
	}

	if _, err := s.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("report: write entry: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("report: sync: %w", err)
	}

	s.prevHash = HashLine(line)
	return nil
}

// Close flushes and closes the underlying file.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// HashLine returns "sha256:<hex>" of the given bytes.
func HashLine(line []byte) string {
	h := sha256.Sum256(line)
	return "sha256:" + hex.EncodeToString(h[:])
}
