package daemon

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dirs is the directory layout of one watch root. Traces arrive in the
// inbox, reports land in the outbox, and traces that could not be
// analyzed move to failed with a failure record alongside.
type Dirs struct {
	Root string
}

// Inbox is where new trace files are dropped.
func (d Dirs) Inbox() string { return filepath.Join(d.Root, "inbox") }

// Outbox receives one report JSON per analyzed trace.
func (d Dirs) Outbox() string { return filepath.Join(d.Root, "outbox") }

// Failed receives traces whose analysis failed, plus a failure record.
func (d Dirs) Failed() string { return filepath.Join(d.Root, "failed") }

// Ensure creates the directory layout.
func (d Dirs) Ensure() error {
	for _, dir := range []string{d.Inbox(), d.Outbox(), d.Failed()} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("daemon: create %s: %w", dir, err)
		}
	}
	return nil
}
