package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault is the default debounce interval for file events.
// Trace exports are not always written in one shot; the debounce
// absorbs partial-write event storms.
const debounceDefault = 200 * time.Millisecond

// maxConcurrentJobs limits how many inbox traces are analyzed at once.
// Runs are independent (no shared state), so the bound exists only to
// cap memory: trace files can be large.
const maxConcurrentJobs = 4

// maxQueueSize is the buffer size for the work queue channel. Must be
// larger than maxConcurrentJobs to absorb bursts without blocking the
// debounce flush.
const maxQueueSize = 200

// pollDefault is the default polling interval when fsnotify is unavailable.
const pollDefault = 5 * time.Second

// isTraceFile reports whether a path looks like a finished trace export.
// Hidden files and .tmp suffixes are in-progress writes or editor
// droppings, not traces.
func isTraceFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".")
}

// batch accumulates debounced paths between flushes. Paths are
// deduplicated: a trace rewritten during the debounce window is
// analyzed once.
type batch struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func newBatch() *batch {
	return &batch{paths: make(map[string]struct{})}
}

func (b *batch) add(path string) {
	b.mu.Lock()
	b.paths[path] = struct{}{}
	b.mu.Unlock()
}

// drain returns the accumulated paths in stable order and clears the batch.
func (b *batch) drain() []string {
	b.mu.Lock()
	out := make([]string, 0, len(b.paths))
	for p := range b.paths {
		out = append(out, p)
	}
	b.paths = make(map[string]struct{})
	b.mu.Unlock()

	sort.Strings(out)
	return out
}

// startWorkers launches the fixed analysis pool draining queue. The
// pool and the caller's loop are the only goroutines: no per-file
// spawning under burst load. Each handler call is panic-guarded so one
// corrupt trace cannot take the daemon down.
func startWorkers(n int, queue <-chan string, handler func(path string)) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range queue {
				handleGuarded(handler, path)
			}
		}()
	}
	return &wg
}

func handleGuarded(handler func(path string), path string) {
	defer func() {
		if r := recover(); r != nil {
			_ = r
		}
	}()
	handler(path)
}

// ScanExisting hands any trace files already present in the inbox to
// the handler. Called at startup so traces that arrived while the
// daemon was down are still analyzed.
func ScanExisting(inbox string, handler func(path string)) error {
	entries, err := os.ReadDir(inbox)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(inbox, e.Name())
		if isTraceFile(path) {
			handler(path)
		}
	}
	return nil
}

// InboxWatcher watches the inbox for new trace files using fsnotify.
type InboxWatcher struct {
	inbox    string
	handler  func(path string)
	debounce time.Duration
}

// NewInboxWatcher creates a watcher for the inbox directory.
func NewInboxWatcher(inbox string, handler func(path string)) *InboxWatcher {
	return &InboxWatcher{
		inbox:    inbox,
		handler:  handler,
		debounce: debounceDefault,
	}
}

// Run watches the inbox for new trace files. Blocks until ctx is
// cancelled; pending work is flushed to the pool and drained before
// returning.
func (w *InboxWatcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(w.inbox); err != nil {
		return err
	}

	queue := make(chan string, maxQueueSize)
	wg := startWorkers(maxConcurrentJobs, queue, w.handler)

	pending := newBatch()
	flush := func() {
		for _, p := range pending.drain() {
			select {
			case queue <- p:
			case <-ctx.Done():
				return
			}
		}
	}

	// Single debounce timer, initialized as stopped; first event starts it.
	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()

	defer func() {
		debounceTimer.Stop()
		flush()
		close(queue)
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounceTimer.C:
			flush()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !isTraceFile(event.Name) {
				continue
			}

			pending.add(event.Name)

			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			_ = err
		}
	}
}

// PollWatcher watches the inbox for new trace files using polling.
// Used as a fallback when fsnotify is unavailable (e.g., NFS).
type PollWatcher struct {
	inbox    string
	handler  func(path string)
	interval time.Duration
	seen     map[string]bool
}

// NewPollWatcher creates a polling-based watcher.
func NewPollWatcher(inbox string, handler func(path string), interval time.Duration) *PollWatcher {
	if interval == 0 {
		interval = pollDefault
	}
	return &PollWatcher{
		inbox:    inbox,
		handler:  handler,
		interval: interval,
		seen:     make(map[string]bool),
	}
}

// Run polls the inbox directory. Blocks until ctx is cancelled.
func (w *PollWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.scan()
		}
	}
}

// scan checks for new trace files in the inbox.
func (w *PollWatcher) scan() {
	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !isTraceFile(e.Name()) {
			continue
		}
		path := filepath.Join(w.inbox, e.Name())
		if w.seen[path] {
			continue
		}
		w.seen[path] = true
		w.handler(path)
	}
}
