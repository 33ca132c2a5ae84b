package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/framegate/framegate/internal/daemon"
	"github.com/framegate/framegate/internal/gate"
)

var (
	watchDir     string
	watchConfig  string
	watchHistory string
	watchLog     string
	watchPoll    time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "Watch root directory (required; inbox/outbox/failed created beneath)")
	watchCmd.Flags().StringVar(&watchConfig, "config", "", "Path to gate YAML (optional)")
	watchCmd.Flags().StringVar(&watchHistory, "history", "", "SQLite history database (optional)")
	watchCmd.Flags().StringVar(&watchLog, "log", "", "Hash-chained JSONL report log (optional)")
	watchCmd.Flags().DurationVar(&watchPoll, "poll", 0, "Poll interval instead of fsnotify (e.g. 5s; for NFS)")
	watchCmd.MarkFlagRequired("dir")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and gate every trace dropped into it",
	Long: "Runs as a daemon: each trace file created in <dir>/inbox is analyzed,\n" +
		"its report written to <dir>/outbox, and unparsable traces moved to\n" +
		"<dir>/failed with a failure record. Runs are independent and analyzed\n" +
		"concurrently.",
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, hash, err := gate.LoadConfigWithHash(watchConfig)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	dirs := daemon.Dirs{Root: watchDir}
	if err := dirs.Ensure(); err != nil {
		return err
	}

	sinks, err := openSinks(watchHistory, watchLog)
	if err != nil {
		return err
	}
	defer sinks.Close()

	proc := daemon.NewProcessor(daemon.ProcessorConfig{
		Dirs:       dirs,
		Gate:       cfg,
		ConfigHash: hash,
		Sinks:      sinks,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down watcher...")
		cancel()
	}()

	handler := func(path string) {
		if err := proc.Process(ctx, path); err != nil {
			fmt.Fprintf(os.Stderr, "framegate: %s: %v\n", path, err)
			return
		}
		fmt.Fprintf(os.Stderr, "processed %s\n", path)
	}

	// Traces dropped while the daemon was down are still gated.
	if err := daemon.ScanExisting(dirs.Inbox(), handler); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "framegate watching %s\n", dirs.Inbox())
	if watchPoll > 0 {
		return daemon.NewPollWatcher(dirs.Inbox(), handler, watchPoll).Run(ctx)
	}
	return daemon.NewInboxWatcher(dirs.Inbox(), handler).Run(ctx)
}
