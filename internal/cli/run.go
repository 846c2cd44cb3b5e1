package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/cursorvault/cursorvault/internal/engine"
)

func newRunCmd() *cobra.Command {
	var intervalMs int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll Cursor's storage and archive new conversation messages",
		Long: `Start a long-running poller that extracts new conversation messages for the
current project on a fixed interval and merges them into .cursorvault/.

Cursor's workspace registry file is watched so workspace changes on the
editor side take effect between polls.

Press Ctrl-C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findRoot()
			if err != nil {
				return err
			}

			p, err := buildPipeline(root)
			if err != nil {
				return err
			}
			defer p.Close()

			if !p.cfg.Poll.AutoSave {
				return fmt.Errorf("auto-save is disabled (poll.auto_save = false); use `cursorvault sync` for manual extraction")
			}

			poll := p.cfg.Poll
			if intervalMs > 0 {
				poll.IntervalMs = intervalMs
			}
			interval := time.Duration(poll.ClampedInterval()) * time.Millisecond

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Handle Ctrl-C gracefully.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Println("\nStopping.")
				cancel()
			}()

			// Reload the workspace registry when Cursor rewrites it.
			if watcher, err := fsnotify.NewWatcher(); err == nil {
				defer watcher.Close()
				if err := watcher.Add(filepath.Dir(p.registry.Path())); err == nil {
					go watchRegistry(ctx, watcher, p)
				}
			}

			fmt.Printf("Watching Cursor storage for %s (every %s). Press Ctrl-C to stop.\n", root, interval)

			sched := engine.NewScheduler(p.engine, interval, p.logger)
			sched.Run(ctx)
			return nil
		},
	}

	cmd.Flags().IntVar(&intervalMs, "interval", 0, "poll interval in milliseconds (clamped to [5000, 300000])")

	return cmd
}

// watchRegistry reloads the workspace registry on writes to storage.json.
func watchRegistry(ctx context.Context, watcher *fsnotify.Watcher, p *pipeline) {
	target := p.registry.Path()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := p.registry.Reload(); err != nil {
					p.logger.Debug("registry reload failed", "error", err)
				} else {
					p.logger.Debug("workspace registry reloaded")
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Debug("registry watch error", "error", err)
		}
	}
}
