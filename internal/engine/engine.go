// Package engine drives the extraction pipeline: list candidate containers
// from Cursor's store, resolve project context, drop already-seen fragments,
// build conversations, and merge-persist them. One Engine instance owns the
// store reader and the dedup tracker; nothing else mutates them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cursorvault/cursorvault/internal/conversation"
	"github.com/cursorvault/cursorvault/internal/cursordb"
	"github.com/cursorvault/cursorvault/internal/gitstate"
	"github.com/cursorvault/cursorvault/internal/persist"
	"github.com/cursorvault/cursorvault/internal/record"
	"github.com/cursorvault/cursorvault/internal/track"
	"github.com/cursorvault/cursorvault/internal/workspace"
)

// Options configures an Engine.
type Options struct {
	Reader   *cursordb.Reader
	Resolver *workspace.Resolver
	Tracker  *track.Tracker
	Store    *persist.Store
	Counter  conversation.TokenCounter

	// Active is the project context conversations must belong to.
	Active workspace.Context
	// ProjectRoot is where the git checkpoint is read from.
	ProjectRoot string
	// FilterCode redacts code from assistant messages.
	FilterCode bool

	Logger *slog.Logger
}

// Engine runs extraction cycles.
type Engine struct {
	reader      *cursordb.Reader
	resolver    *workspace.Resolver
	tracker     *track.Tracker
	store       *persist.Store
	counter     conversation.TokenCounter
	active      workspace.Context
	projectRoot string
	filterCode  bool
	logger      *slog.Logger
}

// New creates an Engine. The tracker should already be reseeded from the
// persisted store (persist.Store.Reseed) so restart is safe.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	counter := opts.Counter
	if counter == nil {
		counter = conversation.HeuristicCounter{}
	}
	return &Engine{
		reader:      opts.Reader,
		resolver:    opts.Resolver,
		tracker:     opts.Tracker,
		store:       opts.Store,
		counter:     counter,
		active:      opts.Active,
		projectRoot: opts.ProjectRoot,
		filterCode:  opts.FilterCode,
		logger:      logger,
	}
}

// CycleSummary reports what one extraction cycle did.
type CycleSummary struct {
	Containers  int // candidate containers listed
	Matched     int // containers resolved to the active project
	Saved       int // conversations persisted
	NewMessages int // messages emitted this cycle
}

// RunCycle performs one extraction poll. Per-container failures are logged
// and skipped; only a store-level failure (or the no-container-id invariant
// break) aborts the cycle.
func (e *Engine) RunCycle(ctx context.Context) (CycleSummary, error) {
	return e.runCycle(ctx, false, nil)
}

// Backfill re-extracts the full fragment history of every matching
// container, clearing per-container dedup state first. The merge step still
// enforces the no-duplicate invariant, so re-delivered fragments collapse
// into the persisted record. progress, if non-nil, is called after each
// container.
func (e *Engine) Backfill(ctx context.Context, progress func(done, total int)) (CycleSummary, error) {
	return e.runCycle(ctx, true, progress)
}

func (e *Engine) runCycle(ctx context.Context, full bool, progress func(done, total int)) (CycleSummary, error) {
	var sum CycleSummary

	rows, err := e.reader.ListByPrefix(cursordb.ContainerPrefix)
	if err != nil {
		return sum, fmt.Errorf("engine: list containers: %w", err)
	}
	sum.Containers = len(rows)

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := e.processContainer(row, full, &sum); err != nil {
			if errors.Is(err, persist.ErrNoContainerID) {
				// Invariant break, not a bad row. Surface it.
				return sum, err
			}
			e.logger.Warn("container skipped", "key", row.Key, "error", err)
		}
		if progress != nil {
			progress(i+1, len(rows))
		}
	}

	if sum.Saved > 0 {
		e.notifyCheckpointOutput()
	}

	return sum, nil
}

// processContainer handles one candidate row end to end.
func (e *Engine) processContainer(row cursordb.Row, full bool, sum *CycleSummary) error {
	c, err := record.DecodeContainer(row.Value)
	if err != nil {
		return err
	}

	if full {
		e.tracker.Reset(c.ID)
	}
	newIDs := e.tracker.FilterNew(c.ID, c.FragmentIDs())
	if len(newIDs) == 0 {
		return nil
	}

	projectCtx, ok := e.resolver.Resolve(e.active, c, e.reader)
	if !ok {
		e.logger.Debug("container not for active project", "container", c.ID)
		return nil
	}
	sum.Matched++

	// One point lookup per new fragment. Reads complete before the build
	// runs; a malformed body drops that fragment only. A missing body is
	// not disposed of: the container header can land before its fragment
	// row mid-write, so the id stays unseen and the next re-scan retries.
	fragments := make([]record.Fragment, 0, len(newIDs))
	disposed := make([]string, 0, len(newIDs))
	for _, id := range newIDs {
		raw, found, err := e.reader.Get(cursordb.FragmentKey(c.ID, id))
		if err != nil {
			return fmt.Errorf("engine: fetch fragment %s: %w", id, err)
		}
		if !found {
			e.logger.Debug("fragment body missing", "container", c.ID, "fragment", id)
			continue
		}
		disposed = append(disposed, id)
		frag, err := record.DecodeFragment(id, raw)
		if err != nil {
			e.logger.Warn("fragment skipped", "container", c.ID, "fragment", id, "error", err)
			continue
		}
		fragments = append(fragments, frag)
	}

	conv := conversation.Build(c, fragments, conversation.BuildOptions{
		FilterCode: e.filterCode,
		Counter:    e.counter,
	})
	if conv == nil {
		// Nothing with a recognized role; remember the fetched fragments
		// so they are not refetched every cycle.
		e.tracker.MarkSeen(c.ID, disposed)
		return nil
	}
	conv.Metadata.ProjectContext = projectCtx.String()

	merged, err := e.store.SaveMerged(*conv, e.counter)
	if err != nil {
		return err
	}

	// Seen-state advances only after the write lands, and only for
	// fragments whose body was actually read; a failed persist is retried
	// wholesale on the next tick.
	e.tracker.MarkSeen(c.ID, disposed)
	sum.Saved++
	sum.NewMessages += len(conv.Messages)

	e.logger.Info("conversation saved",
		"container", c.ID,
		"title", merged.Title,
		"new_messages", len(conv.Messages),
		"total_messages", merged.Metadata.TotalMessages,
	)
	return nil
}

// notifyCheckpointOutput regenerates the since-checkpoint derived output.
// Fire and forget: failures are logged, never escalated.
func (e *Engine) notifyCheckpointOutput() {
	cp := gitstate.Capture(e.projectRoot)
	if err := e.store.WriteSinceCheckpoint(cp.CommitTime); err != nil {
		e.logger.Warn("since-checkpoint output failed", "error", err)
	}
}

// Tracker exposes the dedup tracker for status reporting.
func (e *Engine) Tracker() *track.Tracker {
	return e.tracker
}
