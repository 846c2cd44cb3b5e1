// Package track holds the process-lifetime record of which fragments have
// already been emitted per container, so a re-entrant poll loop never
// duplicates output. The engine owns the single Tracker instance and is the
// only mutator; the scheduler's at-most-one-poll guarantee stands in for
// internal locking.
package track

// Tracker maps container identifier → set of fragment identifiers emitted
// at least once.
type Tracker struct {
	seen map[string]map[string]struct{}
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]map[string]struct{})}
}

// Seen reports whether the fragment has already been emitted for the container.
func (t *Tracker) Seen(containerID, fragmentID string) bool {
	_, ok := t.seen[containerID][fragmentID]
	return ok
}

// FilterNew returns the fragment IDs not yet seen for the container,
// preserving input order.
func (t *Tracker) FilterNew(containerID string, fragmentIDs []string) []string {
	var out []string
	for _, id := range fragmentIDs {
		if id == "" || t.Seen(containerID, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// MarkSeen records the fragment IDs as emitted for the container.
func (t *Tracker) MarkSeen(containerID string, fragmentIDs []string) {
	if len(fragmentIDs) == 0 {
		return
	}
	set := t.seen[containerID]
	if set == nil {
		set = make(map[string]struct{})
		t.seen[containerID] = set
	}
	for _, id := range fragmentIDs {
		if id != "" {
			set[id] = struct{}{}
		}
	}
}

// SeenCount returns the number of fragments recorded for the container.
func (t *Tracker) SeenCount(containerID string) int {
	return len(t.seen[containerID])
}

// Containers returns the number of containers with recorded state.
func (t *Tracker) Containers() int {
	return len(t.seen)
}

// Reset clears all state for the container. Used by backfill, which
// re-extracts the full history and relies on the merge step for dedup.
func (t *Tracker) Reset(containerID string) {
	delete(t.seen, containerID)
}
