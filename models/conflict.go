package models

import (
	"sync"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ============================================================================
// Conflict Resolution
//
// The merge engine already applied the server-wins default, so by the time
// a conflict reaches this file the remote copy is in the store. Resolution
// is therefore one-sided: choosing "remote" just acknowledges the default,
// while choosing "local" evicts the merged entry for that key and restores
// the original local quote. Conflicts are disjoint by key, so resolutions
// are order-independent.
// ============================================================================

// Resolution choices for a conflict.
const (
	ChooseLocal  = "local"
	ChooseRemote = "remote"
)

// conflictSetInstance holds the current cycle's conflicts, replaced
// wholesale on each sync. Package-level singleton like the store.
var conflictSetInstance = NewConflictSet()

// ConflictSet is the registry of unresolved conflicts from the most
// recent sync cycle.
type ConflictSet struct {
	mu        sync.Mutex
	conflicts map[string]Conflict
}

// NewConflictSet returns an empty registry.
func NewConflictSet() *ConflictSet {
	return &ConflictSet{conflicts: make(map[string]Conflict)}
}

// GetConflicts returns the package-level conflict registry.
func GetConflicts() *ConflictSet {
	return conflictSetInstance
}

// SetAll replaces the registry contents with a fresh cycle's conflicts.
// Unresolved conflicts from the prior cycle are dropped: the new merge
// either re-detected them or the sides now agree.
func (cs *ConflictSet) SetAll(conflicts []Conflict) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.conflicts = make(map[string]Conflict, len(conflicts))
	for _, c := range conflicts {
		cs.conflicts[c.Key] = c
	}
}

// List returns the pending conflicts in no particular order.
func (cs *ConflictSet) List() []Conflict {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	out := make([]Conflict, 0, len(cs.conflicts))
	for _, c := range cs.conflicts {
		out = append(out, c)
	}
	return out
}

// Count returns the number of pending conflicts.
func (cs *ConflictSet) Count() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.conflicts)
}

// Resolve applies a per-conflict override against the store. choice is
// ChooseLocal or ChooseRemote. Resolved conflicts leave the registry
// whichever way they go.
func (cs *ConflictSet) Resolve(store *QuoteStore, key, choice string) error {
	cs.mu.Lock()
	c, ok := cs.conflicts[key]
	if ok {
		delete(cs.conflicts, key)
	}
	cs.mu.Unlock()

	if !ok {
		return serr.New("no pending conflict for key", "key", key)
	}

	switch choice {
	case ChooseRemote:
		// The merge already applied the remote copy; nothing to undo.
		logger.Info("Conflict resolved", "key", key, "choice", choice)
		return nil

	case ChooseLocal:
		if err := store.ReplaceByKey(key, c.Local); err != nil {
			return serr.Wrap(err, "failed to restore local quote", "key", key)
		}
		logger.Info("Conflict resolved", "key", key, "choice", choice)
		return nil

	default:
		// Put it back: an invalid choice should not consume the conflict.
		cs.mu.Lock()
		cs.conflicts[key] = c
		cs.mu.Unlock()
		return serr.New("invalid conflict choice, expected local or remote", "choice", choice)
	}
}

// Diff renders an inline HTML diff of the local vs remote text for the
// review UI. Category disagreements are visible from the fields
// themselves, so only text is diffed.
func (c Conflict) Diff() string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(c.Local.Text, c.Remote.Text, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyHtml(diffs)
}
