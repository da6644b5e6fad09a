package models

import (
	"strings"
	"testing"
)

// ============================================================================
// Conflict Resolution Tests
//
// The registry sits downstream of Merge: the remote copy is already in
// the store when Resolve runs, so "remote" is an acknowledgment and
// "local" is the only choice that touches data.
// ============================================================================

// setupConflict runs the documented Life-vs-Wisdom merge through a real
// store and returns the pieces a resolution test needs.
func setupConflict(t *testing.T) (*QuoteStore, *ConflictSet) {
	t.Helper()

	store := setupTestStore(t)
	if err := store.Replace(nil); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	local, err := store.Add("Be kind", "Life")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	remote := Quote{ID: "r1", Text: "be kind", Category: "Wisdom", Origin: OriginRemote, UpdatedAt: local.UpdatedAt}
	merged, conflicts := Merge(store.All(), []Quote{remote}, nil)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if err := store.Replace(merged); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	cs := NewConflictSet()
	cs.SetAll(conflicts)
	return store, cs
}

func TestResolveKeepRemote(t *testing.T) {
	store, cs := setupConflict(t)

	if err := cs.Resolve(store, "be kind", ChooseRemote); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	q, ok := store.FindByKey("be kind")
	if !ok {
		t.Fatal("quote missing after resolution")
	}
	if q.Category != "Wisdom" {
		t.Errorf("category = %q, want the remote %q", q.Category, "Wisdom")
	}
	if cs.Count() != 0 {
		t.Errorf("conflict registry count = %d, want 0", cs.Count())
	}
}

func TestResolveKeepLocal(t *testing.T) {
	store, cs := setupConflict(t)

	if err := cs.Resolve(store, "be kind", ChooseLocal); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	q, ok := store.FindByKey("be kind")
	if !ok {
		t.Fatal("quote missing after resolution")
	}
	if q.Category != "Life" {
		t.Errorf("category = %q, want the restored local %q", q.Category, "Life")
	}
	if q.Origin != OriginLocal {
		t.Errorf("origin = %q, want %q", q.Origin, OriginLocal)
	}
	if cs.Count() != 0 {
		t.Errorf("conflict registry count = %d, want 0", cs.Count())
	}
}

func TestResolveUnknownKey(t *testing.T) {
	store, cs := setupConflict(t)

	if err := cs.Resolve(store, "never heard of it", ChooseLocal); err == nil {
		t.Error("expected error for unknown conflict key")
	}
	if cs.Count() != 1 {
		t.Errorf("registry should be untouched, count = %d", cs.Count())
	}
}

func TestResolveInvalidChoiceKeepsConflict(t *testing.T) {
	store, cs := setupConflict(t)

	if err := cs.Resolve(store, "be kind", "coin-flip"); err == nil {
		t.Error("expected error for invalid choice")
	}
	if cs.Count() != 1 {
		t.Errorf("invalid choice must not consume the conflict, count = %d", cs.Count())
	}
}

func TestSetAllReplacesRegistry(t *testing.T) {
	cs := NewConflictSet()
	cs.SetAll([]Conflict{{Key: "a"}, {Key: "b"}})
	if cs.Count() != 2 {
		t.Fatalf("count = %d, want 2", cs.Count())
	}

	cs.SetAll([]Conflict{{Key: "c"}})
	if cs.Count() != 1 {
		t.Errorf("count after SetAll = %d, want 1", cs.Count())
	}
	if _, found := findConflict(cs.List(), "a"); found {
		t.Error("stale conflict survived SetAll")
	}
}

func TestConflictDiff(t *testing.T) {
	c := Conflict{
		Local:  Quote{Text: "Be kind always"},
		Remote: Quote{Text: "Be kind sometimes"},
	}
	diff := c.Diff()
	if !strings.Contains(diff, "ins") && !strings.Contains(diff, "del") {
		t.Errorf("expected an HTML diff with ins/del markup, got %q", diff)
	}
}

func findConflict(conflicts []Conflict, key string) (Conflict, bool) {
	for _, c := range conflicts {
		if c.Key == key {
			return c, true
		}
	}
	return Conflict{}, false
}
