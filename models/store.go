package models

import (
	"sort"
	"sync"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// ============================================================================
// Quote Store
//
// The store owns the live collection. All mutation goes through store
// methods, which also write the snapshot back to the kv table, so the
// in-memory slice and the persisted snapshot never drift for long.
// Both HTTP handlers and the sync goroutine touch the store, hence the
// RWMutex.
// ============================================================================

// storeInstance is the package-level singleton, following the same
// pattern as var db in kv.go.
var storeInstance *QuoteStore

// QuoteStore holds the current collection and persists it on change.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes []Quote
}

// InitStore loads the persisted collection (seeding defaults when absent
// or unreadable) and installs the package-level store instance.
func InitStore() (*QuoteStore, error) {
	s := &QuoteStore{}
	s.Load()
	storeInstance = s
	return s, nil
}

// GetStore returns the package-level store instance.
// Returns nil before InitStore — callers must nil-check in tests.
func GetStore() *QuoteStore {
	return storeInstance
}

// Load reads the snapshot from persistence. A missing or corrupt
// snapshot is not an error: the store seeds the default set and saves it,
// so Load always leaves a usable collection behind.
func (s *QuoteStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var quotes []Quote
	if !KVGet(KVQuotes, &quotes) || len(quotes) == 0 {
		quotes = DefaultQuotes()
		logger.Info("Seeded default quotes", "count", len(quotes))
	}
	s.quotes = quotes

	if err := s.saveLocked(); err != nil {
		logger.LogErr(err, "failed to persist quotes on load")
	}
}

// Save persists the current collection.
func (s *QuoteStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked()
}

func (s *QuoteStore) saveLocked() error {
	if err := KVSet(KVQuotes, s.quotes); err != nil {
		return serr.Wrap(err, "failed to save quotes snapshot")
	}
	return nil
}

// All returns a copy of the collection.
func (s *QuoteStore) All() []Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Quote, len(s.quotes))
	copy(out, s.quotes)
	return out
}

// Add validates, appends, and persists a new local quote.
func (s *QuoteStore) Add(text, category string) (Quote, error) {
	q, err := NewQuote(text, category)
	if err != nil {
		return Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = append(s.quotes, q)
	if err := s.saveLocked(); err != nil {
		return Quote{}, err
	}

	logger.Info("Quote added", "id", q.ID, "category", q.Category)
	return q, nil
}

// Replace swaps in a merged collection and persists it.
func (s *QuoteStore) Replace(quotes []Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = make([]Quote, len(quotes))
	copy(s.quotes, quotes)
	return s.saveLocked()
}

// ByCategory returns quotes whose category matches cat (normalized
// comparison). An empty cat returns everything.
func (s *QuoteStore) ByCategory(cat string) []Quote {
	if NormalizeText(cat) == "" {
		return s.All()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	want := NormalizeText(cat)
	var out []Quote
	for _, q := range s.quotes {
		if NormalizeText(q.Category) == want {
			out = append(out, q)
		}
	}
	return out
}

// Categories returns the distinct category names, sorted.
func (s *QuoteStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]string) // normalized -> display form (first wins)
	for _, q := range s.quotes {
		key := NormalizeText(q.Category)
		if _, ok := seen[key]; !ok {
			seen[key] = q.Category
		}
	}

	out := make([]string, 0, len(seen))
	for _, display := range seen {
		out = append(out, display)
	}
	sort.Strings(out)
	return out
}

// FindByKey returns the quote whose merge key matches, if any.
func (s *QuoteStore) FindByKey(key string) (Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.quotes {
		if NormalizeKey(q) == key {
			return q, true
		}
	}
	return Quote{}, false
}

// ReplaceByKey removes any quote matching the merge key and inserts q in
// its place, persisting the result. Used by conflict overrides: keeping
// the local side means evicting the merged (remote) entry for that key.
func (s *QuoteStore) ReplaceByKey(key string, q Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.quotes[:0]
	for _, existing := range s.quotes {
		if NormalizeKey(existing) != key {
			kept = append(kept, existing)
		}
	}
	s.quotes = append(kept, q)
	return s.saveLocked()
}

// Import appends sanitized quotes that are not already present, matching
// on normalized text+category. Returns how many were added. Duplicates
// and empty-text records are skipped silently; the caller already
// validated the document shape.
func (s *QuoteStore) Import(quotes []Quote) (added int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]bool, len(s.quotes))
	for _, q := range s.quotes {
		existing[DedupeKey(q)] = true
	}

	for _, q := range quotes {
		q, ok := Sanitize(q)
		if !ok {
			continue
		}
		key := DedupeKey(q)
		if existing[key] {
			continue
		}
		existing[key] = true
		s.quotes = append(s.quotes, q)
		added++
	}

	if added > 0 {
		if err := s.saveLocked(); err != nil {
			return added, err
		}
	}
	return added, nil
}

// Next returns the quote after the last-viewed one within cat, rotating
// back to the start, and records the new position. The rotation survives
// restarts via the last_quote session key.
func (s *QuoteStore) Next(cat string) (Quote, bool) {
	pool := s.ByCategory(cat)
	if len(pool) == 0 {
		return Quote{}, false
	}

	var lastID string
	KVGet(KVLastQuote, &lastID)

	idx := 0
	for i, q := range pool {
		if q.ID == lastID {
			idx = (i + 1) % len(pool)
			break
		}
	}

	q := pool[idx]
	if err := KVSet(KVLastQuote, q.ID); err != nil {
		logger.LogErr(err, "failed to persist last-viewed quote")
	}
	return q, true
}

// LastCategory returns the persisted category filter, empty when unset.
func LastCategory() string {
	var cat string
	KVGet(KVLastCategory, &cat)
	return cat
}

// SetLastCategory persists the category filter for the next session.
func SetLastCategory(cat string) error {
	return KVSet(KVLastCategory, cat)
}
