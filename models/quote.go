package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rohanthewiz/serr"
)

// Origin values record where a quote entered the collection.
const (
	OriginLocal  = "local"  // entered by the user on this instance
	OriginRemote = "remote" // pulled from a remote source
)

// DefaultCategory is used whenever a quote arrives without one.
const DefaultCategory = "General"

// Quote is a single text item on the board.
type Quote struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	UpdatedAt time.Time `json:"updated_at"`
	Origin    string    `json:"origin"`
}

// KeyFunc computes the merge identity of a quote. The default is
// NormalizeKey; swapping in an ID-based function changes identity
// semantics without touching the merge algorithm.
type KeyFunc func(Quote) string

// NormalizeText lowercases and trims a string. Idempotent.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeKey is the default merge identity: quotes with equal
// normalized text are the same logical quote regardless of id or origin.
// Two distinct quotes with coincidentally identical text will collapse
// into one; that is the documented policy, not an accident.
func NormalizeKey(q Quote) string {
	return NormalizeText(q.Text)
}

// DedupeKey identifies a quote for import deduplication, which is
// stricter than merge identity: text and category both count.
func DedupeKey(q Quote) string {
	return NormalizeText(q.Text) + "\x00" + NormalizeText(q.Category)
}

// NewQuote builds a validated local quote. Text must be non-empty after
// trimming; category falls back to DefaultCategory.
func NewQuote(text, category string) (Quote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Quote{}, serr.New("quote text is required")
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}

	return Quote{
		ID:        uuid.New().String(),
		Text:      text,
		Category:  category,
		UpdatedAt: time.Now(),
		Origin:    OriginLocal,
	}, nil
}

// Sanitize normalizes a quote pulled from a remote source or an import
// file: trims text, defaults the category, and fills a missing id.
// Returns false when the quote has no usable text.
func Sanitize(q Quote) (Quote, bool) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return Quote{}, false
	}
	if strings.TrimSpace(q.Category) == "" {
		q.Category = DefaultCategory
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = time.Now()
	}
	return q, true
}

// DefaultQuotes seeds a fresh store and the remote fallback snapshot so
// the board is never empty on first run.
func DefaultQuotes() []Quote {
	seeds := []struct{ text, category string }{
		{"The best way out is always through.", "Perseverance"},
		{"Simplicity is the ultimate sophistication.", "Design"},
		{"Well begun is half done.", "Motivation"},
		{"What we think, we become.", "Mindfulness"},
		{"Action is the foundational key to all success.", "Motivation"},
	}

	now := time.Now()
	quotes := make([]Quote, 0, len(seeds))
	for _, s := range seeds {
		quotes = append(quotes, Quote{
			ID:        uuid.New().String(),
			Text:      s.text,
			Category:  s.category,
			UpdatedAt: now,
			Origin:    OriginLocal,
		})
	}
	return quotes
}
