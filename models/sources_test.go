package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// ============================================================================
// Remote Source Tests
//
// Sources are exercised against httptest servers speaking each upstream
// shape, plus the failure paths that drive the fallback chain.
// ============================================================================

func typefitServer(t *testing.T, records []map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(records)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func quotableServer(t *testing.T, results []map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failingServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTypefitSourceTransform(t *testing.T) {
	srv := typefitServer(t, []map[string]string{
		{"text": "Well begun is half done.", "author": "Aristotle"},
		{"text": "   ", "author": "Nobody"}, // dropped: empty after trim
		{"text": "No author here"},
	})

	quotes, err := NewTypefitSource(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("got %d quotes, want 2", len(quotes))
	}
	if quotes[0].Category != "Aristotle" {
		t.Errorf("category = %q, want author name", quotes[0].Category)
	}
	if quotes[1].Category != DefaultCategory {
		t.Errorf("missing author should default category, got %q", quotes[1].Category)
	}
	for _, q := range quotes {
		if q.Origin != OriginRemote {
			t.Errorf("origin = %q, want %q", q.Origin, OriginRemote)
		}
		if q.ID == "" {
			t.Error("expected an assigned id")
		}
	}
}

func TestQuotableSourceTransform(t *testing.T) {
	srv := quotableServer(t, []map[string]interface{}{
		{"content": "What we think, we become.", "tags": []string{"wisdom", "mind"}},
		{"content": "Tagless thought"},
	})

	quotes, err := NewQuotableSource(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("got %d quotes, want 2", len(quotes))
	}
	if quotes[0].Category != "wisdom" {
		t.Errorf("category = %q, want first tag", quotes[0].Category)
	}
	if quotes[1].Category != DefaultCategory {
		t.Errorf("tagless record should default category, got %q", quotes[1].Category)
	}
}

func TestSourceNonOKStatus(t *testing.T) {
	srv := failingServer(t, http.StatusBadGateway)

	if _, err := NewTypefitSource(srv.URL).Fetch(context.Background()); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestFetchRemoteFallsThroughSources(t *testing.T) {
	setupTestDB(t)

	bad := failingServer(t, http.StatusInternalServerError)
	good := typefitServer(t, []map[string]string{
		{"text": "Second source wins", "author": "Backup"},
	})

	sources := []QuoteSource{
		NewTypefitSource(bad.URL),
		NewTypefitSource(good.URL),
	}

	quotes, live := FetchRemote(context.Background(), sources)
	if !live {
		t.Fatal("expected a live result from the second source")
	}
	if len(quotes) != 1 || quotes[0].Text != "Second source wins" {
		t.Fatalf("unexpected result: %+v", quotes)
	}

	// The live pull must have become the fallback snapshot
	var snapshot []Quote
	if !KVGet(KVRemoteFallback, &snapshot) || len(snapshot) != 1 {
		t.Error("fallback snapshot not persisted after live pull")
	}
}

func TestFetchRemoteUsesFallbackSnapshot(t *testing.T) {
	setupTestDB(t)

	stored := []Quote{{ID: "s1", Text: "Cached wisdom", Category: "Life", Origin: OriginRemote}}
	if err := KVSet(KVRemoteFallback, stored); err != nil {
		t.Fatalf("failed to seed fallback: %v", err)
	}

	bad := failingServer(t, http.StatusServiceUnavailable)
	quotes, live := FetchRemote(context.Background(), []QuoteSource{NewTypefitSource(bad.URL)})

	if live {
		t.Error("expected fallback, not a live result")
	}
	if len(quotes) != 1 || quotes[0].Text != "Cached wisdom" {
		t.Fatalf("expected the stored snapshot, got %+v", quotes)
	}
}

func TestFetchRemoteSeedsFallbackOnFirstUse(t *testing.T) {
	setupTestDB(t)

	bad := failingServer(t, http.StatusServiceUnavailable)
	quotes, live := FetchRemote(context.Background(), []QuoteSource{NewTypefitSource(bad.URL)})

	if live {
		t.Error("expected fallback, not a live result")
	}
	if len(quotes) == 0 {
		t.Fatal("expected the default set when no snapshot exists")
	}
	for _, q := range quotes {
		if q.Origin != OriginRemote {
			t.Errorf("seeded fallback origin = %q, want %q", q.Origin, OriginRemote)
		}
	}
}

func TestPushLocalOutcomes(t *testing.T) {
	var accepted atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad push payload: %v", err)
		}
		if payload["body"] == "" {
			t.Error("push payload missing body field")
		}
		accepted.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	quotes := []Quote{
		{ID: "1", Text: "Local one", Category: "Life", Origin: OriginLocal},
		{ID: "2", Text: "Remote skip", Category: "Life", Origin: OriginRemote},
		{ID: "3", Text: "Local two", Category: "Life", Origin: OriginLocal},
	}

	outcomes := NewPushClient(srv.URL).PushLocal(context.Background(), quotes)
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2 (remote quotes are not pushed)", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Err != nil {
			t.Errorf("push of %q failed: %v", o.Key, o.Err)
		}
	}
	if accepted.Load() != 2 {
		t.Errorf("server saw %d pushes, want 2", accepted.Load())
	}
}

func TestPushFailuresDoNotAbortBatch(t *testing.T) {
	srv := failingServer(t, http.StatusInternalServerError)

	quotes := []Quote{
		{ID: "1", Text: "One", Origin: OriginLocal},
		{ID: "2", Text: "Two", Origin: OriginLocal},
	}

	outcomes := NewPushClient(srv.URL).PushLocal(context.Background(), quotes)
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2 — failures must not stop the batch", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Err == nil {
			t.Errorf("expected a per-item error for %q", o.Key)
		}
	}
}
