package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// ============================================================================
// Remote Sources
//
// Each source wraps one upstream quotes API and transforms its response
// shape into []Quote. The sync client walks the configured sources in
// order and takes the first non-empty result; when every source fails it
// falls back to the last-known-good snapshot persisted in the kv table.
// A pull therefore never fails outright once a fallback snapshot exists.
// ============================================================================

// QuoteSource fetches quotes from one upstream endpoint.
type QuoteSource interface {
	Name() string
	Fetch(ctx context.Context) ([]Quote, error)
}

// sourceHTTPTimeout bounds a single upstream request. Sources are tried
// in order, so a hung source must not eat the whole sync interval.
const sourceHTTPTimeout = 15 * time.Second

func newSourceClient() *http.Client {
	return &http.Client{Timeout: sourceHTTPTimeout}
}

// typefitSource reads a bare JSON array of {"text": ..., "author": ...}
// records. The author becomes the category since the API has no tags.
type typefitSource struct {
	url    string
	client *http.Client
}

// NewTypefitSource builds a source for type.fit-style endpoints.
func NewTypefitSource(url string) QuoteSource {
	return &typefitSource{url: url, client: newSourceClient()}
}

func (s *typefitSource) Name() string { return "typefit" }

func (s *typefitSource) Fetch(ctx context.Context) ([]Quote, error) {
	var records []struct {
		Text   string `json:"text"`
		Author string `json:"author"`
	}
	if err := fetchJSON(ctx, s.client, s.url, &records); err != nil {
		return nil, serr.Wrap(err, "typefit fetch failed")
	}

	quotes := make([]Quote, 0, len(records))
	for _, r := range records {
		q, ok := Sanitize(Quote{Text: r.Text, Category: r.Author, Origin: OriginRemote})
		if !ok {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// quotableSource reads {"results": [{"content": ..., "tags": [...]}]}
// responses. The first tag becomes the category.
type quotableSource struct {
	url    string
	client *http.Client
}

// NewQuotableSource builds a source for quotable-style endpoints.
func NewQuotableSource(url string) QuoteSource {
	return &quotableSource{url: url, client: newSourceClient()}
}

func (s *quotableSource) Name() string { return "quotable" }

func (s *quotableSource) Fetch(ctx context.Context) ([]Quote, error) {
	var resp struct {
		Results []struct {
			Content string   `json:"content"`
			Tags    []string `json:"tags"`
		} `json:"results"`
	}
	if err := fetchJSON(ctx, s.client, s.url, &resp); err != nil {
		return nil, serr.Wrap(err, "quotable fetch failed")
	}

	quotes := make([]Quote, 0, len(resp.Results))
	for _, r := range resp.Results {
		category := ""
		if len(r.Tags) > 0 {
			category = r.Tags[0]
		}
		q, ok := Sanitize(Quote{Text: r.Content, Category: category, Origin: OriginRemote})
		if !ok {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// fetchJSON issues a GET and decodes the body into out.
func fetchJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return serr.Wrap(err, "failed to create request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return serr.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return serr.New(fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return serr.Wrap(err, "failed to decode response")
	}
	return nil
}

// FetchRemote tries sources in order and returns the first non-empty
// result, persisting it as the new fallback snapshot. When all sources
// fail it returns the fallback (seeded from the defaults on first use).
// The bool reports whether the result came from a live source.
func FetchRemote(ctx context.Context, sources []QuoteSource) ([]Quote, bool) {
	for _, src := range sources {
		quotes, err := src.Fetch(ctx)
		if err != nil {
			logger.LogErr(err, "remote source failed, trying next", "source", src.Name())
			continue
		}
		if len(quotes) == 0 {
			logger.Info("Remote source returned no quotes, trying next", "source", src.Name())
			continue
		}

		if err := KVSet(KVRemoteFallback, quotes); err != nil {
			logger.LogErr(err, "failed to persist remote fallback snapshot")
		}
		logger.Info("Pulled quotes from remote source", "source", src.Name(), "count", len(quotes))
		return quotes, true
	}

	// All sources down — serve the last-known-good snapshot.
	var fallback []Quote
	if !KVGet(KVRemoteFallback, &fallback) || len(fallback) == 0 {
		fallback = DefaultQuotes()
		for i := range fallback {
			fallback[i].Origin = OriginRemote
		}
		if err := KVSet(KVRemoteFallback, fallback); err != nil {
			logger.LogErr(err, "failed to seed remote fallback snapshot")
		}
	}
	logger.Info("All remote sources unavailable, using fallback snapshot", "count", len(fallback))
	return fallback, false
}

// PushOutcome records the result of submitting one local quote upstream.
type PushOutcome struct {
	Key string
	Err error
}

// PushClient submits local quotes to the write endpoint as simplified
// {"title": category, "body": text} payloads, one request per quote.
type PushClient struct {
	url    string
	client *http.Client
}

// NewPushClient builds a push client for the configured endpoint.
func NewPushClient(url string) *PushClient {
	return &PushClient{url: url, client: newSourceClient()}
}

// PushLocal submits each origin=local quote independently and returns a
// per-quote outcome. Failures never abort the batch: push is best-effort
// with no retry, and the caller decides what to log. Responses are read
// only far enough to classify success.
func (p *PushClient) PushLocal(ctx context.Context, quotes []Quote) []PushOutcome {
	var outcomes []PushOutcome
	for _, q := range quotes {
		if q.Origin != OriginLocal {
			continue
		}
		outcomes = append(outcomes, PushOutcome{
			Key: NormalizeKey(q),
			Err: p.pushOne(ctx, q),
		})
	}
	return outcomes
}

func (p *PushClient) pushOne(ctx context.Context, q Quote) error {
	body, err := json.Marshal(map[string]string{
		"title": q.Category,
		"body":  q.Text,
	})
	if err != nil {
		return serr.Wrap(err, "failed to marshal push payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return serr.Wrap(err, "failed to create push request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return serr.Wrap(err, "push request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return serr.New(fmt.Sprintf("push returned status %d", resp.StatusCode))
	}
	return nil
}
