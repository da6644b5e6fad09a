package models

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rohanthewiz/serr"
)

// ============================================================================
// Sync Configuration
//
// Loads sync settings from environment variables. When QUOTEWALL_SYNC_ENABLED
// is true, a background goroutine periodically pushes local quotes and pulls
// from the configured remote sources.
// ============================================================================

// Default upstream endpoints. Overridable per environment so tests and
// self-hosted mirrors can point the client elsewhere.
const (
	defaultTypefitURL  = "https://type.fit/api/quotes"
	defaultQuotableURL = "https://api.quotable.io/quotes?limit=50"
	defaultPushURL     = "https://jsonplaceholder.typicode.com/posts"
)

// SyncConfig holds the configuration for the sync client.
// All values come from environment variables to keep deployment
// configuration external to the binary.
type SyncConfig struct {
	Enabled     bool          // QUOTEWALL_SYNC_ENABLED
	SourceOrder []string      // QUOTEWALL_SYNC_SOURCES, comma-separated
	TypefitURL  string        // QUOTEWALL_TYPEFIT_URL
	QuotableURL string        // QUOTEWALL_QUOTABLE_URL
	PushURL     string        // QUOTEWALL_PUSH_URL
	Interval    time.Duration // QUOTEWALL_SYNC_INTERVAL
}

// defaultSyncInterval is used when QUOTEWALL_SYNC_INTERVAL is not set.
// 5 minutes balances freshness against upstream request volume.
const defaultSyncInterval = 5 * time.Minute

// LoadSyncConfig reads sync configuration from environment variables.
// Returns a config even when sync is disabled so callers can inspect the
// state without nil checks.
func LoadSyncConfig() (*SyncConfig, error) {
	cfg := &SyncConfig{
		SourceOrder: []string{"typefit", "quotable"},
		TypefitURL:  defaultTypefitURL,
		QuotableURL: defaultQuotableURL,
		PushURL:     defaultPushURL,
		Interval:    defaultSyncInterval,
	}

	// Parse enabled flag — defaults to false (opt-in design)
	if enabledStr := os.Getenv("QUOTEWALL_SYNC_ENABLED"); enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return nil, serr.Wrap(err, "invalid QUOTEWALL_SYNC_ENABLED value, expected true/false")
		}
		cfg.Enabled = enabled
	}

	if order := os.Getenv("QUOTEWALL_SYNC_SOURCES"); order != "" {
		cfg.SourceOrder = nil
		for _, name := range strings.Split(order, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				cfg.SourceOrder = append(cfg.SourceOrder, name)
			}
		}
	}

	if url := os.Getenv("QUOTEWALL_TYPEFIT_URL"); url != "" {
		cfg.TypefitURL = url
	}
	if url := os.Getenv("QUOTEWALL_QUOTABLE_URL"); url != "" {
		cfg.QuotableURL = url
	}
	if url := os.Getenv("QUOTEWALL_PUSH_URL"); url != "" {
		cfg.PushURL = url
	}

	if intervalStr := os.Getenv("QUOTEWALL_SYNC_INTERVAL"); intervalStr != "" {
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, serr.Wrap(err, "invalid QUOTEWALL_SYNC_INTERVAL value, expected duration like '5m' or '30s'")
		}
		cfg.Interval = interval
	}

	return cfg, nil
}

// Validate checks that the configuration is coherent when sync is
// enabled. Called before starting the sync client to fail fast on
// misconfiguration rather than discovering it mid-cycle.
func (c *SyncConfig) Validate() error {
	if !c.Enabled {
		return nil // Nothing to validate when sync is disabled
	}

	if len(c.SourceOrder) == 0 {
		return serr.New("QUOTEWALL_SYNC_SOURCES must name at least one source when sync is enabled")
	}
	for _, name := range c.SourceOrder {
		if name != "typefit" && name != "quotable" {
			return serr.New("unknown source in QUOTEWALL_SYNC_SOURCES: " + name)
		}
	}
	if c.PushURL == "" {
		return serr.New("QUOTEWALL_PUSH_URL is required when sync is enabled")
	}
	if c.Interval < 10*time.Second {
		return serr.New("QUOTEWALL_SYNC_INTERVAL must be at least 10s to avoid hammering upstream sources")
	}

	return nil
}

// Sources materializes the configured source adapters in order.
func (c *SyncConfig) Sources() []QuoteSource {
	var sources []QuoteSource
	for _, name := range c.SourceOrder {
		switch name {
		case "typefit":
			sources = append(sources, NewTypefitSource(c.TypefitURL))
		case "quotable":
			sources = append(sources, NewQuotableSource(c.QuotableURL))
		}
	}
	return sources
}
