package models

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// ============================================================================
// Sync Client
//
// The sync client runs as a background goroutine. Each cycle pushes local
// quotes upstream (best-effort), pulls from the remote sources (with the
// fallback chain), merges the result into the store, and registers any
// conflicts for manual review.
//
// Design decisions:
//   - Single goroutine + TryLock: the polling ticker and the "Sync Now"
//     button both funnel into runSyncCycle guarded by syncMu, so cycles
//     never overlap — a fresh trigger while one is in flight is skipped.
//   - Exponential backoff: consecutive failures increase wait time up to
//     5m, reset on success. A cycle that lands on the fallback snapshot
//     counts as a failure for backoff purposes (nothing new arrived).
//   - Package-level singleton follows the var db / var storeInstance
//     pattern in this package.
// ============================================================================

// syncClientInstance is the package-level singleton for the sync client.
var syncClientInstance *SyncClient

// SyncClient manages the background reconcile loop.
type SyncClient struct {
	config     *SyncConfig
	store      *QuoteStore
	conflicts  *ConflictSet
	sources    []QuoteSource
	push       *PushClient
	syncMu     sync.Mutex  // Prevents concurrent sync cycles
	enabled    atomic.Bool // Runtime toggle for the UI switch
	cancelFunc context.CancelFunc
	inProgress atomic.Bool // True while a cycle is running

	// stateMu guards the fields below: the sync goroutine writes them
	// while Status serves HTTP handlers.
	stateMu             sync.Mutex
	lastSync            time.Time
	lastError           error
	consecutiveFailures int // Exponential backoff state
}

// maxBackoff caps the exponential backoff so a long upstream outage never
// pushes retries out indefinitely.
const maxBackoff = 5 * time.Minute

// SyncStatus exposes sync state to the UI without leaking internals.
type SyncStatus struct {
	Enabled    bool       `json:"enabled"`
	Connected  bool       `json:"connected"` // true if the last pull hit a live source
	LastSync   *time.Time `json:"last_sync"` // nil if never synced
	InProgress bool       `json:"in_progress"`
	LastError  string     `json:"last_error,omitempty"`
	Conflicts  int        `json:"conflicts"`
}

// NewSyncClient creates and configures a sync client against the given
// store and conflict registry.
func NewSyncClient(config *SyncConfig, store *QuoteStore, conflicts *ConflictSet) (*SyncClient, error) {
	if err := config.Validate(); err != nil {
		return nil, serr.Wrap(err, "invalid sync config")
	}

	client := &SyncClient{
		config:    config,
		store:     store,
		conflicts: conflicts,
		sources:   config.Sources(),
		push:      NewPushClient(config.PushURL),
	}
	client.enabled.Store(config.Enabled)

	syncClientInstance = client
	return client, nil
}

// GetSyncClient returns the package-level sync client instance.
// Returns nil if sync is not configured — callers must nil-check.
func GetSyncClient() *SyncClient {
	return syncClientInstance
}

// Start launches the background sync goroutine. The first cycle runs
// immediately, then subsequent cycles run on the configured interval.
func (sc *SyncClient) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	sc.cancelFunc = cancel

	go sc.syncLoop(ctx)
	logger.Info("Sync client started",
		"sources", len(sc.sources),
		"interval", sc.config.Interval.String(),
	)
}

// Stop shuts down the sync client.
func (sc *SyncClient) Stop() {
	if sc.cancelFunc != nil {
		sc.cancelFunc()
	}
	logger.Info("Sync client stopped")
}

// SyncNow triggers an immediate sync cycle (for the "Sync Now" button).
// Returns an error if sync is disabled or a cycle is already running.
func (sc *SyncClient) SyncNow() error {
	if !sc.enabled.Load() {
		return serr.New("sync is disabled")
	}
	if sc.inProgress.Load() {
		return serr.New("sync already in progress")
	}

	// Run synchronously so the caller knows when it completes
	return sc.runSyncCycle(context.Background())
}

// SetEnabled toggles sync on/off at runtime.
func (sc *SyncClient) SetEnabled(enabled bool) {
	sc.enabled.Store(enabled)
	logger.Info("Sync client toggled", "enabled", enabled)
}

// IsEnabled returns whether sync is currently active.
func (sc *SyncClient) IsEnabled() bool {
	return sc.enabled.Load()
}

// Status returns the current sync state for UI display.
func (sc *SyncClient) Status() *SyncStatus {
	sc.stateMu.Lock()
	defer sc.stateMu.Unlock()

	status := &SyncStatus{
		Enabled:    sc.enabled.Load(),
		Connected:  sc.consecutiveFailures == 0 && !sc.lastSync.IsZero(),
		InProgress: sc.inProgress.Load(),
		Conflicts:  sc.conflicts.Count(),
	}
	if !sc.lastSync.IsZero() {
		lastSync := sc.lastSync
		status.LastSync = &lastSync
	}
	if sc.lastError != nil {
		status.LastError = sc.lastError.Error()
	}
	return status
}

// syncLoop runs sync cycles on a ticker. The ticker keeps firing at the
// normal interval during backoff; cycles are skipped until the backoff
// window has elapsed.
func (sc *SyncClient) syncLoop(ctx context.Context) {
	// Run first cycle immediately (startup sync)
	if sc.enabled.Load() {
		if err := sc.runSyncCycle(ctx); err != nil {
			logger.LogErr(err, "initial sync cycle failed")
		}
	}

	ticker := time.NewTicker(sc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !sc.enabled.Load() {
				continue
			}

			sc.stateMu.Lock()
			failures := sc.consecutiveFailures
			inBackoff := failures > 0 && time.Since(sc.lastSync) < sc.calculateBackoff()
			sc.stateMu.Unlock()
			if inBackoff {
				continue // Still in backoff period
			}

			if err := sc.runSyncCycle(ctx); err != nil {
				logger.LogErr(err, "sync cycle failed",
					"consecutive_failures", failures,
				)
			}
		}
	}
}

// runSyncCycle executes one full cycle: push → pull → merge → apply.
// Guarded by syncMu so the ticker and SyncNow cannot race.
func (sc *SyncClient) runSyncCycle(ctx context.Context) error {
	if !sc.syncMu.TryLock() {
		return nil // Another cycle is running; skip this one
	}
	defer sc.syncMu.Unlock()

	sc.inProgress.Store(true)
	defer sc.inProgress.Store(false)

	local := sc.store.All()

	// Step 1: Push local quotes upstream. Best-effort — individual
	// failures are logged and never block the pull/merge that follows.
	for _, outcome := range sc.push.PushLocal(ctx, local) {
		if outcome.Err != nil {
			logger.LogErr(outcome.Err, "failed to push quote", "key", outcome.Key)
		}
	}

	// Step 2: Pull from the remote sources. Only total source failure
	// with no fallback would leave remote empty, and FetchRemote seeds
	// the fallback on first use, so remote is always usable here.
	remote, live := FetchRemote(ctx, sc.sources)

	// Step 3: Merge and apply. Merge is pure; the store swap and the
	// conflict registry update are the only side effects.
	merged, conflicts := Merge(local, remote, nil)
	if err := sc.store.Replace(merged); err != nil {
		sc.recordFailure(err)
		return serr.Wrap(err, "failed to apply merged collection")
	}
	sc.conflicts.SetAll(conflicts)

	if len(conflicts) > 0 {
		logger.Info("Sync merge found conflicts", "count", len(conflicts))
	}

	if !live {
		// The cycle completed off the fallback snapshot. Record it as a
		// failure so backoff slows the polling until a source recovers.
		sc.recordFailure(serr.New("all remote sources unavailable"))
		sc.stateMu.Lock()
		sc.lastSync = time.Now()
		sc.stateMu.Unlock()
		return nil
	}

	sc.stateMu.Lock()
	sc.consecutiveFailures = 0
	sc.lastError = nil
	sc.lastSync = time.Now()
	sc.stateMu.Unlock()

	logger.Info("Sync cycle completed",
		"merged", len(merged),
		"conflicts", len(conflicts),
	)
	return nil
}

// recordFailure updates backoff state after a failed sync cycle.
func (sc *SyncClient) recordFailure(err error) {
	sc.stateMu.Lock()
	defer sc.stateMu.Unlock()
	sc.consecutiveFailures++
	sc.lastError = err
}

// calculateBackoff returns the wait duration based on consecutive
// failures: 1s, 2s, 4s, 8s, ... capped at maxBackoff. Callers racing
// the sync goroutine must hold stateMu.
func (sc *SyncClient) calculateBackoff() time.Duration {
	backoff := time.Second
	for i := 0; i < sc.consecutiveFailures; i++ {
		backoff *= 2
		if backoff > maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
