package api

import (
	"encoding/json"
	"net/http"

	"quotewall/models"

	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"
)

// ============================================================================
// Sync API Handlers
//
// These endpoints power the UI controls for sync: a status indicator, an
// enable/disable toggle, a "Sync Now" button, and the conflict review
// list with per-conflict overrides. When sync is not configured the
// status endpoint reports a disabled state rather than erroring so the
// UI can render gracefully.
// ============================================================================

// SyncStatus handles GET /api/v1/sync/status
func SyncStatus(ctx rweb.Context) error {
	client := models.GetSyncClient()
	if client == nil {
		return writeSuccess(ctx, http.StatusOK, models.SyncStatus{
			Enabled:   false,
			Connected: false,
		})
	}
	return writeSuccess(ctx, http.StatusOK, client.Status())
}

// SyncToggle handles POST /api/v1/sync/toggle
// Request body: {"enabled": true} or {"enabled": false}
func SyncToggle(ctx rweb.Context) error {
	client := models.GetSyncClient()
	if client == nil {
		return writeError(ctx, http.StatusServiceUnavailable, "sync is not configured")
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.Unmarshal(ctx.Request().Body(), &req); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	client.SetEnabled(req.Enabled)
	return writeSuccess(ctx, http.StatusOK, client.Status())
}

// SyncNow handles POST /api/v1/sync/now
// Triggers an immediate sync cycle. Returns 409 Conflict if a cycle is
// already in progress so the UI doesn't queue multiple cycles.
func SyncNow(ctx rweb.Context) error {
	client := models.GetSyncClient()
	if client == nil {
		return writeError(ctx, http.StatusServiceUnavailable, "sync is not configured")
	}

	if err := client.SyncNow(); err != nil {
		if err.Error() == "sync already in progress" || err.Error() == "sync is disabled" {
			return writeError(ctx, http.StatusConflict, err.Error())
		}
		return writeError(ctx, http.StatusInternalServerError, serr.Wrap(err, "sync failed").Error())
	}

	return writeSuccess(ctx, http.StatusOK, client.Status())
}

// conflictView augments a Conflict with its rendered text diff for the
// review UI.
type conflictView struct {
	models.Conflict
	Diff string `json:"diff"`
}

// ListConflicts handles GET /api/v1/sync/conflicts
func ListConflicts(ctx rweb.Context) error {
	conflicts := models.GetConflicts().List()

	views := make([]conflictView, 0, len(conflicts))
	for _, c := range conflicts {
		views = append(views, conflictView{Conflict: c, Diff: c.Diff()})
	}
	return writeSuccess(ctx, http.StatusOK, views)
}

// ResolveConflict handles POST /api/v1/sync/conflicts/resolve
// Request body: {"key": ..., "choice": "local"|"remote"}. Choosing local
// restores the pre-merge local quote; choosing remote acknowledges the
// server-wins default.
func ResolveConflict(ctx rweb.Context) error {
	var req struct {
		Key    string `json:"key"`
		Choice string `json:"choice"`
	}
	if err := json.Unmarshal(ctx.Request().Body(), &req); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if req.Key == "" {
		return writeError(ctx, http.StatusBadRequest, "key is required")
	}

	if err := models.GetConflicts().Resolve(models.GetStore(), req.Key, req.Choice); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	return writeSuccess(ctx, http.StatusOK, map[string]interface{}{
		"key":       req.Key,
		"choice":    req.Choice,
		"remaining": models.GetConflicts().Count(),
	})
}
