package web

import (
	"quotewall/web/api"
	"quotewall/web/pages"

	"github.com/rohanthewiz/rweb"
)

// setupRoutes configures all application routes
func setupRoutes(s *rweb.Server) {
	// Page routes - HTML responses
	s.Get("/", func(ctx rweb.Context) error {
		ctx.Response().SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.WriteHTML(pages.RenderBoard())
	})
	s.Get("/conflicts", func(ctx rweb.Context) error {
		ctx.Response().SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.WriteHTML(pages.RenderConflicts())
	})

	// Health check endpoint
	s.Get("/api/v1/health", api.HealthCheck)

	// Quotes endpoints
	s.Post("/api/v1/quotes", api.CreateQuote)    // Add a quote
	s.Get("/api/v1/quotes", api.ListQuotes)      // List quotes (optional ?cat= filter)
	s.Get("/api/v1/quotes/next", api.NextQuote)  // Rotate the display to the next quote
	s.Get("/api/v1/categories", api.ListCategories)

	// Import / export
	s.Get("/api/v1/export", api.ExportQuotes)
	s.Post("/api/v1/import", api.ImportQuotes)

	// Sync controls + conflict review
	s.Get("/api/v1/sync/status", api.SyncStatus)
	s.Post("/api/v1/sync/toggle", api.SyncToggle)
	s.Post("/api/v1/sync/now", api.SyncNow)
	s.Get("/api/v1/sync/conflicts", api.ListConflicts)
	s.Post("/api/v1/sync/conflicts/resolve", api.ResolveConflict)

	// Session preferences
	s.Get("/api/v1/prefs/category", api.GetCategoryPref)
	s.Put("/api/v1/prefs/category", api.SetCategoryPref)
}
