// Package pages contains the page components for the application.
package pages

import (
	"quotewall/models"
	"quotewall/web/pages/shared"

	"github.com/rohanthewiz/element"
)

// RenderBoard builds the main quote board page. Current categories and
// the persisted filter are rendered server-side; the display region and
// sync status are driven by app.js against the JSON API.
func RenderBoard() string {
	return shared.Layout{
		Title: "QuoteWall",
		Content: Board{
			Categories:   models.GetStore().Categories(),
			LastCategory: models.LastCategory(),
		},
	}.Render()
}

// Board is the single-quote display widget with its controls.
type Board struct {
	Categories   []string
	LastCategory string
}

// Render implements the element.Component interface
func (bd Board) Render(b *element.Builder) any {
	b.Main("class", "board").R(
		// Display region - one quote at a time
		b.Section("class", "quote-display", "id", "quote-display").R(
			b.BlockQuote("id", "quote-text").T("Loading..."),
			b.Div("class", "quote-meta").R(
				b.Span("class", "quote-category", "id", "quote-category").T(""),
				b.Span("class", "quote-origin", "id", "quote-origin").T(""),
			),
		),

		// Controls row
		b.Div("class", "controls").R(
			b.Button("class", "btn", "id", "next-btn", "onclick", "app.nextQuote()").T("Next"),
			b.Select("class", "category-select", "id", "category-select",
				"onchange", "app.setCategory(this.value)").R(
				b.Option("value", "").T("All categories"),
				b.Wrap(func() {
					for _, cat := range bd.Categories {
						if models.NormalizeText(cat) == models.NormalizeText(bd.LastCategory) {
							b.Option("value", cat, "selected", "selected").T(cat)
						} else {
							b.Option("value", cat).T(cat)
						}
					}
				}),
			),
			b.Button("class", "btn", "id", "sync-now-btn", "onclick", "app.syncNow()").T("Sync Now"),
			b.Span("class", "sync-status", "id", "sync-status").T(""),
		),

		// Add quote form
		b.Section("class", "add-quote").R(
			b.H2().T("Add a Quote"),
			b.Div("class", "add-form").R(
				b.Input("type", "text", "id", "add-text", "placeholder", "Quote text"),
				b.Input("type", "text", "id", "add-category", "placeholder", "Category (optional)"),
				b.Button("class", "btn", "onclick", "app.addQuote()").T("Add"),
				b.Div("class", "form-error", "id", "add-error").T(""),
			),
		),

		// Import / export controls
		b.Section("class", "transfer").R(
			b.A("class", "btn", "href", "/api/v1/export", "download", "download").T("Export JSON"),
			b.Label("class", "btn").R(
				b.Span().T("Import JSON"),
				b.Input("type", "file", "id", "import-file", "accept", "application/json",
					"onchange", "app.importFile(this.files[0])", "hidden", "hidden"),
			),
			b.Div("class", "form-error", "id", "import-error").T(""),
		),
	)
	return nil
}
