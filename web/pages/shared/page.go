// Package shared holds the layout pieces common to all pages.
package shared

import "github.com/rohanthewiz/element"

// Layout wraps page content in the common document shell: head with the
// app stylesheet, a header bar, and the app script at the end of body.
type Layout struct {
	Title   string
	Content element.Component
}

// Render generates the complete HTML document.
func (l Layout) Render() string {
	b := element.NewBuilder()

	b.Html("lang", "en").R(
		b.Head().R(
			b.Meta("charset", "UTF-8"),
			b.Meta("name", "viewport", "content", "width=device-width, initial-scale=1.0"),
			b.Title().T(l.Title),
			b.Link("rel", "stylesheet", "href", "/static/css/main.css"),
		),
		b.Body().R(
			element.RenderComponents(b, Header{Title: l.Title}, l.Content),
			b.Script("src", "/static/js/app.js").R(),
		),
	)

	return b.String()
}

// Header is the top bar shown on every page.
type Header struct {
	Title string
}

// Render implements the element.Component interface
func (h Header) Render(b *element.Builder) any {
	b.Header("class", "top-bar").R(
		b.H1("class", "app-title").T("QuoteWall"),
		b.Nav("class", "top-nav").R(
			b.A("href", "/").T("Board"),
			b.A("href", "/conflicts").R(
				b.Span().T("Conflicts"),
				b.Span("class", "conflict-badge", "id", "conflict-badge").T(""),
			),
		),
	)
	return nil
}
