package pages

import (
	"fmt"

	"quotewall/models"
	"quotewall/web/pages/shared"

	"github.com/rohanthewiz/element"
)

// RenderConflicts builds the conflict review page. Conflicts are
// rendered server-side from the current registry; resolve buttons post
// to the API and reload.
func RenderConflicts() string {
	return shared.Layout{
		Title: "QuoteWall - Conflicts",
		Content: ConflictList{
			Conflicts: models.GetConflicts().List(),
		},
	}.Render()
}

// ConflictList shows each pending conflict side by side with its diff.
type ConflictList struct {
	Conflicts []models.Conflict
}

// Render implements the element.Component interface
func (cl ConflictList) Render(b *element.Builder) any {
	b.Main("class", "conflicts").R(
		b.H2().F("Pending Conflicts (%d)", len(cl.Conflicts)),

		b.Wrap(func() {
			if len(cl.Conflicts) == 0 {
				b.P("class", "empty-note").T("No conflicts. The last sync merged cleanly.")
				return
			}
			for _, c := range cl.Conflicts {
				renderConflictCard(b, c)
			}
		}),
	)
	return nil
}

func renderConflictCard(b *element.Builder, c models.Conflict) {
	b.Div("class", "conflict-card").R(
		b.Div("class", "conflict-sides").R(
			b.Div("class", "conflict-side").R(
				b.H3().T("Local"),
				b.P("class", "conflict-text").T(c.Local.Text),
				b.Span("class", "conflict-cat").F("Category: %s", c.Local.Category),
			),
			b.Div("class", "conflict-side").R(
				b.H3().T("Remote (applied)"),
				b.P("class", "conflict-text").T(c.Remote.Text),
				b.Span("class", "conflict-cat").F("Category: %s", c.Remote.Category),
			),
		),
		// Diff() emits inline HTML spans; T renders unescaped
		b.Div("class", "conflict-diff").T(c.Diff()),
		b.Div("class", "conflict-actions").R(
			b.Button("class", "btn",
				"onclick", fmt.Sprintf("app.resolveConflict(%q, 'local')", c.Key)).T("Keep Local"),
			b.Button("class", "btn btn-primary",
				"onclick", fmt.Sprintf("app.resolveConflict(%q, 'remote')", c.Key)).T("Keep Remote"),
		),
	)
}
