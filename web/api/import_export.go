package api

import (
	"encoding/json"
	"net/http"
	"time"

	"quotewall/models"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
)

// ExportDocument is the shape of an export download. Import accepts the
// same shape, or a bare JSON array of quotes for hand-built files.
type ExportDocument struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Count      int            `json:"count"`
	Quotes     []models.Quote `json:"quotes"`
}

// ExportQuotes handles GET /api/v1/export
// Serializes the full collection as a downloadable JSON document.
func ExportQuotes(ctx rweb.Context) error {
	quotes := models.GetStore().All()

	doc := ExportDocument{
		Version:    "1",
		ExportedAt: time.Now(),
		Count:      len(quotes),
		Quotes:     quotes,
	}

	filename := "quotewall-export-" + time.Now().Format("20060102-150405") + ".json"
	ctx.Response().SetHeader("Content-Disposition", "attachment; filename="+filename)
	ctx.Response().SetHeader("Content-Type", "application/json")

	return ctx.WriteJSON(doc)
}

// ImportQuotes handles POST /api/v1/import
// Accepts an export document or a bare array of quotes in the request
// body. Invalid JSON or a shape without a quote list is rejected with
// nothing applied; valid quotes are deduplicated against the store by
// normalized text+category and the rest appended.
func ImportQuotes(ctx rweb.Context) error {
	body := ctx.Request().Body()

	quotes, err := decodeImport(body)
	if err != nil {
		logger.LogErr(err, "rejected import upload")
		return writeError(ctx, http.StatusBadRequest, "invalid import file: expected a JSON quote list")
	}

	added, err := models.GetStore().Import(quotes)
	if err != nil {
		logger.LogErr(err, "failed to persist imported quotes")
		return writeError(ctx, http.StatusInternalServerError, "import failed to save")
	}

	logger.Info("Import completed", "received", len(quotes), "added", added)
	return writeSuccess(ctx, http.StatusOK, map[string]int{
		"received": len(quotes),
		"added":    added,
		"skipped":  len(quotes) - added,
	})
}

// decodeImport accepts either the ExportDocument envelope or a bare
// array. A document that parses but carries no quote list is an error,
// not an empty import — silently importing nothing would mask a wrong
// file upload.
func decodeImport(body []byte) ([]models.Quote, error) {
	var doc ExportDocument
	if err := json.Unmarshal(body, &doc); err == nil && doc.Quotes != nil {
		return doc.Quotes, nil
	}

	var quotes []models.Quote
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}
