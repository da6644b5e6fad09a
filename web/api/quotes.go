package api

import (
	"encoding/json"
	"net/http"

	"quotewall/models"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"
)

// APIResponse provides a consistent JSON response structure for all API
// endpoints. Success responses include data, error responses an error
// message.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// writeSuccess sends a successful JSON response with data.
func writeSuccess(ctx rweb.Context, status int, data interface{}) error {
	ctx.SetStatus(status)
	return ctx.WriteJSON(APIResponse{Success: true, Data: data})
}

// writeError sends an error JSON response.
func writeError(ctx rweb.Context, status int, message string) error {
	ctx.SetStatus(status)
	return ctx.WriteJSON(APIResponse{Success: false, Error: message})
}

// HealthCheck handles GET /api/v1/health
func HealthCheck(ctx rweb.Context) error {
	return writeSuccess(ctx, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "quotewall",
	})
}

// QuoteInput is the request body for adding a quote.
type QuoteInput struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// CreateQuote handles POST /api/v1/quotes
// Adds a local quote. Empty text is a validation error; the submitted
// input is echoed back so the form can retain it for correction.
func CreateQuote(ctx rweb.Context) error {
	var input QuoteInput
	if err := json.Unmarshal(ctx.Request().Body(), &input); err != nil {
		logger.LogErr(serr.Wrap(err, "failed to decode request body"), "invalid JSON")
		return writeError(ctx, http.StatusBadRequest, "invalid JSON body")
	}

	q, err := models.GetStore().Add(input.Text, input.Category)
	if err != nil {
		ctx.SetStatus(http.StatusBadRequest)
		return ctx.WriteJSON(APIResponse{
			Success: false,
			Error:   err.Error(),
			Data:    input, // echo input back for the form
		})
	}

	return writeSuccess(ctx, http.StatusCreated, q)
}

// ListQuotes handles GET /api/v1/quotes
// Returns the collection, filtered by ?cat= when present.
func ListQuotes(ctx rweb.Context) error {
	cat := ctx.Request().QueryParam("cat")
	quotes := models.GetStore().ByCategory(cat)
	if quotes == nil {
		quotes = []models.Quote{}
	}
	return writeSuccess(ctx, http.StatusOK, quotes)
}

// NextQuote handles GET /api/v1/quotes/next
// Advances the display rotation within the optional ?cat= filter and
// returns the quote to show. 404 when the filter matches nothing.
func NextQuote(ctx rweb.Context) error {
	cat := ctx.Request().QueryParam("cat")
	q, ok := models.GetStore().Next(cat)
	if !ok {
		return writeError(ctx, http.StatusNotFound, "no quotes match the current filter")
	}
	return writeSuccess(ctx, http.StatusOK, q)
}

// ListCategories handles GET /api/v1/categories
func ListCategories(ctx rweb.Context) error {
	cats := models.GetStore().Categories()
	if cats == nil {
		cats = []string{}
	}
	return writeSuccess(ctx, http.StatusOK, cats)
}

// GetCategoryPref handles GET /api/v1/prefs/category
// Returns the persisted category filter, empty when unset.
func GetCategoryPref(ctx rweb.Context) error {
	return writeSuccess(ctx, http.StatusOK, map[string]string{
		"category": models.LastCategory(),
	})
}

// SetCategoryPref handles PUT /api/v1/prefs/category
// Persists the category filter across sessions.
func SetCategoryPref(ctx rweb.Context) error {
	var input struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal(ctx.Request().Body(), &input); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid JSON body")
	}

	if err := models.SetLastCategory(input.Category); err != nil {
		logger.LogErr(err, "failed to persist category preference")
		return writeError(ctx, http.StatusInternalServerError, "failed to save preference")
	}
	return writeSuccess(ctx, http.StatusOK, map[string]string{"category": input.Category})
}
