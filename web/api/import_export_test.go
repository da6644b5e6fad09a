package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"reflect"
	"testing"

	"quotewall/models"
	"quotewall/web/api"
)

// postRaw posts a raw body (not necessarily valid JSON) to a path.
func (s *apiTestServer) postRaw(t *testing.T, path string, body []byte) (int, api.APIResponse) {
	t.Helper()

	resp, err := s.client.Post(s.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var result api.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response from %s: %v", path, err)
	}
	return resp.StatusCode, result
}

func TestExportDownloadHeaders(t *testing.T) {
	server := setupServer(t)

	resp, err := server.client.Get(server.baseURL + "/api/v1/export")
	if err != nil {
		t.Fatalf("GET export failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd == "" {
		t.Error("expected a Content-Disposition attachment header")
	}

	var doc api.ExportDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("export document did not parse: %v", err)
	}
	if doc.Count != len(doc.Quotes) {
		t.Errorf("count field %d does not match %d quotes", doc.Count, len(doc.Quotes))
	}
	if len(doc.Quotes) == 0 {
		t.Error("expected the seeded defaults in the export")
	}
}

// TestExportImportRoundTrip: exporting and re-importing into an
// otherwise-empty store reproduces the collection exactly.
func TestExportImportRoundTrip(t *testing.T) {
	server := setupServer(t)

	server.postJSON(t, "/api/v1/quotes", map[string]string{"text": "Round trip me", "category": "Testing"})
	original := models.GetStore().All()

	resp, err := server.client.Get(server.baseURL + "/api/v1/export")
	if err != nil {
		t.Fatalf("GET export failed: %v", err)
	}
	exported := new(bytes.Buffer)
	if _, err := exported.ReadFrom(resp.Body); err != nil {
		t.Fatalf("failed to read export body: %v", err)
	}
	resp.Body.Close()

	// Empty the store, then import the exported document
	if err := models.GetStore().Replace(nil); err != nil {
		t.Fatalf("failed to empty store: %v", err)
	}

	status, result := server.postRaw(t, "/api/v1/import", exported.Bytes())
	if status != http.StatusOK {
		t.Fatalf("import failed with status %d: %s", status, result.Error)
	}

	restored := models.GetStore().All()
	// Normalize timestamps to UTC wall time: in-process values carry a
	// monotonic clock reading and the local Location, neither of which
	// survives JSON, and DeepEqual distinguishes both (see time.Time godoc).
	for i := range original {
		original[i].UpdatedAt = original[i].UpdatedAt.UTC()
	}
	for i := range restored {
		restored[i].UpdatedAt = restored[i].UpdatedAt.UTC()
	}
	if !reflect.DeepEqual(original, restored) {
		t.Errorf("round trip mismatch:\n original: %+v\n restored: %+v", original, restored)
	}
}

func TestImportInvalidJSON(t *testing.T) {
	server := setupServer(t)
	sizeBefore := len(models.GetStore().All())

	status, result := server.postRaw(t, "/api/v1/import", []byte("this is not json"))
	if status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", status)
	}
	if result.Success {
		t.Error("expected success to be false")
	}
	if result.Error == "" {
		t.Error("expected a user-facing error message")
	}
	if len(models.GetStore().All()) != sizeBefore {
		t.Error("invalid import must not change the store")
	}
}

func TestImportNonArrayDocument(t *testing.T) {
	server := setupServer(t)

	status, _ := server.postRaw(t, "/api/v1/import", []byte(`{"not": "a quote list"}`))
	if status != http.StatusBadRequest {
		t.Errorf("expected status 400 for a document without quotes, got %d", status)
	}
}

func TestImportBareArrayAndDedupe(t *testing.T) {
	server := setupServer(t)

	server.postJSON(t, "/api/v1/quotes", map[string]string{"text": "Already here", "category": "Life"})
	sizeBefore := len(models.GetStore().All())

	payload := []map[string]string{
		{"text": "already HERE", "category": "life"}, // duplicate
		{"text": "Genuinely new", "category": "Life"},
		{"text": "   ", "category": "Life"}, // empty text, skipped
	}
	body, _ := json.Marshal(payload)

	status, result := server.postRaw(t, "/api/v1/import", body)
	if status != http.StatusOK {
		t.Fatalf("import failed with status %d", status)
	}

	data := result.Data.(map[string]interface{})
	if added := data["added"].(float64); added != 1 {
		t.Errorf("added = %v, want 1", added)
	}
	if len(models.GetStore().All()) != sizeBefore+1 {
		t.Errorf("store size = %d, want %d", len(models.GetStore().All()), sizeBefore+1)
	}
}
