package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catalogd/catalogd/catalog"
)

func TestHandleStatsReportsRegistrySize(t *testing.T) {
	cat := catalog.New("svc-1", catalog.DefaultConfig())
	cat.AddDatabase("d", "owner", "")

	h := NewHandlers(cat, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	h.handleStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected a data object, got %+v", body)
	}
	if data["service_id"] != "svc-1" {
		t.Fatalf("expected service_id svc-1, got %v", data["service_id"])
	}
	byKind, ok := data["objects_by_kind"].(map[string]interface{})
	if !ok || byKind["DATABASE"] != float64(1) {
		t.Fatalf("expected objects_by_kind DATABASE=1, got %v", data["objects_by_kind"])
	}
}

func TestHandleLoaderQueueWithoutLoaderReturns503(t *testing.T) {
	cat := catalog.New("svc-1", catalog.DefaultConfig())
	h := NewHandlers(cat, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/loader/queue", nil)
	rec := httptest.NewRecorder()
	h.handleLoaderQueue(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHandleListDatabasesIncludesOwnedTables(t *testing.T) {
	cat := catalog.New("svc-1", catalog.DefaultConfig())
	cat.AddDatabase("d", "owner", "")
	cat.AddTable("d", "t")

	h := NewHandlers(cat, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/databases", nil)
	rec := httptest.NewRecorder()
	h.handleListDatabases(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("expected 1 database, got %d", len(body.Data))
	}
	tables, ok := body.Data[0]["tables"].([]interface{})
	if !ok || len(tables) != 1 {
		t.Fatalf("expected 1 owned table, got %+v", body.Data[0]["tables"])
	}
}

func TestHandleGetObjectReturnsMatchingObject(t *testing.T) {
	cat := catalog.New("svc-1", catalog.DefaultConfig())
	cat.AddDatabase("d", "owner", "")
	cat.AddTable("d", "t")

	h := NewHandlers(cat, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/object?kind=TABLE&name=d.t", nil)
	rec := httptest.NewRecorder()
	h.handleGetObject(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleGetObjectRejectsUnknownKind(t *testing.T) {
	cat := catalog.New("svc-1", catalog.DefaultConfig())
	h := NewHandlers(cat, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/object?kind=BOGUS&name=d.t", nil)
	rec := httptest.NewRecorder()
	h.handleGetObject(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown kind, got %d", rec.Code)
	}
}

func TestHandleGetObjectReturns404ForMissingObject(t *testing.T) {
	cat := catalog.New("svc-1", catalog.DefaultConfig())
	h := NewHandlers(cat, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/object?kind=TABLE&name=d.nope", nil)
	rec := httptest.NewRecorder()
	h.handleGetObject(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAuthMiddlewarePassesThroughWhenNoPSKConfigured(t *testing.T) {
	cat := catalog.New("svc-1", catalog.DefaultConfig())
	h := NewHandlers(cat, nil, nil)
	mux := http.NewServeMux()
	RegisterRoutes(mux, h)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	// No PSK configured by default, so the request should pass through.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with no PSK configured, got %d", rec.Code)
	}
}
