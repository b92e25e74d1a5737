package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouterUnknownRouteReturnsJSON404(t *testing.T) {
	router := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["error"] != "route_not_found" {
		t.Fatalf("expected route_not_found envelope, got %v", payload)
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := NewRouter(WithProductRoutes(NewProductHandlers(&stubCatalogService{}).Routes))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products", nil)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["error"] != "method_not_allowed" {
		t.Fatalf("expected method_not_allowed envelope, got %v", payload)
	}
}

func TestRouterUnconfiguredGroupReturnsNotImplemented(t *testing.T) {
	router := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
}

func TestRouterServesHealthEndpoints(t *testing.T) {
	router := NewRouter(WithHealthHandlers(NewHealthHandlers(
		WithHealthBuildInfo("1.4.0", "test"),
		WithHealthClock(testClock),
	)))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["version"] != "1.4.0" || payload["environment"] != "test" {
		t.Fatalf("unexpected build metadata: %v", payload)
	}
}
