package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newAuthRouter(t *testing.T, opts ...AuthOption) http.Handler {
	t.Helper()
	manager := newTestSessionManager(t)
	return NewRouter(WithAuthRoutes(NewAuthHandlers(manager, manager, opts...).Routes))
}

func TestAuthLoginIssuesVerifiableToken(t *testing.T) {
	manager := newTestSessionManager(t)
	router := NewRouter(WithAuthRoutes(NewAuthHandlers(manager, manager).Routes))

	body := strings.NewReader(`{"email":"User@Example.com","password":"secret","name":"김바이오"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.User.Email != "user@example.com" {
		t.Fatalf("expected normalized email, got %q", payload.User.Email)
	}

	identity, err := manager.Verify(payload.Token)
	if err != nil {
		t.Fatalf("issued token must verify: %v", err)
	}
	if identity.NormalizedEmail() != "user@example.com" {
		t.Fatalf("unexpected token subject %q", identity.Email)
	}
}

func TestAuthLoginRequiresCredentials(t *testing.T) {
	router := newAuthRouter(t)

	cases := []string{
		`{"email":"","password":"secret"}`,
		`{"email":"user@example.com","password":""}`,
		`{"email":"  ","password":"  "}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := doRequest(t, router, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestAuthLoginRateLimited(t *testing.T) {
	router := newAuthRouter(t, WithLoginRateLimit(2, time.Minute, testClock))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"user@example.com","password":"pw"}`))
		req.RemoteAddr = "10.0.0.1:4000"
		if rec := doRequest(t, router, req); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"user@example.com","password":"pw"}`))
	req.RemoteAddr = "10.0.0.1:4000"
	if rec := doRequest(t, router, req); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", rec.Code)
	}
}

func TestAuthSessionEchoesIdentity(t *testing.T) {
	manager := newTestSessionManager(t)
	router := NewRouter(WithAuthRoutes(NewAuthHandlers(manager, manager).Routes))
	token := issueTestToken(t, manager, "user@example.com")

	req := authorize(httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil), token)
	rec := doRequest(t, router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		User userPayload `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.User.Email != "user@example.com" {
		t.Fatalf("unexpected identity %#v", payload.User)
	}

	unauthenticated := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	if rec := doRequest(t, router, unauthenticated); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}
