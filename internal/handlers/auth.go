package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biocart/api/internal/platform/auth"
	"github.com/biocart/api/internal/platform/httpx"
)

const maxLoginBodySize = 16 * 1024

// SessionIssuer mints session tokens for a verified login.
type SessionIssuer interface {
	Issue(email, name string) (string, time.Time, error)
}

// AuthHandlers exposes the mock session login endpoint. Any non-empty
// credential pair is accepted; the password is never stored or checked
// against a directory.
type AuthHandlers struct {
	sessions SessionIssuer
	verifier auth.SessionVerifier
	limiter  rateLimiter
}

// AuthOption customises AuthHandlers construction.
type AuthOption func(*AuthHandlers)

// WithLoginRateLimit throttles login attempts per client address.
func WithLoginRateLimit(limit int, window time.Duration, clock func() time.Time) AuthOption {
	return func(h *AuthHandlers) {
		h.limiter = newSimpleRateLimiter(limit, window, clock)
	}
}

// NewAuthHandlers constructs the session endpoints backed by the token manager.
func NewAuthHandlers(sessions SessionIssuer, verifier auth.SessionVerifier, opts ...AuthOption) *AuthHandlers {
	h := &AuthHandlers{
		sessions: sessions,
		verifier: verifier,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes wires the /auth endpoints onto the provided router.
func (h *AuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/login", h.login)
	r.Group(func(protected chi.Router) {
		if h.verifier != nil {
			protected.Use(auth.RequireSession(h.verifier))
		}
		protected.Get("/session", h.session)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expiresAt"`
	User      userPayload `json:"user"`
}

type userPayload struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sessions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("auth_service_unavailable", "session service is unavailable", http.StatusServiceUnavailable))
		return
	}

	if h.limiter != nil && !h.limiter.Allow(r.RemoteAddr) {
		httpx.WriteError(ctx, w, httpx.NewError("too_many_attempts", "too many login attempts; retry later", http.StatusTooManyRequests))
		return
	}

	body, err := readLimitedBody(r, maxLoginBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Password) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "email and password are required", http.StatusBadRequest))
		return
	}

	token, expiresAt, err := h.sessions.Issue(email, req.Name)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("auth_error", "unable to issue session token", http.StatusInternalServerError))
		return
	}

	writeJSONResponse(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: formatTime(expiresAt),
		User: userPayload{
			Email: email,
			Name:  strings.TrimSpace(req.Name),
		},
	})
}

// session echoes the identity carried by a valid bearer token.
func (h *AuthHandlers) session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"user": userPayload{Email: identity.NormalizedEmail(), Name: identity.Name},
	})
}
