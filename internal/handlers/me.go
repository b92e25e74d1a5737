package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biocart/api/internal/platform/auth"
	"github.com/biocart/api/internal/platform/httpx"
	"github.com/biocart/api/internal/services"
)

const maxProfileBodySize = 64 * 1024

var (
	errBodyTooLarge     = errors.New("request body too large")
	errEmptyBody        = errors.New("request body is required")
	errNoEditableFields = errors.New("no editable fields provided")
)

// MeHandlers exposes authenticated profile endpoints for the current user.
type MeHandlers struct {
	verifier auth.SessionVerifier
	users    services.UserService
}

// NewMeHandlers constructs handlers enforcing session authentication before invoking the user service.
func NewMeHandlers(verifier auth.SessionVerifier, users services.UserService) *MeHandlers {
	return &MeHandlers{
		verifier: verifier,
		users:    users,
	}
}

// Routes wires the /me endpoints onto the provided router.
func (h *MeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.verifier != nil {
		r.Use(auth.RequireSession(h.verifier))
	}
	r.Get("/", h.getProfile)
	r.Patch("/", h.updateProfile)
}

func (h *MeHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.NewError("profile_service_unavailable", "profile service is unavailable", http.StatusServiceUnavailable))
		return
	}

	email, ok := requireSessionEmail(ctx, w)
	if !ok {
		return
	}

	profile, err := h.users.GetProfile(ctx, email)
	if err != nil {
		writeUserProfileError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, meResponse{Profile: buildProfilePayload(profile)})
}

func (h *MeHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.NewError("profile_service_unavailable", "profile service is unavailable", http.StatusServiceUnavailable))
		return
	}

	email, ok := requireSessionEmail(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxProfileBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	updateReq, err := parseUpdateProfileRequest(body)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	cmd := services.UpdateProfileCommand{
		Email:   email,
		Name:    updateReq.name,
		Phone:   updateReq.phone,
		Address: updateReq.address,
	}

	updated, err := h.users.UpdateProfile(ctx, cmd)
	if err != nil {
		writeUserProfileError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, meResponse{Profile: buildProfilePayload(updated)})
}

type meResponse struct {
	Profile meProfilePayload `json:"profile"`
}

type meProfilePayload struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func buildProfilePayload(profile services.UserProfile) meProfilePayload {
	return meProfilePayload{
		Email:     strings.ToLower(strings.TrimSpace(profile.Email)),
		Name:      profile.Name,
		Phone:     profile.Phone,
		Address:   profile.Address,
		UpdatedAt: formatTime(profile.UpdatedAt),
	}
}

type updateProfileRequest struct {
	name    *string
	phone   *string
	address *string
}

func parseUpdateProfileRequest(data []byte) (updateProfileRequest, error) {
	var req updateProfileRequest

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return req, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if len(raw) == 0 {
		return req, errNoEditableFields
	}

	decodeString := func(field string, value json.RawMessage) (*string, error) {
		if isJSONNull(value) {
			return nil, fmt.Errorf("%s must not be null", field)
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("%s must be a string", field)
		}
		return &s, nil
	}

	for key, value := range raw {
		switch key {
		case "name":
			ptr, err := decodeString("name", value)
			if err != nil {
				return req, err
			}
			req.name = ptr
		case "phone":
			ptr, err := decodeString("phone", value)
			if err != nil {
				return req, err
			}
			req.phone = ptr
		case "address":
			ptr, err := decodeString("address", value)
			if err != nil {
				return req, err
			}
			req.address = ptr
		default:
			return req, fmt.Errorf("field %q is not editable", key)
		}
	}

	if req.name == nil && req.phone == nil && req.address == nil {
		return req, errNoEditableFields
	}

	return req, nil
}

func isJSONNull(value json.RawMessage) bool {
	return strings.EqualFold(strings.TrimSpace(string(value)), "null")
}

func writeUserProfileError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, services.ErrUserInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_profile_field", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrUserNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("profile_not_found", "profile not found", http.StatusNotFound))
	case errors.Is(err, services.ErrUserUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("profile_service_unavailable", "profile repository unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("profile_error", err.Error(), http.StatusInternalServerError))
	}
}

// requireSessionEmail extracts the normalized session email or writes a 401.
func requireSessionEmail(ctx context.Context, w http.ResponseWriter) (string, bool) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return "", false
	}
	email := identity.NormalizedEmail()
	if email == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return "", false
	}
	return email, true
}

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	if limit <= 0 {
		limit = maxProfileBodySize
	}
	reader := io.LimitReader(r.Body, limit+1)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
