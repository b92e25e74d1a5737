package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/biocart/api/internal/platform/auth"
	"github.com/biocart/api/internal/platform/httpx"
	"github.com/biocart/api/internal/services"
)

const maxReviewBodySize = 16 * 1024

// ReviewHandlers serves the product review endpoints nested under the catalog.
type ReviewHandlers struct {
	verifier auth.SessionVerifier
	reviews  services.ReviewService
}

// NewReviewHandlers constructs the review endpoints.
func NewReviewHandlers(verifier auth.SessionVerifier, reviews services.ReviewService) *ReviewHandlers {
	return &ReviewHandlers{verifier: verifier, reviews: reviews}
}

// Routes wires the /{productID}/reviews endpoints onto the products router.
func (h *ReviewHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/{productID}/reviews", func(r chi.Router) {
		r.Get("/", h.list)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(h.verifier))
			r.Post("/", h.create)
		})
	})
}

type reviewPayload struct {
	ID        string   `json:"id"`
	ProductID string   `json:"productId"`
	UserName  string   `json:"userName"`
	Rating    int      `json:"rating"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	CreatedAt string   `json:"createdAt"`
	Images    []string `json:"images,omitempty"`
	Helpful   int      `json:"helpful"`
	Verified  bool     `json:"verified"`
}

type reviewSummaryPayload struct {
	AverageRating float64     `json:"averageRating"`
	TotalReviews  int         `json:"totalReviews"`
	Distribution  map[int]int `json:"ratingDistribution"`
}

type reviewListResponse struct {
	Reviews []reviewPayload      `json:"reviews"`
	Summary reviewSummaryPayload `json:"summary"`
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *ReviewHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.reviews == nil {
		httpx.WriteError(ctx, w, httpx.NewError("review_service_unavailable", "review service is unavailable", http.StatusServiceUnavailable))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	reviews, summary, err := h.reviews.ListByProduct(ctx, productID)
	if err != nil {
		writeReviewError(ctx, w, err)
		return
	}

	payload := reviewListResponse{
		Reviews: make([]reviewPayload, 0, len(reviews)),
		Summary: reviewSummaryPayload{
			AverageRating: summary.AverageRating,
			TotalReviews:  summary.TotalReviews,
			Distribution:  summary.Distribution,
		},
	}
	for _, review := range reviews {
		payload.Reviews = append(payload.Reviews, buildReviewPayload(review))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *ReviewHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.reviews == nil {
		httpx.WriteError(ctx, w, httpx.NewError("review_service_unavailable", "review service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity.NormalizedEmail() == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	body, err := readLimitedBody(r, maxReviewBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req createReviewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	review, err := h.reviews.Create(ctx, services.CreateReviewCommand{
		ProductID: strings.TrimSpace(chi.URLParam(r, "productID")),
		UserEmail: identity.NormalizedEmail(),
		UserName:  identity.Name,
		Rating:    req.Rating,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		writeReviewError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{"review": buildReviewPayload(review)})
}

func buildReviewPayload(review services.Review) reviewPayload {
	return reviewPayload{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserName:  review.UserName,
		Rating:    review.Rating,
		Title:     review.Title,
		Content:   review.Content,
		CreatedAt: formatTime(review.CreatedAt),
		Images:    review.Images,
		Helpful:   review.Helpful,
		Verified:  review.Verified,
	}
}

func writeReviewError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrReviewInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_review", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrReviewUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("review_service_unavailable", "review store unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("review_error", err.Error(), http.StatusInternalServerError))
	}
}
