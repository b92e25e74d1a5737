package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/repositories"
)

const (
	reviewIDPrefix        = "rev_"
	maxReviewTitleRunes   = 100
	maxReviewContentRunes = 1000
)

var (
	errReviewRepositoryRequired = errors.New("review service: repository is required")
	errReviewClockRequired      = errors.New("review service: clock is required")
)

// ErrReviewInvalidInput indicates validation failures for review operations.
var ErrReviewInvalidInput = errors.New("review service: invalid input")

// ErrReviewUnavailable indicates the review store cannot fulfil the request.
var ErrReviewUnavailable = errors.New("review service: unavailable")

// reviewPurchaseChecker reports the order history used to mark reviews as
// verified purchases. HistoryService satisfies it.
type reviewPurchaseChecker interface {
	GetByEmail(ctx context.Context, userEmail string) ([]HistoryEntry, error)
}

// ReviewServiceDeps wires the collaborators for review operations. Purchases
// is optional; without it no review is marked as a verified purchase.
type ReviewServiceDeps struct {
	Repository  repositories.ReviewRepository
	Purchases   reviewPurchaseChecker
	Clock       func() time.Time
	IDGenerator func() string
	Sanitizer   func(string) string
	Logger      Logger
}

type reviewService struct {
	repo      repositories.ReviewRepository
	purchases reviewPurchaseChecker
	now       func() time.Time
	newID     func() string
	sanitize  func(string) string
	logger    Logger
}

var _ ReviewService = (*reviewService)(nil)

// NewReviewService constructs a ReviewService enforcing dependency validation.
func NewReviewService(deps ReviewServiceDeps) (ReviewService, error) {
	if deps.Repository == nil {
		return nil, errReviewRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errReviewClockRequired
	}

	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string {
			return reviewIDPrefix + ulid.Make().String()
		}
	}
	sanitize := deps.Sanitizer
	if sanitize == nil {
		sanitize = sanitizeReviewText
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &reviewService{
		repo:      deps.Repository,
		purchases: deps.Purchases,
		now:       func() time.Time { return deps.Clock().UTC() },
		newID:     newID,
		sanitize:  sanitize,
		logger:    logger,
	}, nil
}

// ListByProduct returns the stored reviews for the product, newest first,
// together with the rating summary computed over them.
func (s *reviewService) ListByProduct(ctx context.Context, productID string) ([]Review, ReviewSummary, error) {
	if s == nil || s.repo == nil {
		return nil, ReviewSummary{}, ErrReviewUnavailable
	}
	id := strings.TrimSpace(productID)
	if id == "" {
		return nil, ReviewSummary{}, fmt.Errorf("%w: product id is required", ErrReviewInvalidInput)
	}

	reviews, err := s.repo.ListByProduct(ctx, id)
	if err != nil {
		return nil, ReviewSummary{}, s.translateRepoError(err)
	}
	return reviews, summarizeReviews(reviews), nil
}

// Create validates, sanitises, and stores a new review.
func (s *reviewService) Create(ctx context.Context, cmd CreateReviewCommand) (Review, error) {
	if s == nil || s.repo == nil {
		return Review{}, ErrReviewUnavailable
	}

	productID := strings.TrimSpace(cmd.ProductID)
	email := strings.ToLower(strings.TrimSpace(cmd.UserEmail))
	title := s.sanitize(cmd.Title)
	content := s.sanitize(cmd.Content)

	switch {
	case productID == "":
		return Review{}, fmt.Errorf("%w: product id is required", ErrReviewInvalidInput)
	case email == "":
		return Review{}, fmt.Errorf("%w: user email is required", ErrReviewInvalidInput)
	case cmd.Rating < 1 || cmd.Rating > 5:
		return Review{}, fmt.Errorf("%w: rating must be between 1 and 5", ErrReviewInvalidInput)
	case title == "":
		return Review{}, fmt.Errorf("%w: title is required", ErrReviewInvalidInput)
	case len([]rune(title)) > maxReviewTitleRunes:
		return Review{}, fmt.Errorf("%w: title exceeds %d characters", ErrReviewInvalidInput, maxReviewTitleRunes)
	case content == "":
		return Review{}, fmt.Errorf("%w: content is required", ErrReviewInvalidInput)
	case len([]rune(content)) > maxReviewContentRunes:
		return Review{}, fmt.Errorf("%w: content exceeds %d characters", ErrReviewInvalidInput, maxReviewContentRunes)
	}

	review := domain.Review{
		ID:        s.newID(),
		ProductID: productID,
		UserEmail: email,
		UserName:  maskReviewerName(cmd.UserName),
		Rating:    cmd.Rating,
		Title:     title,
		Content:   content,
		CreatedAt: s.now(),
		Verified:  s.hasPurchased(ctx, email, productID),
	}

	stored, err := s.repo.Insert(ctx, review)
	if err != nil {
		return Review{}, s.translateRepoError(err)
	}

	s.logger(ctx, "review.created", map[string]any{
		"reviewId":  stored.ID,
		"productId": stored.ProductID,
		"rating":    stored.Rating,
		"verified":  stored.Verified,
	})
	return stored, nil
}

// hasPurchased scans the user's order history for the product. History
// lookups degrade to unverified rather than failing the submission.
func (s *reviewService) hasPurchased(ctx context.Context, email, productID string) bool {
	if s.purchases == nil {
		return false
	}
	entries, err := s.purchases.GetByEmail(ctx, email)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		for _, item := range entry.Receipt.Items {
			if item.ProductID == productID {
				return true
			}
		}
	}
	return false
}

func (s *reviewService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && repoErr.IsConflict() {
		return ErrReviewInvalidInput
	}
	return ErrReviewUnavailable
}

func summarizeReviews(reviews []Review) ReviewSummary {
	summary := ReviewSummary{
		TotalReviews: len(reviews),
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	if len(reviews) == 0 {
		return summary
	}

	total := 0
	for _, review := range reviews {
		total += review.Rating
		if review.Rating >= 1 && review.Rating <= 5 {
			summary.Distribution[review.Rating]++
		}
	}
	summary.AverageRating = roundToOneDecimal(float64(total) / float64(len(reviews)))
	return summary
}

var reviewHTMLPolicy = bluemonday.StrictPolicy()

// sanitizeReviewText strips markup and normalises whitespace so stored review
// text is always plain.
func sanitizeReviewText(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	stripped := html.UnescapeString(reviewHTMLPolicy.Sanitize(trimmed))
	normalized := strings.ReplaceAll(strings.ReplaceAll(stripped, "\r\n", "\n"), "\r", "\n")
	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		line = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) && r != '\n' {
				return -1
			}
			return r
		}, line)
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// maskReviewerName keeps the first rune of the display name, the form review
// listings show author names in.
func maskReviewerName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "익명"
	}
	runes := []rune(trimmed)
	return string(runes[0]) + "**"
}
