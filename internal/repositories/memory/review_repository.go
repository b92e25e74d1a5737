package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/repositories"
)

// ReviewRepository keeps product reviews in process memory, newest first per
// product.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews []domain.Review
}

var _ repositories.ReviewRepository = (*ReviewRepository)(nil)

// NewReviewRepository constructs a repository over the given reviews. A nil
// slice seeds the sample review set.
func NewReviewRepository(reviews []domain.Review) *ReviewRepository {
	if reviews == nil {
		reviews = DefaultReviews()
	}
	stored := make([]domain.Review, len(reviews))
	copy(stored, reviews)
	return &ReviewRepository{reviews: stored}
}

// DefaultReviews returns the seeded sample reviews.
func DefaultReviews() []domain.Review {
	return []domain.Review{
		{
			ID:        "1",
			ProductID: "1",
			UserEmail: "user1@example.com",
			UserName:  "김**",
			Rating:    5,
			Title:     "정말 만족스러운 상품입니다!",
			Content:   "품질이 정말 좋고 배송도 빠르게 왔어요. 다음에도 주문할 예정입니다.",
			CreatedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Images:    []string{"https://picsum.photos/seed/review1/200/200"},
			Helpful:   12,
			Verified:  true,
		},
		{
			ID:        "2",
			ProductID: "1",
			UserEmail: "user2@example.com",
			UserName:  "이**",
			Rating:    4,
			Title:     "가격 대비 괜찮은 상품",
			Content:   "전반적으로 만족하지만 포장이 조금 아쉬웠어요. 상품 자체는 좋습니다.",
			CreatedAt: time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
			Helpful:   8,
			Verified:  true,
		},
		{
			ID:        "3",
			ProductID: "1",
			UserEmail: "user3@example.com",
			UserName:  "박**",
			Rating:    5,
			Title:     "완벽한 상품이에요",
			Content:   "사진과 똑같고 품질도 기대 이상입니다. 추천해요!",
			CreatedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Images: []string{
				"https://picsum.photos/seed/review2/200/200",
				"https://picsum.photos/seed/review3/200/200",
			},
			Helpful:  15,
			Verified: false,
		},
		{
			ID:        "4",
			ProductID: "1",
			UserEmail: "user4@example.com",
			UserName:  "최**",
			Rating:    3,
			Title:     "보통이에요",
			Content:   "특별히 좋지도 나쁘지도 않은 평범한 상품입니다.",
			CreatedAt: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			Helpful:   3,
			Verified:  true,
		},
		{
			ID:        "5",
			ProductID: "1",
			UserEmail: "user5@example.com",
			UserName:  "정**",
			Rating:    5,
			Title:     "최고의 상품!",
			Content:   "정말 좋은 상품이에요. 가족 모두 만족하고 있습니다.",
			CreatedAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Helpful:   20,
			Verified:  true,
		},
	}
}

// ListByProduct returns the reviews for the product, newest first.
func (r *ReviewRepository) ListByProduct(_ context.Context, productID string) ([]domain.Review, error) {
	key := strings.TrimSpace(productID)
	if key == "" {
		return nil, invalidError("review.list", "product id is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.Review
	for _, review := range r.reviews {
		if review.ProductID == key {
			matched = append(matched, review)
		}
	}
	return matched, nil
}

// Insert prepends the review so later listings stay newest first.
func (r *ReviewRepository) Insert(_ context.Context, review domain.Review) (domain.Review, error) {
	if strings.TrimSpace(review.ID) == "" {
		return domain.Review{}, invalidError("review.insert", "review id is required")
	}
	if strings.TrimSpace(review.ProductID) == "" {
		return domain.Review{}, invalidError("review.insert", "product id is required")
	}

	r.mu.Lock()
	r.reviews = append([]domain.Review{review}, r.reviews...)
	r.mu.Unlock()
	return review, nil
}
