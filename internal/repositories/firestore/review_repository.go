package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/biocart/api/internal/domain"
	pfirestore "github.com/biocart/api/internal/platform/firestore"
	"github.com/biocart/api/internal/repositories"
)

const reviewCollection = "reviews"

// ReviewRepository persists product reviews within Firestore, one document per
// review keyed by review ID.
type ReviewRepository struct {
	base *pfirestore.BaseRepository[reviewDocument]
}

var _ repositories.ReviewRepository = (*ReviewRepository)(nil)

// NewReviewRepository constructs a Firestore-backed review repository.
func NewReviewRepository(provider *pfirestore.Provider) (*ReviewRepository, error) {
	if provider == nil {
		return nil, errors.New("review repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[reviewDocument](provider, reviewCollection, nil, nil)
	return &ReviewRepository{base: base}, nil
}

// ListByProduct returns the reviews for the product, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("review repository not initialised")
	}
	key := strings.TrimSpace(productID)
	if key == "" {
		return nil, errors.New("review repository: product id is required")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("productId", "==", key).OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(docs))
	for _, doc := range docs {
		reviews = append(reviews, doc.Data.toDomain(doc.ID))
	}
	return reviews, nil
}

// Insert stores the review under its ID.
func (r *ReviewRepository) Insert(ctx context.Context, review domain.Review) (domain.Review, error) {
	if r == nil || r.base == nil {
		return domain.Review{}, errors.New("review repository not initialised")
	}
	id := strings.TrimSpace(review.ID)
	if id == "" {
		return domain.Review{}, errors.New("review repository: review id is required")
	}

	doc := newReviewDocument(review)
	if _, err := r.base.Set(ctx, id, doc); err != nil {
		return domain.Review{}, err
	}
	return doc.toDomain(id), nil
}

type reviewDocument struct {
	ProductID string    `firestore:"productId"`
	UserEmail string    `firestore:"userEmail"`
	UserName  string    `firestore:"userName"`
	Rating    int       `firestore:"rating"`
	Title     string    `firestore:"title"`
	Content   string    `firestore:"content"`
	CreatedAt time.Time `firestore:"createdAt"`
	Images    []string  `firestore:"images,omitempty"`
	Helpful   int       `firestore:"helpful"`
	Verified  bool      `firestore:"verified"`
}

func newReviewDocument(review domain.Review) reviewDocument {
	doc := reviewDocument{
		ProductID: strings.TrimSpace(review.ProductID),
		UserEmail: normaliseEmail(review.UserEmail),
		UserName:  review.UserName,
		Rating:    review.Rating,
		Title:     review.Title,
		Content:   review.Content,
		CreatedAt: review.CreatedAt.UTC(),
		Helpful:   review.Helpful,
		Verified:  review.Verified,
	}
	if len(review.Images) > 0 {
		doc.Images = make([]string, len(review.Images))
		copy(doc.Images, review.Images)
	}
	return doc
}

func (d reviewDocument) toDomain(id string) domain.Review {
	review := domain.Review{
		ID:        id,
		ProductID: d.ProductID,
		UserEmail: d.UserEmail,
		UserName:  d.UserName,
		Rating:    d.Rating,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		Helpful:   d.Helpful,
		Verified:  d.Verified,
	}
	if len(d.Images) > 0 {
		review.Images = make([]string, len(d.Images))
		copy(review.Images, d.Images)
	}
	return review
}
