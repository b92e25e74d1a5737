package memory

import (
	"context"
	"strings"
	"sync"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/repositories"
)

// ProductRepository serves the seeded catalog from process memory. The catalog
// is reference data; no mutation methods are exposed.
type ProductRepository struct {
	mu       sync.RWMutex
	products []domain.Product
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository constructs a repository over the given catalog. A nil
// slice seeds the default catalog.
func NewProductRepository(products []domain.Product) *ProductRepository {
	if products == nil {
		products = DefaultProducts()
	}
	stored := make([]domain.Product, len(products))
	copy(stored, products)
	return &ProductRepository{products: stored}
}

// DefaultProducts returns the seeded storefront catalog.
func DefaultProducts() []domain.Product {
	return []domain.Product{
		{
			ID:          "1",
			Name:        "유기농 바나나",
			Price:       3500,
			Stock:       50,
			Category:    "과일",
			Description: "신선한 유기농 바나나",
			Image:       "https://picsum.photos/seed/banana/150/150",
		},
		{
			ID:          "2",
			Name:        "토마토",
			Price:       2800,
			Stock:       30,
			Category:    "채소",
			Description: "달콤한 방울토마토",
			Image:       "https://picsum.photos/seed/tomato/150/150",
		},
		{
			ID:          "3",
			Name:        "유기농 사과",
			Price:       4500,
			Stock:       25,
			Category:    "과일",
			Description: "아삭한 유기농 사과",
			Image:       "https://picsum.photos/seed/apple/150/150",
		},
		{
			ID:          "4",
			Name:        "시금치",
			Price:       2000,
			Stock:       40,
			Category:    "채소",
			Description: "신선한 시금치",
			Image:       "https://picsum.photos/seed/spinach/150/150",
		},
		{
			ID:          "5",
			Name:        "오이",
			Price:       1800,
			Stock:       35,
			Category:    "채소",
			Description: "아삭한 오이",
			Image:       "https://picsum.photos/seed/cucumber/150/150",
		},
		{
			ID:          "6",
			Name:        "딸기",
			Price:       6000,
			Stock:       20,
			Category:    "과일",
			Description: "달콤한 딸기",
			Image:       "https://picsum.photos/seed/strawberry/150/150",
		},
	}
}

// List returns the full catalog in seeded order.
func (r *ProductRepository) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]domain.Product, len(r.products))
	copy(products, r.products)
	return products, nil
}

// FindByID returns the product with the given identifier.
func (r *ProductRepository) FindByID(_ context.Context, productID string) (domain.Product, error) {
	id := strings.TrimSpace(productID)
	if id == "" {
		return domain.Product{}, invalidError("product.find", "product id is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, product := range r.products {
		if product.ID == id {
			return product, nil
		}
	}
	return domain.Product{}, notFoundError("product.find", "product not found")
}

// ListByCategory returns catalog entries matching the category in seeded order.
func (r *ProductRepository) ListByCategory(_ context.Context, category string) ([]domain.Product, error) {
	wanted := strings.ToLower(strings.TrimSpace(category))
	if wanted == "" {
		return r.List(context.Background())
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if strings.ToLower(product.Category) == wanted {
			matched = append(matched, product)
		}
	}
	return matched, nil
}
