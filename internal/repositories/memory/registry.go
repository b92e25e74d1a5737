package memory

import (
	"context"

	"github.com/biocart/api/internal/repositories"
)

// Registry bundles the in-memory repositories behind the shared registry
// interface. Used for local development and as the default persistence tier.
type Registry struct {
	carts    *CartRepository
	history  *HistoryRepository
	products *ProductRepository
	reviews  *ReviewRepository
	users    *UserRepository
	health   repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry constructs a registry with empty mutable state and the seeded
// catalog. The health repository is injected because its probes depend on
// wiring outside this package.
func NewRegistry(health repositories.HealthRepository) *Registry {
	return &Registry{
		carts:    NewCartRepository(),
		history:  NewHistoryRepository(),
		products: NewProductRepository(nil),
		reviews:  NewReviewRepository(nil),
		users:    NewUserRepository(),
		health:   health,
	}
}

// Close releases registry resources. In-memory state has none.
func (r *Registry) Close(context.Context) error {
	return nil
}

// Carts returns the cart repository.
func (r *Registry) Carts() repositories.CartRepository {
	return r.carts
}

// History returns the order history repository.
func (r *Registry) History() repositories.HistoryRepository {
	return r.history
}

// Products returns the catalog repository.
func (r *Registry) Products() repositories.ProductRepository {
	return r.products
}

// Reviews returns the product review repository.
func (r *Registry) Reviews() repositories.ReviewRepository {
	return r.reviews
}

// Users returns the user profile repository.
func (r *Registry) Users() repositories.UserRepository {
	return r.users
}

// Health returns the dependency health repository.
func (r *Registry) Health() repositories.HealthRepository {
	return r.health
}
