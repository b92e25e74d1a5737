package firestore

import (
	"context"
	"errors"

	pfirestore "github.com/biocart/api/internal/platform/firestore"
	"github.com/biocart/api/internal/repositories"
	"github.com/biocart/api/internal/repositories/memory"
)

// Registry bundles the Firestore-backed repositories behind the shared
// registry interface. Catalog data stays in memory; it is seeded reference
// data and never mutated at runtime.
type Registry struct {
	provider *pfirestore.Provider
	carts    *CartRepository
	history  *HistoryRepository
	reviews  *ReviewRepository
	users    *UserRepository
	products repositories.ProductRepository
	health   repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry constructs a registry over the Firestore provider.
func NewRegistry(provider *pfirestore.Provider, health repositories.HealthRepository, historyOpts ...HistoryOption) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	carts, err := NewCartRepository(provider)
	if err != nil {
		return nil, err
	}
	history, err := NewHistoryRepository(provider, historyOpts...)
	if err != nil {
		return nil, err
	}
	reviews, err := NewReviewRepository(provider)
	if err != nil {
		return nil, err
	}
	users, err := NewUserRepository(provider)
	if err != nil {
		return nil, err
	}

	return &Registry{
		provider: provider,
		carts:    carts,
		history:  history,
		reviews:  reviews,
		users:    users,
		products: memory.NewProductRepository(nil),
		health:   health,
	}, nil
}

// Close releases the underlying Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
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
