package repositories

import (
	"context"

	domain "github.com/biocart/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Carts() CartRepository
	History() HistoryRepository
	Products() ProductRepository
	Reviews() ReviewRepository
	Users() UserRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CartRepository owns per-user cart persistence.
type CartRepository interface {
	Get(ctx context.Context, userEmail string) (domain.Cart, error)
	Upsert(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	Delete(ctx context.Context, userEmail string) error
}

// HistoryRepository owns the single durable slot holding the serialized
// newest-first order history list. The slot is read and written as a whole.
type HistoryRepository interface {
	Load(ctx context.Context) ([]domain.HistoryEntry, error)
	Store(ctx context.Context, entries []domain.HistoryEntry) error
	Prepend(ctx context.Context, entry domain.HistoryEntry) error
	Clear(ctx context.Context) error
}

// ProductRepository serves immutable catalog reference data.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
}

// ReviewRepository persists product reviews, newest first per product.
type ReviewRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	Insert(ctx context.Context, review domain.Review) (domain.Review, error)
}

// UserRepository persists mock user profiles keyed by email.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (domain.UserProfile, error)
	Upsert(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
}

// HealthRepository reports backend dependency health for readiness probes.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
