package memory

import (
	"context"
	"strings"
	"sync"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/repositories"
)

// CartRepository keeps per-user carts in process memory. Suitable for local
// development and tests; production deployments use the Firestore repository.
type CartRepository struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

var _ repositories.CartRepository = (*CartRepository)(nil)

// NewCartRepository constructs an empty in-memory cart repository.
func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]domain.Cart)}
}

// Get returns the cart stored for the user.
func (r *CartRepository) Get(_ context.Context, userEmail string) (domain.Cart, error) {
	key := normaliseEmail(userEmail)
	if key == "" {
		return domain.Cart{}, invalidError("cart.get", "user email is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[key]
	if !ok {
		return domain.Cart{}, notFoundError("cart.get", "cart not found")
	}
	return cloneCart(cart), nil
}

// Upsert stores the cart, replacing any previous state for the user.
func (r *CartRepository) Upsert(_ context.Context, cart domain.Cart) (domain.Cart, error) {
	key := normaliseEmail(cart.UserEmail)
	if key == "" {
		return domain.Cart{}, invalidError("cart.upsert", "user email is required")
	}

	stored := cloneCart(cart)
	stored.UserEmail = key

	r.mu.Lock()
	r.carts[key] = stored
	r.mu.Unlock()

	return cloneCart(stored), nil
}

// Delete removes the cart for the user. Deleting an absent cart is a no-op.
func (r *CartRepository) Delete(_ context.Context, userEmail string) error {
	key := normaliseEmail(userEmail)
	if key == "" {
		return invalidError("cart.delete", "user email is required")
	}

	r.mu.Lock()
	delete(r.carts, key)
	r.mu.Unlock()
	return nil
}

func cloneCart(cart domain.Cart) domain.Cart {
	cloned := cart
	if len(cart.Lines) > 0 {
		cloned.Lines = make([]domain.CartLine, len(cart.Lines))
		copy(cloned.Lines, cart.Lines)
	} else {
		cloned.Lines = nil
	}
	return cloned
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
