package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/repositories"
)

var (
	errCartRepositoryRequired = errors.New("cart service: repository is required")
	errCartCatalogRequired    = errors.New("cart service: catalog is required")
	errCartClockRequired      = errors.New("cart service: clock is required")
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartNotFound indicates the requested product is not in the catalog.
var ErrCartNotFound = errors.New("cart service: not found")

// ErrCartUnavailable indicates the cart service cannot fulfil the request due to backend issues.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// CartServiceDeps wires the repository and catalog dependencies for cart operations.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Catalog    repositories.ProductRepository
	Clock      func() time.Time
	Logger     Logger
}

type cartService struct {
	repo    repositories.CartRepository
	catalog repositories.ProductRepository
	now     func() time.Time
	logger  Logger

	observerMu sync.RWMutex
	observers  []CartObserver
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Catalog == nil {
		return nil, errCartCatalogRequired
	}
	if deps.Clock == nil {
		return nil, errCartClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &cartService{
		repo:    deps.Repository,
		catalog: deps.Catalog,
		now:     func() time.Time { return deps.Clock().UTC() },
		logger:  logger,
	}, nil
}

// RegisterObserver adds a change observer invoked after every mutation.
func (s *cartService) RegisterObserver(observer CartObserver) {
	if s == nil || observer == nil {
		return
	}
	s.observerMu.Lock()
	s.observers = append(s.observers, observer)
	s.observerMu.Unlock()
}

// GetCart loads the cart for the user, returning an empty cart when absent.
func (s *cartService) GetCart(ctx context.Context, userEmail string) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}
	email := normaliseCartEmail(userEmail)
	if email == "" {
		return Cart{}, ErrCartInvalidInput
	}

	cart, err := s.repo.Get(ctx, email)
	if err != nil {
		if isRepoNotFound(err) {
			return Cart{UserEmail: email}, nil
		}
		return Cart{}, s.translateRepoError(err)
	}
	return cart, nil
}

// AddItem adds one unit of the product, inserting a new line when absent.
func (s *cartService) AddItem(ctx context.Context, cmd AddCartItemCommand) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}
	email := normaliseCartEmail(cmd.UserEmail)
	productID := strings.TrimSpace(cmd.ProductID)
	if email == "" || productID == "" {
		return Cart{}, ErrCartInvalidInput
	}

	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		if isRepoNotFound(err) {
			return Cart{}, ErrCartNotFound
		}
		return Cart{}, s.translateRepoError(err)
	}

	cart, err := s.loadOrEmpty(ctx, email)
	if err != nil {
		return Cart{}, err
	}

	now := s.now()
	found := false
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  1,
			Image:     product.Image,
			AddedAt:   now,
		})
	}
	cart.UpdatedAt = now

	return s.persist(ctx, cart)
}

// SetQuantity sets the absolute quantity of a line. Zero or negative removes
// it; adjusting a line that is not in the cart leaves the cart unchanged.
func (s *cartService) SetQuantity(ctx context.Context, cmd SetCartQuantityCommand) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}
	email := normaliseCartEmail(cmd.UserEmail)
	productID := strings.TrimSpace(cmd.ProductID)
	if email == "" || productID == "" {
		return Cart{}, ErrCartInvalidInput
	}

	cart, err := s.loadOrEmpty(ctx, email)
	if err != nil {
		return Cart{}, err
	}

	if cmd.Quantity <= 0 {
		cart.Lines = removeLine(cart.Lines, productID)
	} else {
		found := false
		for i := range cart.Lines {
			if cart.Lines[i].ProductID == productID {
				cart.Lines[i].Quantity = cmd.Quantity
				found = true
				break
			}
		}
		if !found {
			return cart, nil
		}
	}
	cart.UpdatedAt = s.now()

	return s.persist(ctx, cart)
}

// RemoveItem removes the line for the product. Removing an absent line is a no-op.
func (s *cartService) RemoveItem(ctx context.Context, cmd RemoveCartItemCommand) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}
	email := normaliseCartEmail(cmd.UserEmail)
	productID := strings.TrimSpace(cmd.ProductID)
	if email == "" || productID == "" {
		return Cart{}, ErrCartInvalidInput
	}

	cart, err := s.loadOrEmpty(ctx, email)
	if err != nil {
		return Cart{}, err
	}

	cart.Lines = removeLine(cart.Lines, productID)
	cart.UpdatedAt = s.now()

	return s.persist(ctx, cart)
}

// ClearCart deletes all lines for the user.
func (s *cartService) ClearCart(ctx context.Context, userEmail string) error {
	if s == nil || s.repo == nil {
		return ErrCartUnavailable
	}
	email := normaliseCartEmail(userEmail)
	if email == "" {
		return ErrCartInvalidInput
	}

	if err := s.repo.Delete(ctx, email); err != nil {
		return s.translateRepoError(err)
	}

	s.notify(ctx, Cart{UserEmail: email, UpdatedAt: s.now()})
	return nil
}

func (s *cartService) loadOrEmpty(ctx context.Context, email string) (Cart, error) {
	cart, err := s.repo.Get(ctx, email)
	if err != nil {
		if isRepoNotFound(err) {
			return Cart{UserEmail: email}, nil
		}
		return Cart{}, s.translateRepoError(err)
	}
	return cart, nil
}

func (s *cartService) persist(ctx context.Context, cart Cart) (Cart, error) {
	saved, err := s.repo.Upsert(ctx, cart)
	if err != nil {
		return Cart{}, s.translateRepoError(err)
	}

	s.logger(ctx, "cart.updated", map[string]any{
		"userEmail":  saved.UserEmail,
		"totalItems": saved.TotalItems(),
		"totalPrice": saved.TotalPrice(),
	})
	s.notify(ctx, saved)
	return saved, nil
}

func (s *cartService) notify(ctx context.Context, cart Cart) {
	s.observerMu.RLock()
	observers := make([]CartObserver, len(s.observers))
	copy(observers, s.observers)
	s.observerMu.RUnlock()

	for _, observer := range observers {
		observer(ctx, cart)
	}
}

func (s *cartService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrCartNotFound
		case repoErr.IsConflict():
			return ErrCartInvalidInput
		}
	}
	return ErrCartUnavailable
}

func removeLine(lines []domain.CartLine, productID string) []domain.CartLine {
	filtered := lines[:0]
	for _, line := range lines {
		if line.ProductID != productID {
			filtered = append(filtered, line)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}

func normaliseCartEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
