package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/biocart/api/internal/repositories"
)

var errCatalogRepositoryRequired = errors.New("catalog service: repository is required")

// ErrCatalogInvalidInput indicates the caller supplied invalid input.
var ErrCatalogInvalidInput = errors.New("catalog service: invalid input")

// ErrCatalogNotFound indicates the requested product does not exist.
var ErrCatalogNotFound = errors.New("catalog service: not found")

// ErrCatalogUnavailable indicates the catalog backend cannot fulfil the request.
var ErrCatalogUnavailable = errors.New("catalog service: unavailable")

// CatalogServiceDeps wires the catalog repository and fetch simulation knobs.
type CatalogServiceDeps struct {
	Repository repositories.ProductRepository
	// FetchLatency simulates the upstream catalog round trip. Zero disables it.
	FetchLatency time.Duration
	Logger       Logger
}

type catalogService struct {
	repo    repositories.ProductRepository
	latency time.Duration
	logger  Logger
}

// NewCatalogService constructs a CatalogService enforcing dependency validation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Repository == nil {
		return nil, errCatalogRepositoryRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	latency := deps.FetchLatency
	if latency < 0 {
		latency = 0
	}

	return &catalogService{
		repo:    deps.Repository,
		latency: latency,
		logger:  logger,
	}, nil
}

// ListProducts returns the full catalog in seeded order.
func (s *catalogService) ListProducts(ctx context.Context) ([]Product, error) {
	if s == nil || s.repo == nil {
		return nil, ErrCatalogUnavailable
	}
	if err := s.simulateFetch(ctx); err != nil {
		return nil, err
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.translateRepoError(err)
	}
	return products, nil
}

// GetProduct returns the product with the given identifier.
func (s *catalogService) GetProduct(ctx context.Context, productID string) (Product, error) {
	if s == nil || s.repo == nil {
		return Product{}, ErrCatalogUnavailable
	}
	id := strings.TrimSpace(productID)
	if id == "" {
		return Product{}, ErrCatalogInvalidInput
	}
	if err := s.simulateFetch(ctx); err != nil {
		return Product{}, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Product{}, s.translateRepoError(err)
	}
	return product, nil
}

// ListByCategory returns the catalog entries matching the category.
func (s *catalogService) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	if s == nil || s.repo == nil {
		return nil, ErrCatalogUnavailable
	}
	if err := s.simulateFetch(ctx); err != nil {
		return nil, err
	}

	products, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, s.translateRepoError(err)
	}
	return products, nil
}

// SearchProducts filters the catalog by case-insensitive substring on the
// product name. A blank query returns the full catalog.
func (s *catalogService) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return products, nil
	}

	matched := make([]Product, 0, len(products))
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Name), needle) {
			matched = append(matched, product)
		}
	}
	return matched, nil
}

func (s *catalogService) simulateFetch(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *catalogService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrCatalogNotFound
		case repoErr.IsConflict():
			return ErrCatalogInvalidInput
		}
	}
	return ErrCatalogUnavailable
}
