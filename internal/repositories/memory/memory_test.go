package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/repositories"
)

func TestCartRepositoryNormalisesEmailAndClones(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository()

	cart := domain.Cart{
		UserEmail: "User@Example.com",
		Lines: []domain.CartLine{
			{ProductID: "1", Name: "유기농 토마토", UnitPrice: 4500, Quantity: 2},
		},
		UpdatedAt: time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC),
	}

	stored, err := repo.Upsert(ctx, cart)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if stored.UserEmail != "user@example.com" {
		t.Fatalf("expected normalised email, got %q", stored.UserEmail)
	}

	fetched, err := repo.Get(ctx, "USER@example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	fetched.Lines[0].Quantity = 99
	again, err := repo.Get(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("Get again: %v", err)
	}
	if again.Lines[0].Quantity != 2 {
		t.Fatalf("stored cart mutated through returned copy: %d", again.Lines[0].Quantity)
	}
}

func TestCartRepositoryGetMissingReturnsNotFound(t *testing.T) {
	repo := NewCartRepository()

	_, err := repo.Get(context.Background(), "nobody@example.com")
	if err == nil {
		t.Fatal("expected error for missing cart")
	}
	var repoErr repositories.RepositoryError
	if !errors.As(err, &repoErr) || !repoErr.IsNotFound() {
		t.Fatalf("expected not-found repository error, got %v", err)
	}
}

func TestCartRepositoryDeleteMissingIsNoOp(t *testing.T) {
	repo := NewCartRepository()
	if err := repo.Delete(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestHistoryRepositoryPrependKeepsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository()

	first := domain.HistoryEntry{ID: "a", UserEmail: "user@example.com"}
	second := domain.HistoryEntry{ID: "b", UserEmail: "user@example.com"}

	if err := repo.Prepend(ctx, first); err != nil {
		t.Fatalf("Prepend: %v", err)
	}
	if err := repo.Prepend(ctx, second); err != nil {
		t.Fatalf("Prepend: %v", err)
	}

	entries, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "b" || entries[1].ID != "a" {
		t.Fatalf("unexpected order: %#v", entries)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load after clear: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty slot, got %d entries", len(entries))
	}
}

func TestProductRepositoryServesSeededCatalog(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(nil)

	products, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 6 {
		t.Fatalf("expected 6 seeded products, got %d", len(products))
	}
	if products[0].Name != "유기농 바나나" || products[0].Price != 3500 {
		t.Fatalf("unexpected first product: %#v", products[0])
	}

	product, err := repo.FindByID(ctx, "6")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if product.Name != "딸기" || product.Price != 6000 {
		t.Fatalf("unexpected product: %#v", product)
	}

	fruits, err := repo.ListByCategory(ctx, "과일")
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if len(fruits) != 3 {
		t.Fatalf("expected 3 fruits, got %d", len(fruits))
	}

	_, err = repo.FindByID(ctx, "404")
	var repoErr repositories.RepositoryError
	if !errors.As(err, &repoErr) || !repoErr.IsNotFound() {
		t.Fatalf("expected not-found repository error, got %v", err)
	}
}

func TestReviewRepositoryServesSeededReviews(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository(nil)

	reviews, err := repo.ListByProduct(ctx, "1")
	if err != nil {
		t.Fatalf("ListByProduct: %v", err)
	}
	if len(reviews) != 5 {
		t.Fatalf("expected 5 seeded reviews, got %d", len(reviews))
	}
	if reviews[0].ID != "1" || reviews[0].UserName != "김**" || reviews[0].Rating != 5 {
		t.Fatalf("unexpected first review: %#v", reviews[0])
	}

	none, err := repo.ListByProduct(ctx, "404")
	if err != nil {
		t.Fatalf("ListByProduct unknown: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no reviews for unknown product, got %d", len(none))
	}
}

func TestReviewRepositoryInsertPrepends(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository(nil)

	inserted, err := repo.Insert(ctx, domain.Review{
		ID:        "rev_new",
		ProductID: "1",
		UserName:  "한**",
		Rating:    4,
		Title:     "좋아요",
		Content:   "만족합니다.",
		CreatedAt: time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if inserted.ID != "rev_new" {
		t.Fatalf("unexpected inserted review: %#v", inserted)
	}

	reviews, err := repo.ListByProduct(ctx, "1")
	if err != nil {
		t.Fatalf("ListByProduct: %v", err)
	}
	if len(reviews) != 6 || reviews[0].ID != "rev_new" {
		t.Fatalf("expected new review first, got %#v", reviews[0])
	}

	_, err = repo.Insert(ctx, domain.Review{ID: "rev_bad"})
	var repoErr repositories.RepositoryError
	if !errors.As(err, &repoErr) || !repoErr.IsConflict() {
		t.Fatalf("expected conflict repository error, got %v", err)
	}
}

func TestUserRepositoryUpsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	profile := domain.UserProfile{
		Email:   "Shopper@Example.com",
		Name:    "김바이오",
		Phone:   "010-1234-5678",
		Address: "서울시 강남구",
	}

	stored, err := repo.Upsert(ctx, profile)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if stored.Email != "shopper@example.com" {
		t.Fatalf("expected normalised email, got %q", stored.Email)
	}

	found, err := repo.FindByEmail(ctx, "SHOPPER@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found.Name != profile.Name {
		t.Fatalf("unexpected profile: %#v", found)
	}
}
