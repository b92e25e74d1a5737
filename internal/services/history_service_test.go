package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/biocart/api/internal/domain"
)

func historyEntry(id, email string, itemNames ...string) domain.HistoryEntry {
	items := make([]domain.OrderItem, len(itemNames))
	for i, name := range itemNames {
		items[i] = domain.OrderItem{ProductID: name, Name: name, UnitPrice: 1000, Quantity: 1}
	}
	return domain.HistoryEntry{
		ID:        id,
		UserEmail: email,
		CreatedAt: time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC),
		Receipt: domain.PaymentReceipt{
			OrderID: id,
			Items:   items,
		},
	}
}

func newTestHistoryService(t *testing.T, repo *stubHistoryRepository) HistoryService {
	t.Helper()
	service, err := NewHistoryService(HistoryServiceDeps{Repository: repo})
	if err != nil {
		t.Fatalf("NewHistoryService: %v", err)
	}
	return service
}

func TestHistoryServiceGetByEmailCaseInsensitive(t *testing.T) {
	repo := &stubHistoryRepository{
		loadFunc: func(context.Context) ([]domain.HistoryEntry, error) {
			return []domain.HistoryEntry{
				historyEntry("ORDER_2", "User@Example.com", "국산 사과"),
				historyEntry("ORDER_1", "other@example.com", "유기농 토마토"),
			}, nil
		},
	}

	service := newTestHistoryService(t, repo)

	entries, err := service.GetByEmail(context.Background(), "user@EXAMPLE.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "ORDER_2" {
		t.Fatalf("unexpected entries %#v", entries)
	}
}

func TestHistoryServiceReadErrorDegradesToEmpty(t *testing.T) {
	repo := &stubHistoryRepository{
		loadFunc: func(context.Context) ([]domain.HistoryEntry, error) {
			return nil, errors.New("backend down")
		},
	}

	service := newTestHistoryService(t, repo)

	entries, err := service.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty degraded result, got %#v", entries)
	}

	if _, err := service.GetByID(context.Background(), "ORDER_1"); !errors.Is(err, ErrHistoryNotFound) {
		t.Fatalf("expected ErrHistoryNotFound, got %v", err)
	}
}

func TestHistoryServiceAppendFailureIsLoggedNoOp(t *testing.T) {
	var events []string
	repo := &stubHistoryRepository{
		prependFunc: func(context.Context, domain.HistoryEntry) error {
			return errors.New("write failed")
		},
	}

	service, err := NewHistoryService(HistoryServiceDeps{
		Repository: repo,
		Logger: func(_ context.Context, event string, _ map[string]any) {
			events = append(events, event)
		},
	})
	if err != nil {
		t.Fatalf("NewHistoryService: %v", err)
	}

	if err := service.Append(context.Background(), historyEntry("ORDER_1", "user@example.com")); err != nil {
		t.Fatalf("Append must not propagate write errors, got %v", err)
	}
	if len(events) != 1 || events[0] != "history.append_failed" {
		t.Fatalf("expected append failure log, got %v", events)
	}
}

func TestHistoryServiceGetByID(t *testing.T) {
	repo := &stubHistoryRepository{
		loadFunc: func(context.Context) ([]domain.HistoryEntry, error) {
			return []domain.HistoryEntry{
				historyEntry("ORDER_2", "user@example.com"),
				historyEntry("ORDER_1", "user@example.com"),
			}, nil
		},
	}

	service := newTestHistoryService(t, repo)

	entry, err := service.GetByID(context.Background(), "ORDER_1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if entry.ID != "ORDER_1" {
		t.Fatalf("unexpected entry %#v", entry)
	}

	if _, err := service.GetByID(context.Background(), "ORDER_404"); !errors.Is(err, ErrHistoryNotFound) {
		t.Fatalf("expected ErrHistoryNotFound, got %v", err)
	}
	if _, err := service.GetByID(context.Background(), " "); !errors.Is(err, ErrHistoryInvalidInput) {
		t.Fatalf("expected ErrHistoryInvalidInput, got %v", err)
	}
}

func TestHistoryServiceSearch(t *testing.T) {
	repo := &stubHistoryRepository{
		loadFunc: func(context.Context) ([]domain.HistoryEntry, error) {
			return []domain.HistoryEntry{
				historyEntry("ORDER_3", "user@example.com", "유기농 토마토", "국산 배"),
				historyEntry("ORDER_2", "other@example.com", "유기농 당근"),
				historyEntry("ORDER_1", "user@example.com", "신선한 바나나"),
			}, nil
		},
	}

	service := newTestHistoryService(t, repo)

	matched, err := service.Search(context.Background(), HistorySearchCommand{Query: "유기농"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matched) != 2 || matched[0].ID != "ORDER_3" || matched[1].ID != "ORDER_2" {
		t.Fatalf("unexpected matches %#v", matched)
	}

	scoped, err := service.Search(context.Background(), HistorySearchCommand{Query: "유기농", UserEmail: "USER@example.com"})
	if err != nil {
		t.Fatalf("Search scoped: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != "ORDER_3" {
		t.Fatalf("unexpected scoped matches %#v", scoped)
	}

	all, err := service.Search(context.Background(), HistorySearchCommand{Query: "  "})
	if err != nil {
		t.Fatalf("Search blank: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected blank query to match everything, got %d", len(all))
	}
}

func TestHistoryServiceClearFailureIsLoggedNoOp(t *testing.T) {
	var events []string
	repo := &stubHistoryRepository{
		clearFunc: func(context.Context) error {
			return errors.New("delete failed")
		},
	}

	service, err := NewHistoryService(HistoryServiceDeps{
		Repository: repo,
		Logger: func(_ context.Context, event string, _ map[string]any) {
			events = append(events, event)
		},
	})
	if err != nil {
		t.Fatalf("NewHistoryService: %v", err)
	}

	if err := service.Clear(context.Background()); err != nil {
		t.Fatalf("Clear must not propagate delete errors, got %v", err)
	}
	if len(events) != 1 || events[0] != "history.clear_failed" {
		t.Fatalf("expected clear failure log, got %v", events)
	}
}
