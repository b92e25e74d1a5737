package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/biocart/api/internal/repositories"
)

var errHistoryRepositoryRequired = errors.New("history service: repository is required")

// ErrHistoryInvalidInput indicates the caller supplied invalid input.
var ErrHistoryInvalidInput = errors.New("history service: invalid input")

// ErrHistoryNotFound indicates the requested entry does not exist.
var ErrHistoryNotFound = errors.New("history service: not found")

// HistoryServiceDeps wires the slot repository for history operations.
type HistoryServiceDeps struct {
	Repository repositories.HistoryRepository
	Logger     Logger
}

type historyService struct {
	repo   repositories.HistoryRepository
	logger Logger

	// slot access is serialized so concurrent checkouts keep the
	// newest-first append invariant
	mu sync.Mutex
}

// NewHistoryService constructs a HistoryService enforcing dependency validation.
func NewHistoryService(deps HistoryServiceDeps) (HistoryService, error) {
	if deps.Repository == nil {
		return nil, errHistoryRepositoryRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &historyService{
		repo:   deps.Repository,
		logger: logger,
	}, nil
}

// Append prepends the entry to the slot. Persistence failures degrade to a
// logged no-op; history loss never fails a completed payment.
func (s *historyService) Append(ctx context.Context, entry HistoryEntry) error {
	if s == nil || s.repo == nil {
		return nil
	}
	if strings.TrimSpace(entry.ID) == "" {
		return ErrHistoryInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Prepend(ctx, entry); err != nil {
		s.logger(ctx, "history.append_failed", map[string]any{
			"orderId":   entry.ID,
			"userEmail": entry.UserEmail,
			"error":     err.Error(),
		})
	}
	return nil
}

// GetAll returns every stored entry, newest first. Read failures degrade to
// an empty list.
func (s *historyService) GetAll(ctx context.Context) ([]HistoryEntry, error) {
	if s == nil || s.repo == nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx), nil
}

// GetByEmail returns the entries owned by the email, newest first. The match
// is case-insensitive and exact.
func (s *historyService) GetByEmail(ctx context.Context, userEmail string) ([]HistoryEntry, error) {
	email := strings.ToLower(strings.TrimSpace(userEmail))
	if email == "" {
		return nil, ErrHistoryInvalidInput
	}

	s.mu.Lock()
	entries := s.load(ctx)
	s.mu.Unlock()

	matched := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.ToLower(entry.UserEmail) == email {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// GetByID returns the entry whose id matches the order id.
func (s *historyService) GetByID(ctx context.Context, orderID string) (HistoryEntry, error) {
	id := strings.TrimSpace(orderID)
	if id == "" {
		return HistoryEntry{}, ErrHistoryInvalidInput
	}

	s.mu.Lock()
	entries := s.load(ctx)
	s.mu.Unlock()

	for _, entry := range entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return HistoryEntry{}, ErrHistoryNotFound
}

// Search filters entries by case-insensitive substring over item product
// names, optionally scoped to one user. A blank query matches everything.
func (s *historyService) Search(ctx context.Context, cmd HistorySearchCommand) ([]HistoryEntry, error) {
	s.mu.Lock()
	entries := s.load(ctx)
	s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(cmd.UserEmail))
	needle := strings.ToLower(strings.TrimSpace(cmd.Query))

	matched := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		if email != "" && strings.ToLower(entry.UserEmail) != email {
			continue
		}
		if needle != "" && !entryMatchesQuery(entry, needle) {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, nil
}

// Clear deletes the slot. Clearing an empty slot is a no-op.
func (s *historyService) Clear(ctx context.Context) error {
	if s == nil || s.repo == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		s.logger(ctx, "history.clear_failed", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

func (s *historyService) load(ctx context.Context) []HistoryEntry {
	entries, err := s.repo.Load(ctx)
	if err != nil {
		s.logger(ctx, "history.load_failed", map[string]any{
			"error": err.Error(),
		})
		return nil
	}
	return entries
}

func entryMatchesQuery(entry HistoryEntry, needle string) bool {
	for _, item := range entry.Receipt.Items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			return true
		}
	}
	return false
}
