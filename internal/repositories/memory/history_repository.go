package memory

import (
	"context"
	"sync"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/repositories"
)

// HistoryRepository keeps the order history slot in process memory. The slot
// holds the full newest-first list and is replaced as a whole on writes.
type HistoryRepository struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
}

var _ repositories.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository constructs an empty in-memory history repository.
func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

// Load returns the stored entries, newest first.
func (r *HistoryRepository) Load(_ context.Context) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneEntries(r.entries), nil
}

// Store replaces the slot contents with the provided entries.
func (r *HistoryRepository) Store(_ context.Context, entries []domain.HistoryEntry) error {
	cloned := cloneEntries(entries)

	r.mu.Lock()
	r.entries = cloned
	r.mu.Unlock()
	return nil
}

// Prepend inserts the entry at the head of the slot.
func (r *HistoryRepository) Prepend(_ context.Context, entry domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := make([]domain.HistoryEntry, 0, len(r.entries)+1)
	updated = append(updated, cloneEntry(entry))
	updated = append(updated, r.entries...)
	r.entries = updated
	return nil
}

// Clear empties the slot.
func (r *HistoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
	return nil
}

func cloneEntries(entries []domain.HistoryEntry) []domain.HistoryEntry {
	if len(entries) == 0 {
		return nil
	}
	cloned := make([]domain.HistoryEntry, len(entries))
	for i, entry := range entries {
		cloned[i] = cloneEntry(entry)
	}
	return cloned
}

func cloneEntry(entry domain.HistoryEntry) domain.HistoryEntry {
	cloned := entry
	if len(entry.Receipt.Items) > 0 {
		items := make([]domain.OrderItem, len(entry.Receipt.Items))
		copy(items, entry.Receipt.Items)
		cloned.Receipt.Items = items
	}
	return cloned
}
