package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/biocart/api/internal/domain"
	pfirestore "github.com/biocart/api/internal/platform/firestore"
	"github.com/biocart/api/internal/repositories"
)

const (
	defaultHistoryCollection = "storage"
	defaultHistorySlotID     = "payment_history"
)

// HistoryRepository stores the order history list in a single Firestore slot
// document. The slot is read and replaced as a whole; Prepend runs inside a
// transaction so concurrent checkouts never drop entries.
type HistoryRepository struct {
	provider   *pfirestore.Provider
	base       *pfirestore.BaseRepository[historySlotDocument]
	collection string
	slotID     string
}

var _ repositories.HistoryRepository = (*HistoryRepository)(nil)

// HistoryOption customises the history repository.
type HistoryOption func(*HistoryRepository)

// WithHistorySlot overrides the slot collection and document identifier.
func WithHistorySlot(collection, slotID string) HistoryOption {
	return func(r *HistoryRepository) {
		if strings.TrimSpace(collection) != "" {
			r.collection = strings.TrimSpace(collection)
		}
		if strings.TrimSpace(slotID) != "" {
			r.slotID = strings.TrimSpace(slotID)
		}
	}
}

// NewHistoryRepository constructs a Firestore-backed history repository.
func NewHistoryRepository(provider *pfirestore.Provider, opts ...HistoryOption) (*HistoryRepository, error) {
	if provider == nil {
		return nil, errors.New("history repository requires firestore provider")
	}
	repo := &HistoryRepository{
		provider:   provider,
		collection: defaultHistoryCollection,
		slotID:     defaultHistorySlotID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	repo.base = pfirestore.NewBaseRepository[historySlotDocument](provider, repo.collection, nil, nil)
	return repo, nil
}

// Load returns the slot contents. A missing slot document decodes as empty.
func (r *HistoryRepository) Load(ctx context.Context) ([]domain.HistoryEntry, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("history repository not initialised")
	}

	doc, err := r.base.Get(ctx, r.slotID)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return nil, nil
		}
		return nil, err
	}
	return doc.Data.toDomain(), nil
}

// Store replaces the slot contents with the provided entries.
func (r *HistoryRepository) Store(ctx context.Context, entries []domain.HistoryEntry) error {
	if r == nil || r.base == nil {
		return errors.New("history repository not initialised")
	}
	_, err := r.base.Set(ctx, r.slotID, newHistorySlotDocument(entries))
	return err
}

// Prepend inserts the entry at the head of the slot transactionally.
func (r *HistoryRepository) Prepend(ctx context.Context, entry domain.HistoryEntry) error {
	if r == nil || r.provider == nil {
		return errors.New("history repository not initialised")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	ref := client.Collection(r.collection).Doc(r.slotID)

	return pfirestore.RunTransaction(ctx, client, func(ctx context.Context, tx *firestore.Transaction) error {
		var slot historySlotDocument
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			if err := snap.DataTo(&slot); err != nil {
				return err
			}
		case status.Code(err) == codes.NotFound:
			// first entry seeds the slot
		default:
			return err
		}

		updated := make([]historyEntryDocument, 0, len(slot.Entries)+1)
		updated = append(updated, newHistoryEntryDocument(entry))
		updated = append(updated, slot.Entries...)

		return tx.Set(ref, historySlotDocument{
			Entries:   updated,
			UpdatedAt: entry.CreatedAt.UTC(),
		})
	})
}

// Clear empties the slot.
func (r *HistoryRepository) Clear(ctx context.Context) error {
	return r.Store(ctx, nil)
}

type historySlotDocument struct {
	Entries   []historyEntryDocument `firestore:"entries"`
	UpdatedAt time.Time              `firestore:"updatedAt"`
}

type historyEntryDocument struct {
	ID        string          `firestore:"id"`
	UserEmail string          `firestore:"userEmail"`
	CreatedAt time.Time       `firestore:"createdAt"`
	Receipt   receiptDocument `firestore:"receipt"`
}

type receiptDocument struct {
	OrderID           string                 `firestore:"orderId"`
	OrderNumber       string                 `firestore:"orderNumber"`
	OrderDate         time.Time              `firestore:"orderDate"`
	Items             []orderItemDocument    `firestore:"items"`
	Delivery          deliveryDocument       `firestore:"delivery"`
	Method            string                 `firestore:"paymentMethod"`
	Subtotal          int64                  `firestore:"subtotal"`
	DeliveryFee       int64                  `firestore:"deliveryFee"`
	Total             int64                  `firestore:"total"`
	Status            string                 `firestore:"status"`
	EstimatedDelivery time.Time              `firestore:"estimatedDelivery"`
}

type orderItemDocument struct {
	ProductID string `firestore:"productId"`
	Name      string `firestore:"name"`
	UnitPrice int64  `firestore:"unitPrice"`
	Quantity  int    `firestore:"quantity"`
	Image     string `firestore:"image,omitempty"`
}

type deliveryDocument struct {
	RecipientName string `firestore:"recipientName"`
	Phone         string `firestore:"phone"`
	ZipCode       string `firestore:"zipCode"`
	Address       string `firestore:"address"`
	AddressDetail string `firestore:"addressDetail,omitempty"`
}

func newHistorySlotDocument(entries []domain.HistoryEntry) historySlotDocument {
	slot := historySlotDocument{UpdatedAt: time.Now().UTC()}
	if len(entries) > 0 {
		slot.Entries = make([]historyEntryDocument, len(entries))
		for i, entry := range entries {
			slot.Entries[i] = newHistoryEntryDocument(entry)
		}
	}
	return slot
}

func newHistoryEntryDocument(entry domain.HistoryEntry) historyEntryDocument {
	doc := historyEntryDocument{
		ID:        entry.ID,
		UserEmail: normaliseEmail(entry.UserEmail),
		CreatedAt: entry.CreatedAt.UTC(),
		Receipt: receiptDocument{
			OrderID:     entry.Receipt.OrderID,
			OrderNumber: entry.Receipt.OrderNumber,
			OrderDate:   entry.Receipt.OrderDate.UTC(),
			Delivery: deliveryDocument{
				RecipientName: entry.Receipt.Delivery.RecipientName,
				Phone:         entry.Receipt.Delivery.Phone,
				ZipCode:       entry.Receipt.Delivery.ZipCode,
				Address:       entry.Receipt.Delivery.Address,
				AddressDetail: entry.Receipt.Delivery.AddressDetail,
			},
			Method:            string(entry.Receipt.Method),
			Subtotal:          entry.Receipt.Subtotal,
			DeliveryFee:       entry.Receipt.DeliveryFee,
			Total:             entry.Receipt.Total,
			Status:            string(entry.Receipt.Status),
			EstimatedDelivery: entry.Receipt.EstimatedDelivery.UTC(),
		},
	}
	if len(entry.Receipt.Items) > 0 {
		doc.Receipt.Items = make([]orderItemDocument, len(entry.Receipt.Items))
		for i, item := range entry.Receipt.Items {
			doc.Receipt.Items[i] = orderItemDocument{
				ProductID: item.ProductID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
				Image:     item.Image,
			}
		}
	}
	return doc
}

func (d historySlotDocument) toDomain() []domain.HistoryEntry {
	if len(d.Entries) == 0 {
		return nil
	}
	entries := make([]domain.HistoryEntry, len(d.Entries))
	for i, doc := range d.Entries {
		entries[i] = doc.toDomain()
	}
	return entries
}

func (d historyEntryDocument) toDomain() domain.HistoryEntry {
	entry := domain.HistoryEntry{
		ID:        d.ID,
		UserEmail: d.UserEmail,
		CreatedAt: d.CreatedAt,
		Receipt: domain.PaymentReceipt{
			OrderID:     d.Receipt.OrderID,
			OrderNumber: d.Receipt.OrderNumber,
			OrderDate:   d.Receipt.OrderDate,
			Delivery: domain.DeliveryInfo{
				RecipientName: d.Receipt.Delivery.RecipientName,
				Phone:         d.Receipt.Delivery.Phone,
				ZipCode:       d.Receipt.Delivery.ZipCode,
				Address:       d.Receipt.Delivery.Address,
				AddressDetail: d.Receipt.Delivery.AddressDetail,
			},
			Method:            domain.PaymentMethod(d.Receipt.Method),
			Subtotal:          d.Receipt.Subtotal,
			DeliveryFee:       d.Receipt.DeliveryFee,
			Total:             d.Receipt.Total,
			Status:            domain.PaymentStatus(d.Receipt.Status),
			EstimatedDelivery: d.Receipt.EstimatedDelivery,
		},
	}
	if len(d.Receipt.Items) > 0 {
		entry.Receipt.Items = make([]domain.OrderItem, len(d.Receipt.Items))
		for i, item := range d.Receipt.Items {
			entry.Receipt.Items[i] = domain.OrderItem{
				ProductID: item.ProductID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
				Image:     item.Image,
			}
		}
	}
	return entry
}
