package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/biocart/api/internal/domain"
	pfirestore "github.com/biocart/api/internal/platform/firestore"
	"github.com/biocart/api/internal/repositories"
)

const cartCollection = "carts"

// CartRepository persists per-user carts within Firestore, one document per
// user keyed by the normalized email.
type CartRepository struct {
	base *pfirestore.BaseRepository[cartDocument]
}

var _ repositories.CartRepository = (*CartRepository)(nil)

// NewCartRepository constructs a Firestore-backed cart repository.
func NewCartRepository(provider *pfirestore.Provider) (*CartRepository, error) {
	if provider == nil {
		return nil, errors.New("cart repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[cartDocument](provider, cartCollection, nil, nil)
	return &CartRepository{base: base}, nil
}

// Get loads the cart stored for the user.
func (r *CartRepository) Get(ctx context.Context, userEmail string) (domain.Cart, error) {
	if r == nil || r.base == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}
	key := normaliseEmail(userEmail)
	if key == "" {
		return domain.Cart{}, errors.New("cart repository: user email is required")
	}

	doc, err := r.base.Get(ctx, key)
	if err != nil {
		return domain.Cart{}, err
	}
	return doc.Data.toDomain(key, doc.UpdateTime), nil
}

// Upsert replaces the stored cart for the user.
func (r *CartRepository) Upsert(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	if r == nil || r.base == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}
	key := normaliseEmail(cart.UserEmail)
	if key == "" {
		return domain.Cart{}, errors.New("cart repository: user email is required")
	}

	doc := newCartDocument(cart)
	result, err := r.base.Set(ctx, key, doc)
	if err != nil {
		return domain.Cart{}, err
	}
	return doc.toDomain(key, result.UpdateTime), nil
}

// Delete removes the cart document. Deleting an absent cart is a no-op.
func (r *CartRepository) Delete(ctx context.Context, userEmail string) error {
	if r == nil || r.base == nil {
		return errors.New("cart repository not initialised")
	}
	key := normaliseEmail(userEmail)
	if key == "" {
		return errors.New("cart repository: user email is required")
	}

	ref, err := r.base.DocumentRef(ctx, key)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return pfirestore.WrapError("carts.delete", err)
	}
	return nil
}

type cartDocument struct {
	UserEmail string             `firestore:"userEmail"`
	Lines     []cartLineDocument `firestore:"lines"`
	UpdatedAt time.Time          `firestore:"updatedAt"`
}

type cartLineDocument struct {
	ProductID string    `firestore:"productId"`
	Name      string    `firestore:"name"`
	UnitPrice int64     `firestore:"unitPrice"`
	Quantity  int       `firestore:"quantity"`
	Image     string    `firestore:"image,omitempty"`
	AddedAt   time.Time `firestore:"addedAt"`
}

func newCartDocument(cart domain.Cart) cartDocument {
	doc := cartDocument{
		UserEmail: normaliseEmail(cart.UserEmail),
		UpdatedAt: cart.UpdatedAt.UTC(),
	}
	if len(cart.Lines) > 0 {
		doc.Lines = make([]cartLineDocument, len(cart.Lines))
		for i, line := range cart.Lines {
			doc.Lines[i] = cartLineDocument{
				ProductID: line.ProductID,
				Name:      line.Name,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
				Image:     line.Image,
				AddedAt:   line.AddedAt.UTC(),
			}
		}
	}
	return doc
}

func (d cartDocument) toDomain(userEmail string, updateTime time.Time) domain.Cart {
	cart := domain.Cart{
		UserEmail: userEmail,
		UpdatedAt: d.UpdatedAt,
	}
	if cart.UpdatedAt.IsZero() {
		cart.UpdatedAt = updateTime
	}
	if len(d.Lines) > 0 {
		cart.Lines = make([]domain.CartLine, len(d.Lines))
		for i, line := range d.Lines {
			cart.Lines[i] = domain.CartLine{
				ProductID: line.ProductID,
				Name:      line.Name,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
				Image:     line.Image,
				AddedAt:   line.AddedAt,
			}
		}
	}
	return cart
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
