package services

import (
	"context"
	"errors"
	"time"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/repositories"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Product            = domain.Product
	Cart               = domain.Cart
	CartLine           = domain.CartLine
	DeliveryInfo       = domain.DeliveryInfo
	PaymentMethod      = domain.PaymentMethod
	PaymentRequest     = domain.PaymentRequest
	PaymentReceipt     = domain.PaymentReceipt
	OrderItem          = domain.OrderItem
	HistoryEntry       = domain.HistoryEntry
	ChallengeQuestion  = domain.ChallengeQuestion
	ChallengeAnswer    = domain.ChallengeAnswer
	ChallengeResult    = domain.ChallengeResult
	Review             = domain.Review
	ReviewSummary      = domain.ReviewSummary
	UserProfile        = domain.UserProfile
	SystemHealthReport = domain.SystemHealthReport
)

// Logger is the structured event logging contract shared by all services.
type Logger func(ctx context.Context, event string, fields map[string]any)

// CartObserver receives the updated cart after every successful mutation.
type CartObserver func(ctx context.Context, cart Cart)

// CartService manages the per-user cart ledger.
type CartService interface {
	GetCart(ctx context.Context, userEmail string) (Cart, error)
	AddItem(ctx context.Context, cmd AddCartItemCommand) (Cart, error)
	SetQuantity(ctx context.Context, cmd SetCartQuantityCommand) (Cart, error)
	RemoveItem(ctx context.Context, cmd RemoveCartItemCommand) (Cart, error)
	ClearCart(ctx context.Context, userEmail string) error
	RegisterObserver(observer CartObserver)
}

// AddCartItemCommand adds one unit of the product to the cart.
type AddCartItemCommand struct {
	UserEmail string
	ProductID string
}

// SetCartQuantityCommand sets the absolute quantity of a cart line.
type SetCartQuantityCommand struct {
	UserEmail string
	ProductID string
	Quantity  int
}

// RemoveCartItemCommand removes a cart line regardless of quantity.
type RemoveCartItemCommand struct {
	UserEmail string
	ProductID string
}

// CatalogService serves the seeded product catalog.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
}

// CheckoutService orchestrates the payment flow from cart snapshot to receipt.
type CheckoutService interface {
	Checkout(ctx context.Context, cmd CheckoutCommand) (CheckoutResult, error)
}

// CheckoutCommand carries the caller-supplied checkout fields. Amounts are
// computed by the service, never accepted from the caller.
type CheckoutCommand struct {
	UserEmail string
	Delivery  DeliveryInfo
	Method    PaymentMethod
}

// CheckoutResult reports the gateway outcome. Receipt is the zero value
// unless Success is true.
type CheckoutResult struct {
	Success bool
	Message string
	Receipt PaymentReceipt
}

// HistoryService owns the durable order history slot.
type HistoryService interface {
	Append(ctx context.Context, entry HistoryEntry) error
	GetAll(ctx context.Context) ([]HistoryEntry, error)
	GetByEmail(ctx context.Context, userEmail string) ([]HistoryEntry, error)
	GetByID(ctx context.Context, orderID string) (HistoryEntry, error)
	Search(ctx context.Context, cmd HistorySearchCommand) ([]HistoryEntry, error)
	Clear(ctx context.Context) error
}

// HistorySearchCommand filters history entries by product name substring,
// optionally scoped to one user. A blank query matches everything.
type HistorySearchCommand struct {
	Query     string
	UserEmail string
}

// ChallengeService scores the fixed health challenge questionnaire.
type ChallengeService interface {
	Questions(ctx context.Context) ([]ChallengeQuestion, error)
	Score(ctx context.Context, answers []ChallengeAnswer) (ChallengeResult, error)
}

// ReviewService serves and accepts product reviews.
type ReviewService interface {
	ListByProduct(ctx context.Context, productID string) ([]Review, ReviewSummary, error)
	Create(ctx context.Context, cmd CreateReviewCommand) (Review, error)
}

// CreateReviewCommand carries a new review authored by the session user.
type CreateReviewCommand struct {
	ProductID string
	UserEmail string
	UserName  string
	Rating    int
	Title     string
	Content   string
}

// UserService reads and updates the mock user profile.
type UserService interface {
	GetProfile(ctx context.Context, email string) (UserProfile, error)
	UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (UserProfile, error)
}

// UpdateProfileCommand updates the mutable profile fields. Nil pointers leave
// the stored value untouched.
type UpdateProfileCommand struct {
	Email   string
	Name    *string
	Phone   *string
	Address *string
}

// SystemService exposes dependency health for readiness probes.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}

// OrderCompletedMessage is the payload published after a successful checkout.
type OrderCompletedMessage struct {
	OrderID       string    `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	UserEmail     string    `json:"userEmail"`
	PaymentMethod string    `json:"paymentMethod"`
	Total         int64     `json:"total"`
	OrderedAt     time.Time `json:"orderedAt"`
}

// OrderEventPublisher delivers order lifecycle events to interested consumers.
type OrderEventPublisher interface {
	PublishOrderCompleted(ctx context.Context, msg OrderCompletedMessage) (string, error)
}

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}
