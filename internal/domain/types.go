package domain

import (
	"time"
)

// Product is immutable catalog reference data; carts and receipts snapshot the
// fields they need rather than holding references.
type Product struct {
	ID          string
	Name        string
	Price       int64
	Stock       int
	Category    string
	Description string
	Image       string
}

// CartLine stores a single product entry within a cart. Quantity is always
// positive; a line that would drop to zero is removed instead.
type CartLine struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int
	Image     string
	AddedAt   time.Time
}

// Cart aggregates the mutable shopping cart state for a user. Product IDs are
// unique across lines; ordering is preserved for display only.
type Cart struct {
	UserEmail string
	Lines     []CartLine
	UpdatedAt time.Time
}

// TotalItems returns the sum of quantities across all lines.
func (c Cart) TotalItems() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice returns the sum of unit price times quantity across all lines.
func (c Cart) TotalPrice() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.UnitPrice * int64(line.Quantity)
	}
	return total
}

// DeliveryInfo carries the recipient fields required before checkout. All
// fields must be non-empty when a payment is submitted.
type DeliveryInfo struct {
	RecipientName string
	Phone         string
	ZipCode       string
	Address       string
	AddressDetail string
}

// PaymentMethod enumerates the supported checkout payment methods.
type PaymentMethod string

const (
	// PaymentMethodCard pays by credit or debit card.
	PaymentMethodCard PaymentMethod = "card"
	// PaymentMethodBank pays by bank transfer.
	PaymentMethodBank PaymentMethod = "bank"
	// PaymentMethodKakao pays through Kakao Pay.
	PaymentMethodKakao PaymentMethod = "kakao"
)

// PaymentStatus describes the terminal state recorded on a receipt.
type PaymentStatus string

const (
	// PaymentStatusCompleted indicates the payment settled successfully.
	PaymentStatusCompleted PaymentStatus = "completed"
	// PaymentStatusPending indicates the payment is awaiting confirmation.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusFailed indicates the payment did not settle.
	PaymentStatusFailed PaymentStatus = "failed"
)

// OrderItem mirrors a cart line at the time of checkout. Denormalized so later
// catalog changes never affect historical receipts.
type OrderItem struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int
	Image     string
}

// PaymentRequest is the snapshot submitted to the payment gateway. Amounts are
// computed once by the pricing policy before submission and are never
// re-derived afterwards.
type PaymentRequest struct {
	UserEmail   string
	Items       []OrderItem
	Delivery    DeliveryInfo
	Method      PaymentMethod
	Subtotal    int64
	DeliveryFee int64
	Total       int64
}

// PaymentReceipt is the immutable record created once per successful payment.
type PaymentReceipt struct {
	OrderID           string
	OrderNumber       string
	OrderDate         time.Time
	Items             []OrderItem
	Delivery          DeliveryInfo
	Method            PaymentMethod
	Subtotal          int64
	DeliveryFee       int64
	Total             int64
	Status            PaymentStatus
	EstimatedDelivery time.Time
}

// HistoryEntry wraps a receipt with its owner and storage metadata. Entries
// are created exactly once at successful-payment time and never updated.
type HistoryEntry struct {
	ID        string
	Receipt   PaymentReceipt
	UserEmail string
	CreatedAt time.Time
}

// ChallengeQuestion is one item of the fixed ordered question set.
type ChallengeQuestion struct {
	ID       int
	Text     string
	Category string
}

// ChallengeAnswer pairs a question with its Likert score in [1,5].
type ChallengeAnswer struct {
	QuestionID int
	Score      int
}

// ChallengeTier is one of the five ordered health-classification buckets.
type ChallengeTier string

const (
	// ChallengeTierExcellent covers averages of 4.5 and above.
	ChallengeTierExcellent ChallengeTier = "excellent"
	// ChallengeTierGood covers averages in [3.5, 4.5).
	ChallengeTierGood ChallengeTier = "good"
	// ChallengeTierAverage covers averages in [2.5, 3.5).
	ChallengeTierAverage ChallengeTier = "average"
	// ChallengeTierPoor covers averages in [1.5, 2.5).
	ChallengeTierPoor ChallengeTier = "poor"
	// ChallengeTierVeryPoor covers averages below 1.5.
	ChallengeTierVeryPoor ChallengeTier = "very_poor"
)

// ChallengeResult is derived once from a complete answer set.
type ChallengeResult struct {
	TotalScore      int
	Average         float64
	Tier            ChallengeTier
	Analysis        string
	Recommendations []string
	ScoredAt        time.Time
}

// HealthStatus enumerates readiness states for dependency checks.
type HealthStatus string

const (
	// HealthStatusOK indicates the dependency responded within limits.
	HealthStatusOK HealthStatus = "ok"
	// HealthStatusDegraded indicates the dependency responded with an error.
	HealthStatusDegraded HealthStatus = "degraded"
	// HealthStatusError indicates the dependency timed out or was cancelled.
	HealthStatusError HealthStatus = "error"
)

// SystemHealthCheck captures a single dependency probe result.
type SystemHealthCheck struct {
	Status    HealthStatus
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency probe results for readiness endpoints.
type SystemHealthReport struct {
	Status      HealthStatus
	Checks      map[string]SystemHealthCheck
	Version     string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}

// Review is a product review shown on the product detail page. Content is
// stored sanitised and the author name is stored masked.
type Review struct {
	ID        string
	ProductID string
	UserEmail string
	UserName  string
	Rating    int
	Title     string
	Content   string
	CreatedAt time.Time
	Images    []string
	Helpful   int
	Verified  bool
}

// ReviewSummary aggregates the ratings recorded for one product.
type ReviewSummary struct {
	AverageRating float64
	TotalReviews  int
	Distribution  map[int]int
}

// UserProfile stores the mutable account fields scoped by email.
type UserProfile struct {
	Email     string
	Name      string
	Phone     string
	Address   string
	UpdatedAt time.Time
}
