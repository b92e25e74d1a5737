package payments

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	domain "github.com/biocart/api/internal/domain"
)

type stripePaymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeProviderConfig configures the StripeProvider.
type StripeProviderConfig struct {
	APIKey   string
	Currency string
	Backends *stripe.Backends
	Logger   Logger
	Clock    func() time.Time
	Rand     *rand.Rand
	Intents  stripePaymentIntentAPI
}

// StripeProvider implements the Provider interface by creating and confirming
// a Stripe PaymentIntent per Submit call. Receipts carry the same order
// identifier scheme as the simulated gateway so downstream consumers never
// observe a provider switch.
type StripeProvider struct {
	intents  stripePaymentIntentAPI
	currency string
	clock    func() time.Time
	logger   Logger

	mu  sync.Mutex
	rng *rand.Rand
}

var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider constructs a Stripe-backed Provider.
func NewStripeProvider(cfg StripeProviderConfig) (*StripeProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" && cfg.Intents == nil {
		return nil, errors.New("stripe: api key is required")
	}

	intents := cfg.Intents
	if intents == nil {
		sc := client.New(apiKey, cfg.Backends)
		intents = sc.PaymentIntents
	}

	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "krw"
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &StripeProvider{
		intents:  intents,
		currency: currency,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
		rng:    rng,
	}, nil
}

// Submit creates and confirms a PaymentIntent for the request total.
func (p *StripeProvider) Submit(ctx context.Context, req domain.PaymentRequest) (Result, error) {
	if p == nil {
		return Result{}, errors.New("stripe: provider is nil")
	}
	if req.Total <= 0 {
		return Result{}, errors.New("stripe: request total must be positive")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Total),
		Currency: stripe.String(p.currency),
		Confirm:  stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String(string(stripe.PaymentIntentAutomaticPaymentMethodsAllowRedirectsNever)),
		},
		Metadata: map[string]string{
			"userEmail":     strings.ToLower(strings.TrimSpace(req.UserEmail)),
			"paymentMethod": string(req.Method),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(ulid.Make().String())

	intent, err := p.intents.New(params)
	if err != nil {
		return Result{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		p.logger(ctx, "payments.stripe.intent.declined", map[string]any{
			"paymentIntent": intent.ID,
			"status":        intent.Status,
		})
		return Result{
			Success: false,
			Message: "결제에 실패했습니다. 다시 시도해주세요.",
		}, nil
	}

	now := p.clock()
	receipt := p.buildReceipt(now, req)

	p.logger(ctx, "payments.stripe.intent.succeeded", map[string]any{
		"paymentIntent": intent.ID,
		"orderId":       receipt.OrderID,
		"amount":        intent.Amount,
	})

	return Result{
		Success: true,
		Message: "결제가 완료되었습니다.",
		Receipt: receipt,
	}, nil
}

func (p *StripeProvider) buildReceipt(now time.Time, req domain.PaymentRequest) domain.PaymentReceipt {
	p.mu.Lock()
	suffix := randomBase36(p.rng, orderIDRandLen)
	deliveryDays := minDeliveryDays + p.rng.Intn(maxDeliveryDays-minDeliveryDays+1)
	p.mu.Unlock()

	millis := now.UnixMilli()

	receipt := domain.PaymentReceipt{
		OrderID:           fmt.Sprintf("%s_%d_%s", orderIDPrefix, millis, suffix),
		OrderNumber:       orderNumberPrefix + lastDigits(millis, 8),
		OrderDate:         now,
		Delivery:          req.Delivery,
		Method:            req.Method,
		Subtotal:          req.Subtotal,
		DeliveryFee:       req.DeliveryFee,
		Total:             req.Total,
		Status:            domain.PaymentStatusCompleted,
		EstimatedDelivery: now.AddDate(0, 0, deliveryDays),
	}
	if len(req.Items) > 0 {
		receipt.Items = make([]domain.OrderItem, len(req.Items))
		copy(receipt.Items, req.Items)
	}
	return receipt
}
