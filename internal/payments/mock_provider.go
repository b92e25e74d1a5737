package payments

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	domain "github.com/biocart/api/internal/domain"
)

const (
	defaultSuccessRate      = 0.9
	defaultSimulatedLatency = 2 * time.Second

	orderIDPrefix     = "ORDER"
	orderNumberPrefix = "BIOC"

	minDeliveryDays = 3
	maxDeliveryDays = 5

	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	orderIDRandLen = 9
)

// MockProviderConfig configures the simulated payment gateway.
type MockProviderConfig struct {
	// SuccessRate is the Bernoulli success probability in [0, 1]. Zero means
	// unset and falls back to the default of 0.9.
	SuccessRate float64
	// Latency is the simulated gateway round trip. Negative disables the
	// sleep; zero falls back to the default of 2s.
	Latency time.Duration
	Clock   func() time.Time
	Rand    *rand.Rand
	Logger  Logger
}

// MockProvider simulates a payment gateway with configurable latency and a
// Bernoulli success trial. One Submit call is exactly one attempt.
type MockProvider struct {
	successRate float64
	latency     time.Duration
	clock       func() time.Time
	logger      Logger

	mu  sync.Mutex
	rng *rand.Rand
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider constructs the simulated gateway.
func NewMockProvider(cfg MockProviderConfig) (*MockProvider, error) {
	successRate := cfg.SuccessRate
	if successRate == 0 {
		successRate = defaultSuccessRate
	}
	if successRate < 0 || successRate > 1 {
		return nil, fmt.Errorf("payments: success rate %v out of range", cfg.SuccessRate)
	}

	latency := cfg.Latency
	if latency == 0 {
		latency = defaultSimulatedLatency
	}
	if latency < 0 {
		latency = 0
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

	return &MockProvider{
		successRate: successRate,
		latency:     latency,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
		rng:    rng,
	}, nil
}

// Submit simulates one payment attempt against the gateway.
func (p *MockProvider) Submit(ctx context.Context, req domain.PaymentRequest) (Result, error) {
	if p == nil {
		return Result{}, errors.New("payments: mock provider is nil")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}

	if !p.trial() {
		p.logger(ctx, "payments.mock.declined", map[string]any{
			"userEmail": req.UserEmail,
			"total":     req.Total,
		})
		return Result{
			Success: false,
			Message: "결제에 실패했습니다. 다시 시도해주세요.",
		}, nil
	}

	now := p.clock()
	receipt := p.buildReceipt(now, req)

	p.logger(ctx, "payments.mock.approved", map[string]any{
		"orderId":     receipt.OrderID,
		"orderNumber": receipt.OrderNumber,
		"total":       receipt.Total,
	})

	return Result{
		Success: true,
		Message: "결제가 완료되었습니다.",
		Receipt: receipt,
	}, nil
}

func (p *MockProvider) trial() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() < p.successRate
}

func (p *MockProvider) buildReceipt(now time.Time, req domain.PaymentRequest) domain.PaymentReceipt {
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

func randomBase36(rng *rand.Rand, length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(base36Alphabet[rng.Intn(len(base36Alphabet))])
	}
	return sb.String()
}

func lastDigits(value int64, n int) string {
	digits := fmt.Sprintf("%d", value)
	if len(digits) <= n {
		return digits
	}
	return digits[len(digits)-n:]
}
