package payments

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	domain "github.com/biocart/api/internal/domain"
)

type stubProvider struct {
	submitFn func(ctx context.Context, req domain.PaymentRequest) (Result, error)
}

func (s *stubProvider) Submit(ctx context.Context, req domain.PaymentRequest) (Result, error) {
	return s.submitFn(ctx, req)
}

func TestManagerRoutesToPreferredProvider(t *testing.T) {
	called := ""
	providers := map[string]Provider{
		"mock": &stubProvider{submitFn: func(context.Context, domain.PaymentRequest) (Result, error) {
			called = "mock"
			return Result{Success: true}, nil
		}},
		"stripe": &stubProvider{submitFn: func(context.Context, domain.PaymentRequest) (Result, error) {
			called = "stripe"
			return Result{Success: true}, nil
		}},
	}

	manager, err := NewManager(providers)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := manager.Submit(context.Background(), PaymentContext{PreferredProvider: "stripe"}, domain.PaymentRequest{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if called != "stripe" {
		t.Fatalf("expected stripe provider, got %q", called)
	}

	if _, err := manager.Submit(context.Background(), PaymentContext{}, domain.PaymentRequest{}); err != nil {
		t.Fatalf("Submit default: %v", err)
	}
	if called != "mock" {
		t.Fatalf("expected mock default provider, got %q", called)
	}
}

func TestManagerUnknownProviderFallsBackToDefault(t *testing.T) {
	providers := map[string]Provider{
		"mock": &stubProvider{submitFn: func(context.Context, domain.PaymentRequest) (Result, error) {
			return Result{Success: true}, nil
		}},
		"stripe": &stubProvider{submitFn: func(context.Context, domain.PaymentRequest) (Result, error) {
			return Result{Success: true}, nil
		}},
	}

	manager, err := NewManager(providers, WithDefaultProvider("missing"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	_, err = manager.Submit(context.Background(), PaymentContext{PreferredProvider: "nope"}, domain.PaymentRequest{})
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestMockProviderApprovedReceipt(t *testing.T) {
	now := time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC)
	provider, err := NewMockProvider(MockProviderConfig{
		SuccessRate: 1,
		Latency:     -1,
		Clock:       func() time.Time { return now },
		Rand:        rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("NewMockProvider: %v", err)
	}

	req := domain.PaymentRequest{
		UserEmail: "user@example.com",
		Items: []domain.OrderItem{
			{ProductID: "1", Name: "유기농 토마토", UnitPrice: 4500, Quantity: 2},
		},
		Delivery: domain.DeliveryInfo{
			RecipientName: "김바이오",
			Phone:         "010-1234-5678",
			ZipCode:       "06236",
			Address:       "서울시 강남구",
			AddressDetail: "101동 202호",
		},
		Method:      domain.PaymentMethodCard,
		Subtotal:    9000,
		DeliveryFee: 3000,
		Total:       12000,
	}

	result, err := provider.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %#v", result)
	}

	receipt := result.Receipt
	millis := now.UnixMilli()
	wantPrefix := fmt.Sprintf("ORDER_%d_", millis)
	if !strings.HasPrefix(receipt.OrderID, wantPrefix) || len(receipt.OrderID) != len(wantPrefix)+9 {
		t.Fatalf("unexpected order id %q", receipt.OrderID)
	}
	if receipt.OrderNumber != "BIOC"+lastDigits(millis, 8) {
		t.Fatalf("unexpected order number %q", receipt.OrderNumber)
	}
	if receipt.Status != domain.PaymentStatusCompleted {
		t.Fatalf("unexpected status %q", receipt.Status)
	}
	if receipt.Subtotal != 9000 || receipt.DeliveryFee != 3000 || receipt.Total != 12000 {
		t.Fatalf("amounts not echoed: %#v", receipt)
	}
	days := int(receipt.EstimatedDelivery.Sub(now).Hours() / 24)
	if days < 3 || days > 5 {
		t.Fatalf("estimated delivery offset out of range: %d days", days)
	}
	if len(receipt.Items) != 1 || receipt.Items[0].Name != "유기농 토마토" {
		t.Fatalf("items not echoed: %#v", receipt.Items)
	}
}

func TestMockProviderDeclineReturnsNoReceipt(t *testing.T) {
	provider, err := NewMockProvider(MockProviderConfig{
		SuccessRate: 0.0000001,
		Latency:     -1,
		Rand:        rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("NewMockProvider: %v", err)
	}

	result, err := provider.Submit(context.Background(), domain.PaymentRequest{Total: 12000})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Success {
		t.Fatal("expected decline")
	}
	if result.Message == "" {
		t.Fatal("expected retry message")
	}
	if result.Receipt.OrderID != "" {
		t.Fatalf("expected zero receipt, got %#v", result.Receipt)
	}
}

func TestMockProviderSuccessRateConverges(t *testing.T) {
	provider, err := NewMockProvider(MockProviderConfig{
		SuccessRate: 0.9,
		Latency:     -1,
		Rand:        rand.New(rand.NewSource(42)),
	})
	if err != nil {
		t.Fatalf("NewMockProvider: %v", err)
	}

	const attempts = 20000
	successes := 0
	for i := 0; i < attempts; i++ {
		result, err := provider.Submit(context.Background(), domain.PaymentRequest{Total: 12000})
		if err != nil {
			t.Fatalf("Submit #%d: %v", i, err)
		}
		if result.Success {
			successes++
		}
	}

	rate := float64(successes) / float64(attempts)
	if rate < 0.88 || rate > 0.92 {
		t.Fatalf("observed success rate %.4f outside [0.88, 0.92]", rate)
	}
}

func TestMockProviderHonoursContextDuringLatency(t *testing.T) {
	provider, err := NewMockProvider(MockProviderConfig{
		SuccessRate: 1,
		Latency:     time.Minute,
	})
	if err != nil {
		t.Fatalf("NewMockProvider: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = provider.Submit(ctx, domain.PaymentRequest{Total: 1000})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestMockProviderSuccessRateOutOfRange(t *testing.T) {
	if _, err := NewMockProvider(MockProviderConfig{SuccessRate: 1.5}); err == nil {
		t.Fatal("expected error for out-of-range success rate")
	}
}
