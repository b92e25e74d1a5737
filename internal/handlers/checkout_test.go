package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/platform/auth"
	"github.com/biocart/api/internal/services"
)

const checkoutBody = `{
	"delivery": {
		"recipientName": "김바이오",
		"phone": "010-1234-5678",
		"zipCode": "06134",
		"address": "서울시 강남구",
		"addressDetail": "101동 202호"
	},
	"paymentMethod": "card"
}`

func newCheckoutRouter(t *testing.T, checkout services.CheckoutService) (http.Handler, *auth.SessionManager) {
	t.Helper()
	manager := newTestSessionManager(t)
	router := NewRouter(WithCheckoutRoutes(NewCheckoutHandlers(manager, checkout).Routes))
	return router, manager
}

func TestCheckoutSuccessReturnsReceipt(t *testing.T) {
	var gotCmd services.CheckoutCommand
	checkout := &stubCheckoutService{
		checkoutFunc: func(_ context.Context, cmd services.CheckoutCommand) (services.CheckoutResult, error) {
			gotCmd = cmd
			return services.CheckoutResult{
				Success: true,
				Message: "결제가 완료되었습니다.",
				Receipt: domain.PaymentReceipt{
					OrderID:     "ORDER_1746522000000_abc123def",
					OrderNumber: "BIOC22000000",
					OrderDate:   testClock(),
					Method:      cmd.Method,
					Subtotal:    9000,
					DeliveryFee: 3000,
					Total:       12000,
					Status:      domain.PaymentStatusCompleted,
				},
			}, nil
		},
	}
	router, manager := newCheckoutRouter(t, checkout)
	token := issueTestToken(t, manager, "User@Example.com")

	req := authorize(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody)), token)
	rec := doRequest(t, router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if gotCmd.UserEmail != "user@example.com" {
		t.Fatalf("expected session email, got %q", gotCmd.UserEmail)
	}
	if gotCmd.Method != domain.PaymentMethodCard || gotCmd.Delivery.ZipCode != "06134" {
		t.Fatalf("unexpected command %#v", gotCmd)
	}

	var payload checkoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !payload.Success || payload.Receipt == nil {
		t.Fatalf("expected receipt on success, got %#v", payload)
	}
	if payload.Receipt.Total != 12000 || payload.Receipt.Status != "completed" {
		t.Fatalf("unexpected receipt %#v", payload.Receipt)
	}
}

func TestCheckoutDeclineReturns402WithoutReceipt(t *testing.T) {
	checkout := &stubCheckoutService{
		checkoutFunc: func(context.Context, services.CheckoutCommand) (services.CheckoutResult, error) {
			return services.CheckoutResult{
				Success: false,
				Message: "결제에 실패했습니다. 다시 시도해주세요.",
			}, nil
		},
	}
	router, manager := newCheckoutRouter(t, checkout)
	token := issueTestToken(t, manager, "user@example.com")

	req := authorize(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody)), token)
	rec := doRequest(t, router, req)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}

	var payload checkoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Success || payload.Receipt != nil {
		t.Fatalf("decline must not carry a receipt, got %#v", payload)
	}
	if payload.Message != "결제에 실패했습니다. 다시 시도해주세요." {
		t.Fatalf("unexpected message %q", payload.Message)
	}
}

func TestCheckoutErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", services.ErrCheckoutInvalidInput, http.StatusBadRequest},
		{"empty cart", services.ErrCheckoutCartEmpty, http.StatusConflict},
		{"gateway unavailable", services.ErrCheckoutUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkout := &stubCheckoutService{
				checkoutFunc: func(context.Context, services.CheckoutCommand) (services.CheckoutResult, error) {
					return services.CheckoutResult{}, tc.err
				},
			}
			router, manager := newCheckoutRouter(t, checkout)
			token := issueTestToken(t, manager, "user@example.com")

			req := authorize(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody)), token)
			if rec := doRequest(t, router, req); rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestCheckoutRequiresSession(t *testing.T) {
	router, _ := newCheckoutRouter(t, &stubCheckoutService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	if rec := doRequest(t, router, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}
