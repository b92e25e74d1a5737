package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/platform/auth"
	"github.com/biocart/api/internal/platform/httpx"
	"github.com/biocart/api/internal/services"
)

const maxCheckoutBodySize = 32 * 1024

// CheckoutHandlers exposes the authenticated checkout endpoint.
type CheckoutHandlers struct {
	verifier auth.SessionVerifier
	checkout services.CheckoutService
}

// NewCheckoutHandlers constructs handlers enforcing session authentication before invoking the checkout service.
func NewCheckoutHandlers(verifier auth.SessionVerifier, checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{
		verifier: verifier,
		checkout: checkout,
	}
}

// Routes wires the /checkout endpoint onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.verifier != nil {
		r.Use(auth.RequireSession(h.verifier))
	}
	r.Post("/", h.checkoutOrder)
}

type checkoutRequest struct {
	Delivery      deliveryPayload `json:"delivery"`
	PaymentMethod string          `json:"paymentMethod"`
}

type deliveryPayload struct {
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	ZipCode       string `json:"zipCode"`
	Address       string `json:"address"`
	AddressDetail string `json:"addressDetail"`
}

type checkoutResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Receipt *receiptPayload `json:"receipt,omitempty"`
}

func (h *CheckoutHandlers) checkoutOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	email, ok := requireSessionEmail(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req checkoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	result, err := h.checkout.Checkout(ctx, services.CheckoutCommand{
		UserEmail: email,
		Delivery: domain.DeliveryInfo{
			RecipientName: strings.TrimSpace(req.Delivery.RecipientName),
			Phone:         strings.TrimSpace(req.Delivery.Phone),
			ZipCode:       strings.TrimSpace(req.Delivery.ZipCode),
			Address:       strings.TrimSpace(req.Delivery.Address),
			AddressDetail: strings.TrimSpace(req.Delivery.AddressDetail),
		},
		Method: domain.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod))),
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	payload := checkoutResponse{
		Success: result.Success,
		Message: result.Message,
	}
	if result.Success {
		receipt := buildReceiptPayload(result.Receipt)
		payload.Receipt = &receipt
	}

	// Declines are a regular business outcome, not an HTTP error.
	status := http.StatusOK
	if !result.Success {
		status = http.StatusPaymentRequired
	}
	writeJSONResponse(w, status, payload)
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutCartEmpty):
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cart is empty", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "payment gateway unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", err.Error(), http.StatusInternalServerError))
	}
}
