package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/platform/auth"
	"github.com/biocart/api/internal/platform/httpx"
	"github.com/biocart/api/internal/services"
)

// OrderHandlers exposes authenticated order history endpoints scoped to the
// session email.
type OrderHandlers struct {
	verifier auth.SessionVerifier
	history  services.HistoryService
}

// NewOrderHandlers constructs handlers enforcing session authentication before invoking the history service.
func NewOrderHandlers(verifier auth.SessionVerifier, history services.HistoryService) *OrderHandlers {
	return &OrderHandlers{
		verifier: verifier,
		history:  history,
	}
}

// Routes wires the /orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.verifier != nil {
		r.Use(auth.RequireSession(h.verifier))
	}
	r.Get("/", h.listOrders)
	r.Delete("/", h.clearOrders)
	r.Get("/search", h.searchOrders)
	r.Get("/{orderID}", h.getOrder)
}

type orderItemPayload struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image,omitempty"`
}

type receiptPayload struct {
	OrderID           string             `json:"orderId"`
	OrderNumber       string             `json:"orderNumber"`
	OrderDate         string             `json:"orderDate"`
	Items             []orderItemPayload `json:"items"`
	Delivery          deliveryPayload    `json:"delivery"`
	PaymentMethod     string             `json:"paymentMethod"`
	Subtotal          int64              `json:"subtotal"`
	DeliveryFee       int64              `json:"deliveryFee"`
	Total             int64              `json:"total"`
	Status            string             `json:"status"`
	EstimatedDelivery string             `json:"estimatedDelivery"`
}

type orderPayload struct {
	ID        string         `json:"id"`
	UserEmail string         `json:"userEmail"`
	CreatedAt string         `json:"createdAt"`
	Receipt   receiptPayload `json:"receipt"`
}

type orderListResponse struct {
	Orders []orderPayload `json:"orders"`
	Total  int            `json:"total"`
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email, ok := h.requireHistory(ctx, w)
	if !ok {
		return
	}

	entries, err := h.history.GetByEmail(ctx, email)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderListResponse(entries))
}

func (h *OrderHandlers) searchOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email, ok := h.requireHistory(ctx, w)
	if !ok {
		return
	}

	entries, err := h.history.Search(ctx, services.HistorySearchCommand{
		Query:     r.URL.Query().Get("q"),
		UserEmail: email,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderListResponse(entries))
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email, ok := h.requireHistory(ctx, w)
	if !ok {
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	entry, err := h.history.GetByID(ctx, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	// Receipts belong to the email that placed them.
	if !strings.EqualFold(strings.TrimSpace(entry.UserEmail), email) {
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{"order": buildOrderPayload(entry)})
}

func (h *OrderHandlers) clearOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireHistory(ctx, w); !ok {
		return
	}

	if err := h.history.Clear(ctx); err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, orderListResponse{Orders: []orderPayload{}, Total: 0})
}

func (h *OrderHandlers) requireHistory(ctx context.Context, w http.ResponseWriter) (string, bool) {
	if h.history == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order history service is unavailable", http.StatusServiceUnavailable))
		return "", false
	}
	return requireSessionEmail(ctx, w)
}

func buildOrderListResponse(entries []domain.HistoryEntry) orderListResponse {
	payload := orderListResponse{
		Orders: make([]orderPayload, 0, len(entries)),
		Total:  len(entries),
	}
	for _, entry := range entries {
		payload.Orders = append(payload.Orders, buildOrderPayload(entry))
	}
	return payload
}

func buildOrderPayload(entry domain.HistoryEntry) orderPayload {
	return orderPayload{
		ID:        entry.ID,
		UserEmail: strings.ToLower(strings.TrimSpace(entry.UserEmail)),
		CreatedAt: formatTime(entry.CreatedAt),
		Receipt:   buildReceiptPayload(entry.Receipt),
	}
}

func buildReceiptPayload(receipt domain.PaymentReceipt) receiptPayload {
	items := make([]orderItemPayload, 0, len(receipt.Items))
	for _, item := range receipt.Items {
		items = append(items, orderItemPayload{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}

	return receiptPayload{
		OrderID:     receipt.OrderID,
		OrderNumber: receipt.OrderNumber,
		OrderDate:   formatTime(receipt.OrderDate),
		Items:       items,
		Delivery: deliveryPayload{
			RecipientName: receipt.Delivery.RecipientName,
			Phone:         receipt.Delivery.Phone,
			ZipCode:       receipt.Delivery.ZipCode,
			Address:       receipt.Delivery.Address,
			AddressDetail: receipt.Delivery.AddressDetail,
		},
		PaymentMethod:     string(receipt.Method),
		Subtotal:          receipt.Subtotal,
		DeliveryFee:       receipt.DeliveryFee,
		Total:             receipt.Total,
		Status:            string(receipt.Status),
		EstimatedDelivery: formatTime(receipt.EstimatedDelivery),
	}
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrHistoryInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrHistoryNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", err.Error(), http.StatusInternalServerError))
	}
}
