package services

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/payments"
)

var (
	// ErrCheckoutInvalidInput indicates the caller supplied invalid input parameters.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
	// ErrCheckoutCartEmpty indicates the cart has no lines to pay for.
	ErrCheckoutCartEmpty = errors.New("checkout: cart is empty")
	// ErrCheckoutUnavailable indicates checkout dependencies are currently unavailable.
	ErrCheckoutUnavailable = errors.New("checkout: unavailable")
)

// checkoutGateway abstracts payments.Manager for easier testing.
type checkoutGateway interface {
	Submit(ctx context.Context, paymentCtx payments.PaymentContext, req domain.PaymentRequest) (payments.Result, error)
}

// CheckoutServiceDeps wires the dependencies required by the checkout service.
type CheckoutServiceDeps struct {
	Carts    CartService
	History  HistoryService
	Gateway  checkoutGateway
	Events   OrderEventPublisher
	Provider string
	Clock    func() time.Time
	Logger   Logger
}

type checkoutService struct {
	carts    CartService
	history  HistoryService
	gateway  checkoutGateway
	events   OrderEventPublisher
	provider string
	now      func() time.Time
	logger   Logger
}

// NewCheckoutService constructs a CheckoutService enforcing dependency validation.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Carts == nil {
		return nil, errors.New("checkout: cart service is required")
	}
	if deps.History == nil {
		return nil, errors.New("checkout: history service is required")
	}
	if deps.Gateway == nil {
		return nil, errors.New("checkout: payment gateway is required")
	}
	if deps.Clock == nil {
		return nil, errors.New("checkout: clock is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		carts:    deps.Carts,
		history:  deps.History,
		gateway:  deps.Gateway,
		events:   deps.Events,
		provider: strings.TrimSpace(strings.ToLower(deps.Provider)),
		now:      func() time.Time { return deps.Clock().UTC() },
		logger:   logger,
	}, nil
}

// Checkout runs the payment flow: snapshot the cart, price it once, submit a
// single gateway attempt, and persist only on success.
func (s *checkoutService) Checkout(ctx context.Context, cmd CheckoutCommand) (CheckoutResult, error) {
	if s == nil || s.gateway == nil {
		return CheckoutResult{}, ErrCheckoutUnavailable
	}

	email := strings.ToLower(strings.TrimSpace(cmd.UserEmail))
	if email == "" {
		return CheckoutResult{}, ErrCheckoutInvalidInput
	}
	if err := validateDelivery(cmd.Delivery); err != nil {
		return CheckoutResult{}, err
	}
	if !validPaymentMethod(cmd.Method) {
		return CheckoutResult{}, ErrCheckoutInvalidInput
	}

	cart, err := s.carts.GetCart(ctx, email)
	if err != nil {
		return CheckoutResult{}, translateCartError(err)
	}
	if len(cart.Lines) == 0 {
		return CheckoutResult{}, ErrCheckoutCartEmpty
	}

	// priced exactly once; the gateway and the receipt echo these amounts
	pricing := domain.PriceOrder(cart.TotalPrice())

	request := domain.PaymentRequest{
		UserEmail:   email,
		Items:       snapshotItems(cart.Lines),
		Delivery:    cmd.Delivery,
		Method:      cmd.Method,
		Subtotal:    pricing.Subtotal,
		DeliveryFee: pricing.DeliveryFee,
		Total:       pricing.Total,
	}

	result, err := s.gateway.Submit(ctx, payments.PaymentContext{PreferredProvider: s.provider}, request)
	if err != nil {
		s.logger(ctx, "checkout.gateway_error", map[string]any{
			"userEmail": email,
			"error":     err.Error(),
		})
		return CheckoutResult{}, ErrCheckoutUnavailable
	}

	if !result.Success {
		s.logger(ctx, "checkout.declined", map[string]any{
			"userEmail": email,
			"total":     request.Total,
		})
		return CheckoutResult{Success: false, Message: result.Message}, nil
	}

	receipt := result.Receipt

	entry := domain.HistoryEntry{
		ID:        receipt.OrderID,
		Receipt:   receipt,
		UserEmail: email,
		CreatedAt: s.now(),
	}
	// append failures are logged inside the history service and never
	// surface to the paying customer
	_ = s.history.Append(ctx, entry)

	if err := s.carts.ClearCart(ctx, email); err != nil {
		s.logger(ctx, "checkout.cart_clear_failed", map[string]any{
			"userEmail": email,
			"orderId":   receipt.OrderID,
			"error":     err.Error(),
		})
	}

	s.publishCompleted(ctx, email, receipt)

	s.logger(ctx, "checkout.completed", map[string]any{
		"userEmail":   email,
		"orderId":     receipt.OrderID,
		"orderNumber": receipt.OrderNumber,
		"total":       receipt.Total,
	})

	return CheckoutResult{
		Success: true,
		Message: result.Message,
		Receipt: receipt,
	}, nil
}

func (s *checkoutService) publishCompleted(ctx context.Context, email string, receipt domain.PaymentReceipt) {
	if s.events == nil {
		return
	}
	msg := OrderCompletedMessage{
		OrderID:       receipt.OrderID,
		OrderNumber:   receipt.OrderNumber,
		UserEmail:     email,
		PaymentMethod: string(receipt.Method),
		Total:         receipt.Total,
		OrderedAt:     receipt.OrderDate,
	}
	if _, err := s.events.PublishOrderCompleted(ctx, msg); err != nil {
		s.logger(ctx, "checkout.event_publish_failed", map[string]any{
			"orderId": receipt.OrderID,
			"error":   err.Error(),
		})
	}
}

func validateDelivery(delivery domain.DeliveryInfo) error {
	fields := []string{
		delivery.RecipientName,
		delivery.Phone,
		delivery.ZipCode,
		delivery.Address,
		delivery.AddressDetail,
	}
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			return ErrCheckoutInvalidInput
		}
	}
	return nil
}

func validPaymentMethod(method domain.PaymentMethod) bool {
	switch method {
	case domain.PaymentMethodCard, domain.PaymentMethodBank, domain.PaymentMethodKakao:
		return true
	}
	return false
}

func snapshotItems(lines []domain.CartLine) []domain.OrderItem {
	items := make([]domain.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Image:     line.Image,
		}
	}
	return items
}

func translateCartError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCartInvalidInput) {
		return ErrCheckoutInvalidInput
	}
	return ErrCheckoutUnavailable
}
