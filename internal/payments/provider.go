package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/biocart/api/internal/domain"
)

// ErrUnsupportedProvider is returned when the manager cannot locate a provider.
var ErrUnsupportedProvider = errors.New("payments: unsupported provider")

// Logger defines the logging contract for payment provider operations.
type Logger func(ctx context.Context, event string, fields map[string]any)

// Result is the outcome of a single payment attempt. Receipt is the zero
// value unless Success is true.
type Result struct {
	Success bool
	Message string
	Receipt domain.PaymentReceipt
}

// Provider defines the contract payment gateways implement. Submit performs
// exactly one attempt; retrying is the caller's decision.
type Provider interface {
	Submit(ctx context.Context, req domain.PaymentRequest) (Result, error)
}

// Manager coordinates provider selection and exposes the shared Submit surface.
type Manager struct {
	providers       map[string]Provider
	defaultProvider string
}

// ManagerOption configures optional behaviour when building a Manager.
type ManagerOption func(*Manager)

// WithDefaultProvider overrides the provider used when no preference is given.
func WithDefaultProvider(provider string) ManagerOption {
	return func(m *Manager) {
		m.defaultProvider = strings.TrimSpace(strings.ToLower(provider))
	}
}

// NewManager constructs a Manager over the supplied providers.
func NewManager(providers map[string]Provider, opts ...ManagerOption) (*Manager, error) {
	if len(providers) == 0 {
		return nil, errors.New("payments: at least one provider is required")
	}
	copyMap := make(map[string]Provider, len(providers))
	for k, v := range providers {
		key := strings.TrimSpace(strings.ToLower(k))
		if key == "" || v == nil {
			return nil, fmt.Errorf("payments: invalid provider registration for key %q", k)
		}
		copyMap[key] = v
	}
	m := &Manager{providers: copyMap}
	if _, ok := copyMap["mock"]; ok {
		m.defaultProvider = "mock"
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// PaymentContext defines the hints available when selecting a provider.
type PaymentContext struct {
	PreferredProvider string
}

func (m *Manager) resolveProvider(ctx PaymentContext) (string, Provider, error) {
	if m == nil {
		return "", nil, errors.New("payments: manager is nil")
	}
	if len(m.providers) == 0 {
		return "", nil, errors.New("payments: no providers registered")
	}
	if provider := strings.TrimSpace(strings.ToLower(ctx.PreferredProvider)); provider != "" {
		if p, ok := m.providers[provider]; ok {
			return provider, p, nil
		}
	}
	if def := m.defaultProvider; def != "" {
		if p, ok := m.providers[def]; ok {
			return def, p, nil
		}
	}
	if len(m.providers) == 1 {
		for key, p := range m.providers {
			return key, p, nil
		}
	}
	return "", nil, ErrUnsupportedProvider
}

// Submit delegates the payment attempt to the resolved provider.
func (m *Manager) Submit(ctx context.Context, paymentCtx PaymentContext, req domain.PaymentRequest) (Result, error) {
	_, provider, err := m.resolveProvider(paymentCtx)
	if err != nil {
		return Result{}, err
	}
	return provider.Submit(ctx, req)
}
