package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/biocart/api/internal/payments"
	"github.com/biocart/api/internal/platform/auth"
	"github.com/biocart/api/internal/platform/config"
	pfirestore "github.com/biocart/api/internal/platform/firestore"
	"github.com/biocart/api/internal/platform/jobs"
	"github.com/biocart/api/internal/repositories"
	firestorerepo "github.com/biocart/api/internal/repositories/firestore"
	"github.com/biocart/api/internal/repositories/memory"
	"github.com/biocart/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Catalog   services.CatalogService
	Cart      services.CartService
	Checkout  services.CheckoutService
	History   services.HistoryService
	Reviews   services.ReviewService
	Challenge services.ChallengeService
	Users     services.UserService
	System    services.SystemService
}

// Container wires repositories, services, and background infrastructure for runtime use.
type Container struct {
	Config       config.Config
	Logger       *zap.Logger
	Repositories repositories.Registry
	Sessions     *auth.SessionManager
	Payments     *payments.Manager
	Events       services.OrderEventPublisher
	Services     Services

	pubsubClient *pubsub.Client
}

type containerOptions struct {
	logger   *zap.Logger
	registry repositories.Registry
	events   services.OrderEventPublisher
	version  string
	clock    func() time.Time
}

// Option customises container construction, primarily for tests.
type Option func(*containerOptions)

// WithLogger injects the structured logger shared by all components.
func WithLogger(logger *zap.Logger) Option {
	return func(o *containerOptions) {
		o.logger = logger
	}
}

// WithRegistry overrides the repository registry, bypassing backend selection.
func WithRegistry(reg repositories.Registry) Option {
	return func(o *containerOptions) {
		o.registry = reg
	}
}

// WithEventPublisher overrides the order event publisher.
func WithEventPublisher(publisher services.OrderEventPublisher) Option {
	return func(o *containerOptions) {
		o.events = publisher
	}
}

// WithBuildVersion records the build version reported by health endpoints.
func WithBuildVersion(version string) Option {
	return func(o *containerOptions) {
		o.version = version
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *containerOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// NewContainer constructs the runtime dependencies. Firestore backs persistence when a
// project ID is configured; otherwise the in-memory registry keeps the API self-contained.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	options := containerOptions{
		version: "dev",
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	eventLog := zapEventLogger(logger)

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	sessions, err := auth.NewSessionManager(cfg.Auth.SessionSecret, auth.WithSessionTTL(cfg.Auth.SessionTTL))
	if err != nil {
		return nil, fmt.Errorf("build session manager: %w", err)
	}
	c.Sessions = sessions

	manager, err := buildPaymentManager(cfg, eventLog)
	if err != nil {
		return nil, err
	}
	c.Payments = manager

	reg := options.registry
	if reg == nil {
		reg, err = buildRegistry(cfg, manager)
		if err != nil {
			return nil, err
		}
	}
	c.Repositories = reg

	c.Events = options.events
	if c.Events == nil && cfg.Events.Topic != "" && cfg.Events.ProjectID != "" {
		client, err := pubsub.NewClient(ctx, cfg.Events.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("build pubsub client: %w", err)
		}
		publisher, err := jobs.NewPubSubOrderEventPublisher(client.Topic(cfg.Events.Topic))
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("build order event publisher: %w", err)
		}
		c.pubsubClient = client
		c.Events = publisher
	}

	svc, err := buildServices(cfg, reg, manager, c.Events, eventLog, options)
	if err != nil {
		if c.pubsubClient != nil {
			_ = c.pubsubClient.Close()
		}
		return nil, err
	}
	c.Services = svc

	return c, nil
}

// Close releases resources such as repository clients and messaging connections.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.pubsubClient != nil {
		if err := c.pubsubClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Repositories != nil {
		if err := c.Repositories.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildPaymentManager(cfg config.Config, eventLog services.Logger) (*payments.Manager, error) {
	providers := make(map[string]payments.Provider)

	mock, err := payments.NewMockProvider(payments.MockProviderConfig{
		SuccessRate: cfg.Payments.SuccessRate,
		Latency:     cfg.Payments.SimulatedLatency,
		Logger:      payments.Logger(eventLog),
	})
	if err != nil {
		return nil, fmt.Errorf("build mock payment provider: %w", err)
	}
	providers["mock"] = mock

	if cfg.Payments.StripeAPIKey != "" {
		stripeProvider, err := payments.NewStripeProvider(payments.StripeProviderConfig{
			APIKey: cfg.Payments.StripeAPIKey,
			Logger: payments.Logger(eventLog),
		})
		if err != nil {
			return nil, fmt.Errorf("build stripe payment provider: %w", err)
		}
		providers["stripe"] = stripeProvider
	}

	manager, err := payments.NewManager(providers, payments.WithDefaultProvider(cfg.Payments.Provider))
	if err != nil {
		return nil, fmt.Errorf("build payment manager: %w", err)
	}
	return manager, nil
}

func buildRegistry(cfg config.Config, manager *payments.Manager) (repositories.Registry, error) {
	if cfg.Firestore.ProjectID == "" {
		health, err := repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
			{Name: "memory_store", Check: func(context.Context) error { return nil }},
			{Name: "payments", Check: paymentsCheck(manager)},
		})
		if err != nil {
			return nil, fmt.Errorf("build health repository: %w", err)
		}
		return memory.NewRegistry(health), nil
	}

	provider := pfirestore.NewProvider(cfg.Firestore)
	health, err := repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
		{Name: "firestore", Check: func(ctx context.Context) error {
			_, err := provider.Client(ctx)
			return err
		}},
		{Name: "payments", Check: paymentsCheck(manager)},
	})
	if err != nil {
		return nil, fmt.Errorf("build health repository: %w", err)
	}

	reg, err := firestorerepo.NewRegistry(provider, health,
		firestorerepo.WithHistorySlot(cfg.History.Collection, cfg.History.SlotID),
	)
	if err != nil {
		return nil, fmt.Errorf("build firestore registry: %w", err)
	}
	return reg, nil
}

func paymentsCheck(manager *payments.Manager) func(context.Context) error {
	return func(context.Context) error {
		if manager == nil {
			return errors.New("payment manager not configured")
		}
		return nil
	}
}

func buildServices(cfg config.Config, reg repositories.Registry, manager *payments.Manager, events services.OrderEventPublisher, eventLog services.Logger, options containerOptions) (Services, error) {
	var svc Services

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		Repository:   reg.Products(),
		FetchLatency: cfg.Catalog.FetchLatency,
		Logger:       eventLog,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalog = catalog

	cart, err := services.NewCartService(services.CartServiceDeps{
		Repository: reg.Carts(),
		Catalog:    reg.Products(),
		Clock:      options.clock,
		Logger:     eventLog,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build cart service: %w", err)
	}
	svc.Cart = cart

	history, err := services.NewHistoryService(services.HistoryServiceDeps{
		Repository: reg.History(),
		Logger:     eventLog,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build history service: %w", err)
	}
	svc.History = history

	checkout, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Carts:    cart,
		History:  history,
		Gateway:  manager,
		Events:   events,
		Provider: cfg.Payments.Provider,
		Clock:    options.clock,
		Logger:   eventLog,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build checkout service: %w", err)
	}
	svc.Checkout = checkout

	reviews, err := services.NewReviewService(services.ReviewServiceDeps{
		Repository: reg.Reviews(),
		Purchases:  history,
		Clock:      options.clock,
		Logger:     eventLog,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build review service: %w", err)
	}
	svc.Reviews = reviews

	challenge, err := services.NewChallengeService(services.ChallengeServiceDeps{
		Clock:  options.clock,
		Logger: eventLog,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build challenge service: %w", err)
	}
	svc.Challenge = challenge

	users, err := services.NewUserService(services.UserServiceDeps{
		Repository: reg.Users(),
		Clock:      options.clock,
		Logger:     eventLog,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build user service: %w", err)
	}
	svc.Users = users

	system, err := services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: reg.Health(),
		Clock:            options.clock,
		Build: services.BuildInfo{
			Version:     options.version,
			Environment: cfg.Security.Environment,
			StartedAt:   options.clock().UTC(),
		},
	})
	if err != nil {
		return Services{}, fmt.Errorf("build system service: %w", err)
	}
	svc.System = system

	return svc, nil
}

func zapEventLogger(logger *zap.Logger) services.Logger {
	return func(_ context.Context, event string, fields map[string]any) {
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, value))
		}
		logger.Info(event, zapFields...)
	}
}
