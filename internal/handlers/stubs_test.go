package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/platform/auth"
	"github.com/biocart/api/internal/services"
)

const testSessionSecret = "handler-test-secret"

func testClock() time.Time {
	return time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC)
}

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	manager, err := auth.NewSessionManager(testSessionSecret, auth.WithSessionClock(testClock))
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return manager
}

func issueTestToken(t *testing.T, manager *auth.SessionManager, email string) string {
	t.Helper()
	token, _, err := manager.Issue(email, "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func doRequest(t *testing.T, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func authorize(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

type stubCartService struct {
	getCartFunc     func(ctx context.Context, userEmail string) (domain.Cart, error)
	addItemFunc     func(ctx context.Context, cmd services.AddCartItemCommand) (domain.Cart, error)
	setQuantityFunc func(ctx context.Context, cmd services.SetCartQuantityCommand) (domain.Cart, error)
	removeItemFunc  func(ctx context.Context, cmd services.RemoveCartItemCommand) (domain.Cart, error)
	clearCartFunc   func(ctx context.Context, userEmail string) error
}

func (s *stubCartService) GetCart(ctx context.Context, userEmail string) (domain.Cart, error) {
	if s.getCartFunc == nil {
		return domain.Cart{UserEmail: userEmail}, nil
	}
	return s.getCartFunc(ctx, userEmail)
}

func (s *stubCartService) AddItem(ctx context.Context, cmd services.AddCartItemCommand) (domain.Cart, error) {
	if s.addItemFunc == nil {
		return domain.Cart{UserEmail: cmd.UserEmail}, nil
	}
	return s.addItemFunc(ctx, cmd)
}

func (s *stubCartService) SetQuantity(ctx context.Context, cmd services.SetCartQuantityCommand) (domain.Cart, error) {
	if s.setQuantityFunc == nil {
		return domain.Cart{UserEmail: cmd.UserEmail}, nil
	}
	return s.setQuantityFunc(ctx, cmd)
}

func (s *stubCartService) RemoveItem(ctx context.Context, cmd services.RemoveCartItemCommand) (domain.Cart, error) {
	if s.removeItemFunc == nil {
		return domain.Cart{UserEmail: cmd.UserEmail}, nil
	}
	return s.removeItemFunc(ctx, cmd)
}

func (s *stubCartService) ClearCart(ctx context.Context, userEmail string) error {
	if s.clearCartFunc == nil {
		return nil
	}
	return s.clearCartFunc(ctx, userEmail)
}

func (s *stubCartService) RegisterObserver(services.CartObserver) {}

type stubCatalogService struct {
	listFunc       func(ctx context.Context) ([]domain.Product, error)
	getFunc        func(ctx context.Context, productID string) (domain.Product, error)
	byCategoryFunc func(ctx context.Context, category string) ([]domain.Product, error)
	searchFunc     func(ctx context.Context, query string) ([]domain.Product, error)
}

func (s *stubCatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if s.listFunc == nil {
		return nil, nil
	}
	return s.listFunc(ctx)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if s.getFunc == nil {
		return domain.Product{}, services.ErrCatalogNotFound
	}
	return s.getFunc(ctx, productID)
}

func (s *stubCatalogService) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if s.byCategoryFunc == nil {
		return nil, nil
	}
	return s.byCategoryFunc(ctx, category)
}

func (s *stubCatalogService) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	if s.searchFunc == nil {
		return nil, nil
	}
	return s.searchFunc(ctx, query)
}

type stubCheckoutService struct {
	checkoutFunc func(ctx context.Context, cmd services.CheckoutCommand) (services.CheckoutResult, error)
}

func (s *stubCheckoutService) Checkout(ctx context.Context, cmd services.CheckoutCommand) (services.CheckoutResult, error) {
	if s.checkoutFunc == nil {
		return services.CheckoutResult{}, services.ErrCheckoutUnavailable
	}
	return s.checkoutFunc(ctx, cmd)
}

type stubHistoryService struct {
	appendFunc     func(ctx context.Context, entry domain.HistoryEntry) error
	getAllFunc     func(ctx context.Context) ([]domain.HistoryEntry, error)
	getByEmailFunc func(ctx context.Context, userEmail string) ([]domain.HistoryEntry, error)
	getByIDFunc    func(ctx context.Context, orderID string) (domain.HistoryEntry, error)
	searchFunc     func(ctx context.Context, cmd services.HistorySearchCommand) ([]domain.HistoryEntry, error)
	clearFunc      func(ctx context.Context) error
}

func (s *stubHistoryService) Append(ctx context.Context, entry domain.HistoryEntry) error {
	if s.appendFunc == nil {
		return nil
	}
	return s.appendFunc(ctx, entry)
}

func (s *stubHistoryService) GetAll(ctx context.Context) ([]domain.HistoryEntry, error) {
	if s.getAllFunc == nil {
		return nil, nil
	}
	return s.getAllFunc(ctx)
}

func (s *stubHistoryService) GetByEmail(ctx context.Context, userEmail string) ([]domain.HistoryEntry, error) {
	if s.getByEmailFunc == nil {
		return nil, nil
	}
	return s.getByEmailFunc(ctx, userEmail)
}

func (s *stubHistoryService) GetByID(ctx context.Context, orderID string) (domain.HistoryEntry, error) {
	if s.getByIDFunc == nil {
		return domain.HistoryEntry{}, services.ErrHistoryNotFound
	}
	return s.getByIDFunc(ctx, orderID)
}

func (s *stubHistoryService) Search(ctx context.Context, cmd services.HistorySearchCommand) ([]domain.HistoryEntry, error) {
	if s.searchFunc == nil {
		return nil, nil
	}
	return s.searchFunc(ctx, cmd)
}

func (s *stubHistoryService) Clear(ctx context.Context) error {
	if s.clearFunc == nil {
		return nil
	}
	return s.clearFunc(ctx)
}

type stubReviewService struct {
	listByProductFunc func(ctx context.Context, productID string) ([]domain.Review, domain.ReviewSummary, error)
	createFunc        func(ctx context.Context, cmd services.CreateReviewCommand) (domain.Review, error)
}

func (s *stubReviewService) ListByProduct(ctx context.Context, productID string) ([]domain.Review, domain.ReviewSummary, error) {
	if s.listByProductFunc == nil {
		return nil, domain.ReviewSummary{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}, nil
	}
	return s.listByProductFunc(ctx, productID)
}

func (s *stubReviewService) Create(ctx context.Context, cmd services.CreateReviewCommand) (domain.Review, error) {
	if s.createFunc == nil {
		return domain.Review{}, services.ErrReviewInvalidInput
	}
	return s.createFunc(ctx, cmd)
}

type stubChallengeService struct {
	questionsFunc func(ctx context.Context) ([]domain.ChallengeQuestion, error)
	scoreFunc     func(ctx context.Context, answers []domain.ChallengeAnswer) (domain.ChallengeResult, error)
}

func (s *stubChallengeService) Questions(ctx context.Context) ([]domain.ChallengeQuestion, error) {
	if s.questionsFunc == nil {
		return nil, nil
	}
	return s.questionsFunc(ctx)
}

func (s *stubChallengeService) Score(ctx context.Context, answers []domain.ChallengeAnswer) (domain.ChallengeResult, error) {
	if s.scoreFunc == nil {
		return domain.ChallengeResult{}, services.ErrChallengeInvalidInput
	}
	return s.scoreFunc(ctx, answers)
}

type stubUserService struct {
	getProfileFunc    func(ctx context.Context, email string) (domain.UserProfile, error)
	updateProfileFunc func(ctx context.Context, cmd services.UpdateProfileCommand) (domain.UserProfile, error)
}

func (s *stubUserService) GetProfile(ctx context.Context, email string) (domain.UserProfile, error) {
	if s.getProfileFunc == nil {
		return domain.UserProfile{Email: email}, nil
	}
	return s.getProfileFunc(ctx, email)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, cmd services.UpdateProfileCommand) (domain.UserProfile, error) {
	if s.updateProfileFunc == nil {
		return domain.UserProfile{Email: cmd.Email}, nil
	}
	return s.updateProfileFunc(ctx, cmd)
}

type stubSystemService struct {
	healthReportFunc func(ctx context.Context) (domain.SystemHealthReport, error)
}

func (s *stubSystemService) HealthReport(ctx context.Context) (domain.SystemHealthReport, error) {
	if s.healthReportFunc == nil {
		return domain.SystemHealthReport{Status: domain.HealthStatusOK}, nil
	}
	return s.healthReportFunc(ctx)
}
