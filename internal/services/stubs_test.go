package services

import (
	"context"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/payments"
)

type repoError struct {
	msg         string
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *repoError) Error() string       { return e.msg }
func (e *repoError) IsNotFound() bool    { return e.notFound }
func (e *repoError) IsConflict() bool    { return e.conflict }
func (e *repoError) IsUnavailable() bool { return e.unavailable }

type stubCartRepository struct {
	getFunc    func(ctx context.Context, userEmail string) (domain.Cart, error)
	upsertFunc func(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	deleteFunc func(ctx context.Context, userEmail string) error
}

func (s *stubCartRepository) Get(ctx context.Context, userEmail string) (domain.Cart, error) {
	if s.getFunc == nil {
		return domain.Cart{}, &repoError{msg: "not found", notFound: true}
	}
	return s.getFunc(ctx, userEmail)
}

func (s *stubCartRepository) Upsert(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	if s.upsertFunc == nil {
		return cart, nil
	}
	return s.upsertFunc(ctx, cart)
}

func (s *stubCartRepository) Delete(ctx context.Context, userEmail string) error {
	if s.deleteFunc == nil {
		return nil
	}
	return s.deleteFunc(ctx, userEmail)
}

type stubProductRepository struct {
	listFunc           func(ctx context.Context) ([]domain.Product, error)
	findByIDFunc       func(ctx context.Context, productID string) (domain.Product, error)
	listByCategoryFunc func(ctx context.Context, category string) ([]domain.Product, error)
}

func (s *stubProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	if s.listFunc == nil {
		return nil, nil
	}
	return s.listFunc(ctx)
}

func (s *stubProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.findByIDFunc == nil {
		return domain.Product{}, &repoError{msg: "not found", notFound: true}
	}
	return s.findByIDFunc(ctx, productID)
}

func (s *stubProductRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if s.listByCategoryFunc == nil {
		return nil, nil
	}
	return s.listByCategoryFunc(ctx, category)
}

type stubHistoryRepository struct {
	loadFunc    func(ctx context.Context) ([]domain.HistoryEntry, error)
	storeFunc   func(ctx context.Context, entries []domain.HistoryEntry) error
	prependFunc func(ctx context.Context, entry domain.HistoryEntry) error
	clearFunc   func(ctx context.Context) error
}

func (s *stubHistoryRepository) Load(ctx context.Context) ([]domain.HistoryEntry, error) {
	if s.loadFunc == nil {
		return nil, nil
	}
	return s.loadFunc(ctx)
}

func (s *stubHistoryRepository) Store(ctx context.Context, entries []domain.HistoryEntry) error {
	if s.storeFunc == nil {
		return nil
	}
	return s.storeFunc(ctx, entries)
}

func (s *stubHistoryRepository) Prepend(ctx context.Context, entry domain.HistoryEntry) error {
	if s.prependFunc == nil {
		return nil
	}
	return s.prependFunc(ctx, entry)
}

func (s *stubHistoryRepository) Clear(ctx context.Context) error {
	if s.clearFunc == nil {
		return nil
	}
	return s.clearFunc(ctx)
}

type stubUserRepository struct {
	findByEmailFunc func(ctx context.Context, email string) (domain.UserProfile, error)
	upsertFunc      func(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (domain.UserProfile, error) {
	if s.findByEmailFunc == nil {
		return domain.UserProfile{}, &repoError{msg: "not found", notFound: true}
	}
	return s.findByEmailFunc(ctx, email)
}

func (s *stubUserRepository) Upsert(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	if s.upsertFunc == nil {
		return profile, nil
	}
	return s.upsertFunc(ctx, profile)
}

type stubReviewRepository struct {
	listByProductFunc func(ctx context.Context, productID string) ([]domain.Review, error)
	insertFunc        func(ctx context.Context, review domain.Review) (domain.Review, error)
}

func (s *stubReviewRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	if s.listByProductFunc == nil {
		return nil, nil
	}
	return s.listByProductFunc(ctx, productID)
}

func (s *stubReviewRepository) Insert(ctx context.Context, review domain.Review) (domain.Review, error) {
	if s.insertFunc == nil {
		return review, nil
	}
	return s.insertFunc(ctx, review)
}

type stubGateway struct {
	submitFunc func(ctx context.Context, paymentCtx payments.PaymentContext, req domain.PaymentRequest) (payments.Result, error)
}

func (s *stubGateway) Submit(ctx context.Context, paymentCtx payments.PaymentContext, req domain.PaymentRequest) (payments.Result, error) {
	return s.submitFunc(ctx, paymentCtx, req)
}

type stubPublisher struct {
	publishFunc func(ctx context.Context, msg OrderCompletedMessage) (string, error)
}

func (s *stubPublisher) PublishOrderCompleted(ctx context.Context, msg OrderCompletedMessage) (string, error) {
	if s.publishFunc == nil {
		return "", nil
	}
	return s.publishFunc(ctx, msg)
}

type stubCartService struct {
	getFunc      func(ctx context.Context, userEmail string) (Cart, error)
	clearFunc    func(ctx context.Context, userEmail string) error
	addFunc      func(ctx context.Context, cmd AddCartItemCommand) (Cart, error)
	setQtyFunc   func(ctx context.Context, cmd SetCartQuantityCommand) (Cart, error)
	removeFunc   func(ctx context.Context, cmd RemoveCartItemCommand) (Cart, error)
	registerFunc func(observer CartObserver)
}

func (s *stubCartService) GetCart(ctx context.Context, userEmail string) (Cart, error) {
	return s.getFunc(ctx, userEmail)
}

func (s *stubCartService) AddItem(ctx context.Context, cmd AddCartItemCommand) (Cart, error) {
	return s.addFunc(ctx, cmd)
}

func (s *stubCartService) SetQuantity(ctx context.Context, cmd SetCartQuantityCommand) (Cart, error) {
	return s.setQtyFunc(ctx, cmd)
}

func (s *stubCartService) RemoveItem(ctx context.Context, cmd RemoveCartItemCommand) (Cart, error) {
	return s.removeFunc(ctx, cmd)
}

func (s *stubCartService) ClearCart(ctx context.Context, userEmail string) error {
	if s.clearFunc == nil {
		return nil
	}
	return s.clearFunc(ctx, userEmail)
}

func (s *stubCartService) RegisterObserver(observer CartObserver) {
	if s.registerFunc != nil {
		s.registerFunc(observer)
	}
}

type stubHistoryService struct {
	appendFunc     func(ctx context.Context, entry HistoryEntry) error
	getAllFunc     func(ctx context.Context) ([]HistoryEntry, error)
	getByEmailFunc func(ctx context.Context, userEmail string) ([]HistoryEntry, error)
	getByIDFunc    func(ctx context.Context, orderID string) (HistoryEntry, error)
	searchFunc     func(ctx context.Context, cmd HistorySearchCommand) ([]HistoryEntry, error)
	clearFunc      func(ctx context.Context) error
}

func (s *stubHistoryService) Append(ctx context.Context, entry HistoryEntry) error {
	if s.appendFunc == nil {
		return nil
	}
	return s.appendFunc(ctx, entry)
}

func (s *stubHistoryService) GetAll(ctx context.Context) ([]HistoryEntry, error) {
	if s.getAllFunc == nil {
		return nil, nil
	}
	return s.getAllFunc(ctx)
}

func (s *stubHistoryService) GetByEmail(ctx context.Context, userEmail string) ([]HistoryEntry, error) {
	if s.getByEmailFunc == nil {
		return nil, nil
	}
	return s.getByEmailFunc(ctx, userEmail)
}

func (s *stubHistoryService) GetByID(ctx context.Context, orderID string) (HistoryEntry, error) {
	if s.getByIDFunc == nil {
		return HistoryEntry{}, ErrHistoryNotFound
	}
	return s.getByIDFunc(ctx, orderID)
}

func (s *stubHistoryService) Search(ctx context.Context, cmd HistorySearchCommand) ([]HistoryEntry, error) {
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
