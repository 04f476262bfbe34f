package http

import (
	"context"
	"time"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

// Each mock embeds its service interface so only the methods a test touches
// need an implementation. Calling anything else panics on the nil interface.

type MockUserService struct {
	service.UserService
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, input service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(2) == nil {
		return args.String(0), args.Get(1).(time.Time), nil, args.Error(3)
	}
	return args.String(0), args.Get(1).(time.Time), args.Get(2).(*domain.User), args.Error(3)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID int32) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockCatalogService struct {
	service.CatalogService
	mock.Mock
}

func (m *MockCatalogService) CreateItem(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCatalogService) UpdateItem(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCatalogService) GetItem(ctx context.Context, id int32) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

type MockTransactionService struct {
	service.TransactionService
	mock.Mock
}

func (m *MockTransactionService) CreateTransaction(ctx context.Context, userID int32, startDate, endDate time.Time, lines []domain.LineRequest, promoCode string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, startDate, endDate, lines, promoCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, id int32) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Transaction), int32(args.Int(1)), args.Error(2)
}

func (m *MockTransactionService) UpdateStatus(ctx context.Context, id int32, status domain.TransactionStatus, lateFee *int64) (*domain.Transaction, error) {
	args := m.Called(ctx, id, status, lateFee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) Inspect(ctx context.Context, id int32, conditions map[int32]domain.InspectionCondition, lateFee *int64) (*domain.Transaction, error) {
	args := m.Called(ctx, id, conditions, lateFee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) Cancel(ctx context.Context, actorID, id int32) (*domain.Transaction, error) {
	args := m.Called(ctx, actorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

type MockPromotionService struct {
	service.PromotionService
	mock.Mock
}

func (m *MockPromotionService) ValidatePromotion(ctx context.Context, code string, subtotal int64) (*domain.Promotion, int64, error) {
	args := m.Called(ctx, code, subtotal)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*domain.Promotion), args.Get(1).(int64), args.Error(2)
}
