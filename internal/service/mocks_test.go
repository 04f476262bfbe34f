package service_test

import (
	"context"
	"time"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// fakeTxManager runs fn directly and records how often it was used.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) ListByStatus(ctx context.Context, status domain.VerificationStatus) ([]domain.User, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockCategoryRepo
type MockCategoryRepo struct {
	mock.Mock
}

func (m *MockCategoryRepo) Create(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}
func (m *MockCategoryRepo) GetByID(ctx context.Context, id int32) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}
func (m *MockCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

// MockItemRepo
type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemRepo) Update(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) UpdateStock(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockItemRepo) List(ctx context.Context, filter repository.ItemFilter) ([]domain.Item, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Item), args.Get(1).(int32), args.Error(2)
}

// MockTransactionRepo
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}
func (m *MockTransactionRepo) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) Update(ctx context.Context, t *domain.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}
func (m *MockTransactionRepo) UpdateLineCondition(ctx context.Context, lineID int32, condition domain.InspectionCondition) error {
	args := m.Called(ctx, lineID, condition)
	return args.Error(0)
}
func (m *MockTransactionRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockTransactionRepo) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockTransactionRepo) NextSequence(ctx context.Context, day time.Time) (int32, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockTransactionRepo) MarkOverdue(ctx context.Context, today time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, today)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) ListOverdueNotices(ctx context.Context, today time.Time) ([]domain.OverdueNotice, error) {
	args := m.Called(ctx, today)
	return args.Get(0).([]domain.OverdueNotice), args.Error(1)
}

// MockPromotionRepo
type MockPromotionRepo struct {
	mock.Mock
}

func (m *MockPromotionRepo) Create(ctx context.Context, promo *domain.Promotion) error {
	args := m.Called(ctx, promo)
	return args.Error(0)
}
func (m *MockPromotionRepo) GetByID(ctx context.Context, id int32) (*domain.Promotion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}
func (m *MockPromotionRepo) GetByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}
func (m *MockPromotionRepo) Update(ctx context.Context, promo *domain.Promotion) error {
	args := m.Called(ctx, promo)
	return args.Error(0)
}
func (m *MockPromotionRepo) List(ctx context.Context) ([]domain.Promotion, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Promotion), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockPaymentRepo) ListByTransaction(ctx context.Context, transactionID int32) ([]domain.Payment, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendAccountStatusNotification(ctx context.Context, email, name string, status domain.VerificationStatus) error {
	args := m.Called(ctx, email, name, status)
	return args.Error(0)
}
func (m *MockEmailService) SendTransactionStatusNotification(ctx context.Context, email, name, code string, status domain.TransactionStatus, total int64) error {
	args := m.Called(ctx, email, name, code, status, total)
	return args.Error(0)
}
func (m *MockEmailService) SendOverdueReminder(ctx context.Context, notice domain.OverdueNotice, daysLate int, lateFee int64) error {
	args := m.Called(ctx, notice, daysLate, lateFee)
	return args.Error(0)
}

// MockMailer records sent mail.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, toName, subject, body string) error {
	args := m.Called(ctx, to, toName, subject, body)
	return args.Error(0)
}
