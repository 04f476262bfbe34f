package service

import (
	"context"
	"time"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/repository"
)

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error) // token, expiresAt, user
	GetProfile(ctx context.Context, userID int32) (*domain.User, error)
	ListUsers(ctx context.Context, status domain.VerificationStatus) ([]domain.User, error)
	VerifyUser(ctx context.Context, adminID, userID int32, status domain.VerificationStatus) (*domain.User, error)
}

type CatalogService interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateItem(ctx context.Context, item *domain.Item) error
	GetItem(ctx context.Context, id int32) (*domain.Item, error)
	UpdateItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, id int32) error
	ListItems(ctx context.Context, filter repository.ItemFilter) ([]domain.Item, int32, error)
}

type InventoryService interface {
	AdjustStock(ctx context.Context, itemID int32, direction domain.StockDirection, qty int32) (*domain.StockAdjustment, error)
}

type PromotionService interface {
	CreatePromotion(ctx context.Context, promo *domain.Promotion) error
	UpdatePromotion(ctx context.Context, promo *domain.Promotion) error
	ListPromotions(ctx context.Context) ([]domain.Promotion, error)
	// GetActivePromotion returns the promotion only when it is active today.
	GetActivePromotion(ctx context.Context, code string) (*domain.Promotion, error)
	ValidatePromotion(ctx context.Context, code string, subtotal int64) (*domain.Promotion, int64, error) // promo, discount
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, userID int32, startDate, endDate time.Time, lines []domain.LineRequest, promoCode string) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id int32) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int32, error)
	DeleteTransaction(ctx context.Context, id int32) error

	// UpdateStatus moves a transaction to status and applies that transition's
	// side effects. lateFee, when set, replaces the computed late fee on completion.
	UpdateStatus(ctx context.Context, id int32, status domain.TransactionStatus, lateFee *int64) (*domain.Transaction, error)
	SubmitPayment(ctx context.Context, userID, transactionID int32, method string, amount int64, reference string) (*domain.Transaction, *domain.Payment, error)
	ListPayments(ctx context.Context, transactionID int32) ([]domain.Payment, error)
	ConfirmPayment(ctx context.Context, id int32) (*domain.Transaction, error)
	Handover(ctx context.Context, id int32) (*domain.Transaction, error)
	RequestReturn(ctx context.Context, userID, id int32) (*domain.Transaction, error)
	// Inspect completes a returned transaction. conditions is keyed by line ID;
	// lines without an entry are treated as good.
	Inspect(ctx context.Context, id int32, conditions map[int32]domain.InspectionCondition, lateFee *int64) (*domain.Transaction, error)
	Cancel(ctx context.Context, actorID, id int32) (*domain.Transaction, error)

	// MarkOverdue moves every being_rented transaction past its end date to
	// awaiting_return.
	MarkOverdue(ctx context.Context) ([]domain.Transaction, error)
}

type EmailService interface {
	SendAccountStatusNotification(ctx context.Context, email, name string, status domain.VerificationStatus) error
	SendTransactionStatusNotification(ctx context.Context, email, name, code string, status domain.TransactionStatus, total int64) error
	SendOverdueReminder(ctx context.Context, notice domain.OverdueNotice, daysLate int, lateFee int64) error
}

// RentalRules are the switchable business rules from the rental config.
type RentalRules struct {
	StrictStock        bool
	EnforceMinSpend    bool
	AutoApproveMembers bool
}

type RegisterInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Address     string
	Password    string
	Role        domain.UserRole
}
