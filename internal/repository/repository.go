package repository

import (
	"context"
	"time"

	"gearrent-backend/internal/domain"
)

// TxManager runs fn inside a database transaction. Repository calls made with
// the context passed to fn join that transaction. Nested calls reuse the
// outer transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	ListByStatus(ctx context.Context, status domain.VerificationStatus) ([]domain.User, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id int32) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

type ItemFilter struct {
	CategoryID int32
	Status     domain.ItemStatus
	Query      string
	Page       int32
	PageSize   int32
}

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id int32) (*domain.Item, error)
	// GetByIDForUpdate locks the item row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	UpdateStock(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter ItemFilter) ([]domain.Item, int32, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id int32) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Transaction, error)
	Update(ctx context.Context, tx *domain.Transaction) error
	UpdateLineCondition(ctx context.Context, lineID int32, condition domain.InspectionCondition) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int32, error)
	NextSequence(ctx context.Context, day time.Time) (int32, error)
	// MarkOverdue moves being_rented transactions whose end date is before
	// today to awaiting_return and returns the moved rows.
	MarkOverdue(ctx context.Context, today time.Time) ([]domain.Transaction, error)
	ListOverdueNotices(ctx context.Context, today time.Time) ([]domain.OverdueNotice, error)
}

type PromotionRepository interface {
	Create(ctx context.Context, promo *domain.Promotion) error
	GetByID(ctx context.Context, id int32) (*domain.Promotion, error)
	GetByCode(ctx context.Context, code string) (*domain.Promotion, error)
	Update(ctx context.Context, promo *domain.Promotion) error
	List(ctx context.Context) ([]domain.Promotion, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByTransaction(ctx context.Context, transactionID int32) ([]domain.Payment, error)
}
