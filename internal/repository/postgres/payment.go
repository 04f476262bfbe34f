package postgres

import (
	"context"
	"database/sql"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (transaction_id, method, amount, reference, status, paid_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, p.TransactionID, p.Method, p.Amount, p.Reference, p.Status, p.PaidAt).Scan(&p.ID)
	if isForeignKeyViolation(err) {
		return domain.ErrTransactionNotFound
	}
	return err
}

func (r *paymentRepository) ListByTransaction(ctx context.Context, transactionID int32) ([]domain.Payment, error) {
	query := `SELECT id, transaction_id, method, amount, COALESCE(reference, ''), status, paid_at
	          FROM payments WHERE transaction_id = $1 ORDER BY paid_at`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.TransactionID, &p.Method, &p.Amount, &p.Reference, &p.Status, &p.PaidAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
