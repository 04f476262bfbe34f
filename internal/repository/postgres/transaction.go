package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/logger"
	"gearrent-backend/internal/repository"

	"github.com/lib/pq"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, code, user_id, booked_at, start_date, end_date, days, subtotal, discount, late_fee, total, promo_code, status, created_on, updated_on`

func scanTransaction(row interface{ Scan(...any) error }, t *domain.Transaction) error {
	return row.Scan(&t.ID, &t.Code, &t.UserID, &t.BookedAt, &t.StartDate, &t.EndDate, &t.Days, &t.Subtotal, &t.Discount, &t.LateFee, &t.Total, &t.PromoCode, &t.Status, &t.CreatedOn, &t.UpdatedOn)
}

// Create inserts the transaction and all of its lines atomically.
func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	return withTx(ctx, r.db, func(ctx context.Context) error {
		q := conn(ctx, r.db)
		now := time.Now()
		query := `INSERT INTO transactions (code, user_id, booked_at, start_date, end_date, days, subtotal, discount, late_fee, total, promo_code, status, created_on, updated_on)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
		err := q.QueryRowContext(ctx, query, t.Code, t.UserID, t.BookedAt, t.StartDate, t.EndDate, t.Days, t.Subtotal, t.Discount, t.LateFee, t.Total, t.PromoCode, t.Status, now, now).Scan(&t.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("transaction code %q: %w", t.Code, domain.ErrConflict)
			}
			return fmt.Errorf("inserting transaction: %w", err)
		}
		t.CreatedOn, t.UpdatedOn = now, now

		lineQuery := `INSERT INTO transaction_lines (transaction_id, item_id, quantity, price_per_day, subtotal)
		              VALUES ($1, $2, $3, $4, $5) RETURNING id`
		for i := range t.Lines {
			l := &t.Lines[i]
			l.TransactionID = t.ID
			if err := q.QueryRowContext(ctx, lineQuery, l.TransactionID, l.ItemID, l.Quantity, l.PricePerDay, l.Subtotal).Scan(&l.ID); err != nil {
				if isForeignKeyViolation(err) {
					return domain.ErrItemNotFound
				}
				return fmt.Errorf("inserting transaction line: %w", err)
			}
		}
		return nil
	})
}

func (r *transactionRepository) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	return r.get(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
}

func (r *transactionRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Transaction, error) {
	return r.get(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *transactionRepository) get(ctx context.Context, query string, id int32) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	if err := scanTransaction(conn(ctx, r.db).QueryRowContext(ctx, query, id), t); err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}
	lines, err := r.lines(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Lines = lines
	return t, nil
}

func (r *transactionRepository) lines(ctx context.Context, transactionID int32) ([]domain.TransactionLine, error) {
	query := `SELECT l.id, l.transaction_id, l.item_id, i.name, l.quantity, l.price_per_day, l.subtotal, l.condition
	          FROM transaction_lines l JOIN items i ON i.id = l.item_id
	          WHERE l.transaction_id = $1 ORDER BY l.id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.TransactionLine
	for rows.Next() {
		var l domain.TransactionLine
		if err := rows.Scan(&l.ID, &l.TransactionID, &l.ItemID, &l.ItemName, &l.Quantity, &l.PricePerDay, &l.Subtotal, &l.Condition); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *transactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	query := `UPDATE transactions SET status=$1, discount=$2, late_fee=$3, total=$4, updated_on=$5 WHERE id=$6`
	t.UpdatedOn = time.Now()
	res, err := conn(ctx, r.db).ExecContext(ctx, query, t.Status, t.Discount, t.LateFee, t.Total, t.UpdatedOn, t.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res, domain.ErrTransactionNotFound)
}

func (r *transactionRepository) UpdateLineCondition(ctx context.Context, lineID int32, condition domain.InspectionCondition) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE transaction_lines SET condition=$1 WHERE id=$2`, condition, lineID)
	if err != nil {
		return err
	}
	return expectOneRow(res, domain.ErrTransactionNotFound)
}

// Delete hard-deletes a transaction; lines and payments go with it.
func (r *transactionRepository) Delete(ctx context.Context, id int32) error {
	return withTx(ctx, r.db, func(ctx context.Context) error {
		q := conn(ctx, r.db)
		if _, err := q.ExecContext(ctx, `DELETE FROM payments WHERE transaction_id = $1`, id); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM transaction_lines WHERE transaction_id = $1`, id); err != nil {
			return err
		}
		res, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return expectOneRow(res, domain.ErrTransactionNotFound)
	})
}

func (r *transactionRepository) List(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, int32, error) {
	limit, offset := pageOffset(f.Page, f.PageSize)
	sql := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`

	var args []any
	argIdx := 1
	if f.UserID != 0 {
		sql += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, f.UserID)
		argIdx++
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		sql += fmt.Sprintf(" AND status = ANY($%d)", argIdx)
		args = append(args, pq.Array(statuses))
		argIdx++
	}

	var count int32
	countSql := "SELECT count(*) FROM (" + sql + ") AS sub"
	if err := conn(ctx, r.db).QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	sql += fmt.Sprintf(" ORDER BY booked_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.db).QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, 0, err
		}
		txs = append(txs, t)
	}
	return txs, count, rows.Err()
}

// NextSequence bumps the per-day counter row and returns the new value. The
// counter never goes backwards, so deleted transactions do not free their codes.
func (r *transactionRepository) NextSequence(ctx context.Context, day time.Time) (int32, error) {
	query := `
		INSERT INTO transaction_sequences (day, last_seq)
		VALUES ($1::date, 1)
		ON CONFLICT (day) DO UPDATE SET last_seq = transaction_sequences.last_seq + 1
		RETURNING last_seq`
	var seq int32
	err := conn(ctx, r.db).QueryRowContext(ctx, query, day.Format("2006-01-02")).Scan(&seq)
	return seq, err
}

func (r *transactionRepository) MarkOverdue(ctx context.Context, today time.Time) ([]domain.Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $1,
		    updated_on = NOW()
		WHERE status = $2
		  AND end_date < $3
		RETURNING id, code, user_id, end_date
	`
	logger.DatabaseCall("MarkOverdue", query, "today", today.Format("2006-01-02"))
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, domain.TransactionStatusAwaitingReturn, domain.TransactionStatusBeingRented, today)
	if err != nil {
		logger.DatabaseResult("MarkOverdue", 0, err)
		return nil, err
	}
	defer rows.Close()

	var moved []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{Status: domain.TransactionStatusAwaitingReturn}
		if err := rows.Scan(&t.ID, &t.Code, &t.UserID, &t.EndDate); err != nil {
			return nil, err
		}
		moved = append(moved, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("MarkOverdue", int64(len(moved)), nil)
	return moved, nil
}

func (r *transactionRepository) ListOverdueNotices(ctx context.Context, today time.Time) ([]domain.OverdueNotice, error) {
	query := `
		SELECT t.id, t.code, t.end_date, u.name, u.email,
		       COALESCE(SUM(i.late_fee_per_day * l.quantity), 0)
		FROM transactions t
		JOIN users u ON u.id = t.user_id
		JOIN transaction_lines l ON l.transaction_id = t.id
		JOIN items i ON i.id = l.item_id
		WHERE t.status = ANY($1)
		  AND t.end_date < $2
		GROUP BY t.id, t.code, t.end_date, u.name, u.email
		ORDER BY t.end_date
	`
	statuses := pq.Array([]string{string(domain.TransactionStatusBeingRented), string(domain.TransactionStatusAwaitingReturn)})
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, statuses, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notices []domain.OverdueNotice
	for rows.Next() {
		var n domain.OverdueNotice
		if err := rows.Scan(&n.TransactionID, &n.Code, &n.EndDate, &n.UserName, &n.Email, &n.LateFeePerDay); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}
