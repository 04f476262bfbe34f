package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/logger"
	"gearrent-backend/internal/repository"
)

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

const itemColumns = `id, code, name, category_id, COALESCE(description, ''), price_per_day, late_fee_per_day, stock, status, created_on, updated_on`

func scanItem(row interface{ Scan(...any) error }, it *domain.Item) error {
	return row.Scan(&it.ID, &it.Code, &it.Name, &it.CategoryID, &it.Description, &it.PricePerDay, &it.LateFeePerDay, &it.Stock, &it.Status, &it.CreatedOn, &it.UpdatedOn)
}

func (r *itemRepository) Create(ctx context.Context, it *domain.Item) error {
	query := `INSERT INTO items (code, name, category_id, description, price_per_day, late_fee_per_day, stock, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	now := time.Now()
	err := conn(ctx, r.db).QueryRowContext(ctx, query, it.Code, it.Name, it.CategoryID, it.Description, it.PricePerDay, it.LateFeePerDay, it.Stock, it.Status, now, now).Scan(&it.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("item code %q: %w", it.Code, domain.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return domain.ErrCategoryNotFound
		}
		return err
	}
	it.CreatedOn, it.UpdatedOn = now, now
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	it := &domain.Item{}
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	if err := scanItem(conn(ctx, r.db).QueryRowContext(ctx, query, id), it); err != nil {
		return nil, notFound(err, domain.ErrItemNotFound)
	}
	return it, nil
}

func (r *itemRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Item, error) {
	it := &domain.Item{}
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("GetItemForUpdate", query, "item_id", id)
	if err := scanItem(conn(ctx, r.db).QueryRowContext(ctx, query, id), it); err != nil {
		return nil, notFound(err, domain.ErrItemNotFound)
	}
	return it, nil
}

func (r *itemRepository) Update(ctx context.Context, it *domain.Item) error {
	query := `UPDATE items SET code=$1, name=$2, category_id=$3, description=$4, price_per_day=$5, late_fee_per_day=$6, stock=$7, status=$8, updated_on=$9 WHERE id=$10`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, it.Code, it.Name, it.CategoryID, it.Description, it.PricePerDay, it.LateFeePerDay, it.Stock, it.Status, time.Now(), it.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("item code %q: %w", it.Code, domain.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return domain.ErrCategoryNotFound
		}
		return err
	}
	return expectOneRow(res, domain.ErrItemNotFound)
}

func (r *itemRepository) UpdateStock(ctx context.Context, it *domain.Item) error {
	query := `UPDATE items SET stock=$1, status=$2, updated_on=$3 WHERE id=$4`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, it.Stock, it.Status, time.Now(), it.ID)
	if err != nil {
		logger.DatabaseResult("UpdateItemStock", 0, err, "item_id", it.ID)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UpdateItemStock", n, nil, "item_id", it.ID, "stock", it.Stock, "status", it.Status)
	return expectOneRow(res, domain.ErrItemNotFound)
}

func (r *itemRepository) Delete(ctx context.Context, id int32) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrItemInUse
		}
		return err
	}
	return expectOneRow(res, domain.ErrItemNotFound)
}

func (r *itemRepository) List(ctx context.Context, f repository.ItemFilter) ([]domain.Item, int32, error) {
	limit, offset := pageOffset(f.Page, f.PageSize)
	sql := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`

	var args []any
	argIdx := 1
	if f.CategoryID != 0 {
		sql += fmt.Sprintf(" AND category_id = $%d", argIdx)
		args = append(args, f.CategoryID)
		argIdx++
	}
	if f.Status != "" {
		sql += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}
	if f.Query != "" {
		sql += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+f.Query+"%")
		argIdx++
	}

	var count int32
	countSql := "SELECT count(*) FROM (" + sql + ") AS sub"
	if err := conn(ctx, r.db).QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	sql += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.db).QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, count, rows.Err()
}

func expectOneRow(res sql.Result, notFoundErr error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}
