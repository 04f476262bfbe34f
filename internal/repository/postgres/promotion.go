package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/repository"
)

type promotionRepository struct {
	db *sql.DB
}

func NewPromotionRepository(db *sql.DB) repository.PromotionRepository {
	return &promotionRepository{db: db}
}

const promotionColumns = `id, code, name, kind, value, min_spend, max_discount, start_date, end_date, active, created_on`

func scanPromotion(row interface{ Scan(...any) error }, p *domain.Promotion) error {
	return row.Scan(&p.ID, &p.Code, &p.Name, &p.Kind, &p.Value, &p.MinSpend, &p.MaxDiscount, &p.StartDate, &p.EndDate, &p.Active, &p.CreatedOn)
}

func (r *promotionRepository) Create(ctx context.Context, p *domain.Promotion) error {
	p.Code = domain.NormalizePromoCode(p.Code)
	query := `INSERT INTO promotions (code, name, kind, value, min_spend, max_discount, start_date, end_date, active, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	p.CreatedOn = time.Now()
	err := conn(ctx, r.db).QueryRowContext(ctx, query, p.Code, p.Name, p.Kind, p.Value, p.MinSpend, p.MaxDiscount, p.StartDate, p.EndDate, p.Active, p.CreatedOn).Scan(&p.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("promotion %q: %w", p.Code, domain.ErrConflict)
	}
	return err
}

func (r *promotionRepository) GetByID(ctx context.Context, id int32) (*domain.Promotion, error) {
	p := &domain.Promotion{}
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE id = $1`
	if err := scanPromotion(conn(ctx, r.db).QueryRowContext(ctx, query, id), p); err != nil {
		return nil, notFound(err, domain.ErrPromoNotFound)
	}
	return p, nil
}

func (r *promotionRepository) GetByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	p := &domain.Promotion{}
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE code = $1`
	if err := scanPromotion(conn(ctx, r.db).QueryRowContext(ctx, query, domain.NormalizePromoCode(code)), p); err != nil {
		return nil, notFound(err, domain.ErrPromoNotFound)
	}
	return p, nil
}

func (r *promotionRepository) Update(ctx context.Context, p *domain.Promotion) error {
	p.Code = domain.NormalizePromoCode(p.Code)
	query := `UPDATE promotions SET code=$1, name=$2, kind=$3, value=$4, min_spend=$5, max_discount=$6, start_date=$7, end_date=$8, active=$9 WHERE id=$10`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, p.Code, p.Name, p.Kind, p.Value, p.MinSpend, p.MaxDiscount, p.StartDate, p.EndDate, p.Active, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("promotion %q: %w", p.Code, domain.ErrConflict)
		}
		return err
	}
	return expectOneRow(res, domain.ErrPromoNotFound)
}

func (r *promotionRepository) List(ctx context.Context) ([]domain.Promotion, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT `+promotionColumns+` FROM promotions ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []domain.Promotion
	for rows.Next() {
		var p domain.Promotion
		if err := scanPromotion(rows, &p); err != nil {
			return nil, err
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}
