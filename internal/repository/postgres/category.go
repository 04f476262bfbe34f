package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/repository"
)

type categoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `INSERT INTO categories (name, description, created_on) VALUES ($1, $2, $3) RETURNING id`
	c.CreatedOn = time.Now()
	err := conn(ctx, r.db).QueryRowContext(ctx, query, c.Name, c.Description, c.CreatedOn).Scan(&c.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", c.Name, domain.ErrConflict)
	}
	return err
}

func (r *categoryRepository) GetByID(ctx context.Context, id int32) (*domain.Category, error) {
	c := &domain.Category{}
	query := `SELECT id, name, COALESCE(description, ''), created_on FROM categories WHERE id = $1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedOn)
	if err != nil {
		return nil, notFound(err, domain.ErrCategoryNotFound)
	}
	return c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT id, name, COALESCE(description, ''), created_on FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedOn); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
