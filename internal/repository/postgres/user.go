package postgres

import (
	"context"
	"database/sql"
	"time"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, COALESCE(phone_number, ''), COALESCE(address, ''), password_hash, role, status, created_on, updated_on`

func scanUser(row interface{ Scan(...any) error }, u *domain.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.Address, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedOn, &u.UpdatedOn)
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (name, email, phone_number, address, password_hash, role, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	err := conn(ctx, r.db).QueryRowContext(ctx, query, u.Name, u.Email, u.PhoneNumber, u.Address, u.PasswordHash, u.Role, u.Status, now, now).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	u.CreatedOn, u.UpdatedOn = now, now
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, id), u); err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	if err := scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, email), u); err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET name=$1, phone_number=$2, address=$3, role=$4, status=$5, updated_on=$6 WHERE id=$7`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, u.Name, u.PhoneNumber, u.Address, u.Role, u.Status, time.Now(), u.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res, domain.ErrUserNotFound)
}

func (r *userRepository) ListByStatus(ctx context.Context, status domain.VerificationStatus) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_on DESC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
