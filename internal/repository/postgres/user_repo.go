package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventhub/internal/domain"
)

const userColumns = `id, email, username, first_name, last_name, role, is_active, created_at, updated_at`

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{
		DB: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User, passwordHash string) error {
	query := `
		INSERT INTO users (email, username, first_name, last_name, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := q(ctx, r.DB).QueryRowContext(ctx, query,
		user.Email, user.Username, user.FirstName, user.LastName, passwordHash,
		user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	query := fmt.Sprintf(`SELECT %s, password_hash FROM users WHERE email = $1`, userColumns)
	u := &domain.User{}
	var hash string
	err := q(ctx, r.DB).QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Role,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt, &hash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.ErrUserNotFound
		}
		return nil, "", err
	}
	return u, hash, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *userRepository) List(ctx context.Context, filter domain.UserFilter, params domain.PaginationParams) ([]*domain.User, int, error) {
	clauses := []string{}
	args := []interface{}{}
	if filter.Role != "" {
		clauses = append(clauses, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.IsActive != nil {
		clauses = append(clauses, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := q(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	rows, err := q(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users, err := r.scanAll(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id, role string) (*domain.User, error) {
	query := fmt.Sprintf(`
		UPDATE users SET role = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING %s
	`, userColumns)
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query, role, id))
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	query := fmt.Sprintf(`
		UPDATE users SET is_active = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING %s
	`, userColumns)
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query, active, id))
}

func (r *userRepository) CountActive(ctx context.Context) (int, error) {
	var total int
	err := q(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_active = TRUE`).Scan(&total)
	return total, err
}

func (r *userRepository) ListRecent(ctx context.Context, limit int) ([]*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE is_active = TRUE ORDER BY created_at DESC LIMIT $1`, userColumns)
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *userRepository) scanOne(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Role,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) scanAll(rows *sql.Rows) ([]*domain.User, error) {
	users := make([]*domain.User, 0)
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Role,
			&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
