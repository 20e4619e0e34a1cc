package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenloop/greenloop/internal/platform/db"
	"github.com/greenloop/greenloop/internal/shared"
)

// ErrEmailTaken indicates a duplicate email on create.
var ErrEmailTaken = errors.New("users: email already registered")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns one page of users and the total count.
func (r *Repository) ListUsers(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, email, name, role, is_active, created_at, updated_at
		   FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// GetUser fetches a user by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, role, is_active, created_at, updated_at
		   FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// CreateUser inserts an account together with its empty progression row
// and returns the new ID.
func (r *Repository) CreateUser(ctx context.Context, email, name, role, passwordHash string) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (email, name, role, password_hash, is_active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
			 RETURNING id`,
			email, name, role, passwordHash).Scan(&id)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO user_progression (user_id, total_xp, badge_count, updated_at)
			 VALUES ($1, 0, 0, NOW())`, id)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrEmailTaken
		}
		return 0, err
	}
	return id, nil
}

// SetRole updates the stored role for an account. Existing sessions keep
// their role until logout.
func (r *Repository) SetRole(ctx context.Context, id int64, role string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetActive toggles the account's active flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
