package user

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-social/internal/apperr"
	"go-social/internal/db"
)

var (
	ErrNotFound       = apperr.NotFound("user_not_found", "user does not exist")
	ErrNoAvatar       = apperr.NotFound("avatar_not_found", "user has no avatar")
	ErrUsernameTaken  = apperr.Conflict("duplicate_username", "a user with this username already exists")
	ErrEmailTaken     = apperr.Conflict("duplicate_email", "a user with this email already exists")
	errBadCredentials = apperr.Unauthorized("invalid_credentials", "invalid email or password")
)

// Store is the persistence the user service depends on.
type Store interface {
	Create(ctx context.Context, u *User) (int64, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UsernameTaken(ctx context.Context, username string, exceptID int64) (bool, error)
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	Update(ctx context.Context, u *User) error
	SetAvatar(ctx context.Context, id int64, data []byte) error
	Avatar(ctx context.Context, id int64) ([]byte, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, u *User) (int64, error) {
	query := `INSERT INTO users (username, email, password, name, surname)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, u.Username, u.Email, u.Password, u.Name, u.Surname).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return 0, uniqueError(err)
	}
	return u.ID, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *Repository) getOne(ctx context.Context, where string, arg interface{}) (*User, error) {
	u := &User{}
	query := `SELECT id, username, email, password, name, surname, created_at FROM users WHERE ` + where

	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Name, &u.Surname, &u.CreatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *Repository) UsernameTaken(ctx context.Context, username string, exceptID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)`, username, exceptID)
}

func (r *Repository) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, exceptID)
}

func (r *Repository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return ok, nil
}

func (r *Repository) Update(ctx context.Context, u *User) error {
	query := `UPDATE users SET username = $2, email = $3, password = $4, name = $5, surname = $6, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, u.ID, u.Username, u.Email, u.Password, u.Name, u.Surname)
	if err != nil {
		return uniqueError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetAvatar(ctx context.Context, id int64, data []byte) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET avatar = $2, updated_at = NOW() WHERE id = $1`, id, data)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Avatar(ctx context.Context, id int64) ([]byte, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT avatar FROM users WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select avatar: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoAvatar
	}
	return data, nil
}

// uniqueError turns a lost race on the unique columns into the same
// Conflict the up-front checks return.
func uniqueError(err error) error {
	switch {
	case db.IsUniqueViolation(err, "users_username_key"):
		return ErrUsernameTaken
	case db.IsUniqueViolation(err, "users_email_key"):
		return ErrEmailTaken
	default:
		return fmt.Errorf("write user: %w", err)
	}
}
