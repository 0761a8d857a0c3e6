package friendship

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-social/internal/apperr"
	"go-social/internal/db"
)

var (
	ErrUserNotFound     = apperr.NotFound("user_not_found", "user does not exist")
	ErrRequestNotFound  = apperr.NotFound("friendship_request_not_found", "friendship request does not exist")
	ErrNotFriends       = apperr.NotFound("not_friends", "you are not friends with this user")
	ErrAlreadyRequested = apperr.Conflict("duplicate_friendship_request", "you have already sent this user a friendship request")
	ErrAlreadyFriends   = apperr.Conflict("already_friends", "you are already friends with this user")
)

type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
	GetRequest(ctx context.Context, id int64) (*Request, error)
	DeleteRequest(ctx context.Context, id int64) error
	IncomingRequests(ctx context.Context, userID int64) ([]IncomingRequest, error)
	Friends(ctx context.Context, userID int64) ([]Friend, error)
	AreFriends(ctx context.Context, a, b int64) (bool, error)
	DeleteFriendship(ctx context.Context, a, b int64) (bool, error)
}

// Tx is used when a request may turn into a friendship.
type Tx interface {
	// LockPair serializes request handling between two users regardless of
	// who sends first.
	LockPair(ctx context.Context, a, b int64) error
	UserExists(ctx context.Context, id int64) (bool, error)
	FindRequest(ctx context.Context, authorID, getterID int64) (int64, bool, error)
	AreFriends(ctx context.Context, a, b int64) (bool, error)
	CreateRequest(ctx context.Context, authorID, getterID int64) (int64, error)
	DeleteRequest(ctx context.Context, id int64) error
	CreateFriendship(ctx context.Context, a, b int64) error
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) InTx(ctx context.Context, fn func(Tx) error) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

func (r *Repository) GetRequest(ctx context.Context, id int64) (*Request, error) {
	req := &Request{}
	err := r.pool.QueryRow(ctx, `SELECT id, author_id, getter_id, created_at FROM friendship_requests WHERE id = $1`, id).
		Scan(&req.ID, &req.AuthorID, &req.GetterID, &req.CreatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("select friendship request: %w", err)
	}
	return req, nil
}

func (r *Repository) DeleteRequest(ctx context.Context, id int64) error {
	return deleteRequest(ctx, r.pool, id)
}

func (r *Repository) IncomingRequests(ctx context.Context, userID int64) ([]IncomingRequest, error) {
	query := `
		SELECT fr.id, fr.author_id, u.username
		FROM friendship_requests fr
		JOIN users u ON u.id = fr.author_id
		WHERE fr.getter_id = $1
		ORDER BY fr.id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select friendship requests: %w", err)
	}
	requests, err := pgx.CollectRows(rows, pgx.RowToStructByPos[IncomingRequest])
	if err != nil {
		return nil, fmt.Errorf("scan friendship requests: %w", err)
	}
	return requests, nil
}

func (r *Repository) Friends(ctx context.Context, userID int64) ([]Friend, error) {
	query := `
		SELECT u.id, u.username
		FROM friendship f
		JOIN users u ON u.id = CASE WHEN f.first_friend_id = $1 THEN f.second_friend_id ELSE f.first_friend_id END
		WHERE f.first_friend_id = $1 OR f.second_friend_id = $1
		ORDER BY u.username
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select friends: %w", err)
	}
	friends, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Friend])
	if err != nil {
		return nil, fmt.Errorf("scan friends: %w", err)
	}
	return friends, nil
}

func (r *Repository) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	return areFriends(ctx, r.pool, a, b)
}

func (r *Repository) DeleteFriendship(ctx context.Context, a, b int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM friendship
		WHERE (first_friend_id = $1 AND second_friend_id = $2) OR (first_friend_id = $2 AND second_friend_id = $1)
	`, a, b)
	if err != nil {
		return false, fmt.Errorf("delete friendship: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

type execQuerier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func areFriends(ctx context.Context, q execQuerier, a, b int64) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friendship
			WHERE (first_friend_id = $1 AND second_friend_id = $2) OR (first_friend_id = $2 AND second_friend_id = $1)
		)
	`, a, b).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return ok, nil
}

func deleteRequest(ctx context.Context, q execQuerier, id int64) error {
	tag, err := q.Exec(ctx, `DELETE FROM friendship_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete friendship request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

// LockPair uses the single bigint advisory key space, which does not
// overlap with the two-int4 keys used for votes.
func (t *pgTx) LockPair(ctx context.Context, a, b int64) error {
	if a > b {
		a, b = b, a
	}
	key := int64(uint32(a))<<32 | int64(uint32(b))
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, key); err != nil {
		return fmt.Errorf("lock friendship pair: %w", err)
	}
	return nil
}

func (t *pgTx) UserExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return ok, nil
}

func (t *pgTx) FindRequest(ctx context.Context, authorID, getterID int64) (int64, bool, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `SELECT id FROM friendship_requests WHERE author_id = $1 AND getter_id = $2`, authorID, getterID).
		Scan(&id)
	if err != nil {
		if db.IsNoRows(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("select friendship request: %w", err)
	}
	return id, true, nil
}

func (t *pgTx) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	return areFriends(ctx, t.tx, a, b)
}

func (t *pgTx) CreateRequest(ctx context.Context, authorID, getterID int64) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO friendship_requests (author_id, getter_id) VALUES ($1, $2) RETURNING id`, authorID, getterID).
		Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrAlreadyRequested
		}
		return 0, fmt.Errorf("insert friendship request: %w", err)
	}
	return id, nil
}

func (t *pgTx) DeleteRequest(ctx context.Context, id int64) error {
	return deleteRequest(ctx, t.tx, id)
}

func (t *pgTx) CreateFriendship(ctx context.Context, a, b int64) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO friendship (first_friend_id, second_friend_id) VALUES ($1, $2)`, a, b)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyFriends
		}
		return fmt.Errorf("insert friendship: %w", err)
	}
	return nil
}
