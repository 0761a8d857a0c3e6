package feed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-social/internal/apperr"
	"go-social/internal/db"
)

var (
	ErrPostNotFound = apperr.NotFound("post_not_found", "post does not exist")
	ErrUserNotFound = apperr.NotFound("user_not_found", "user does not exist")
)

type Store interface {
	Posts(ctx context.Context, viewerID int64, page Page) ([]PostRow, error)
	Post(ctx context.Context, viewerID, postID int64) (*PostRow, error)
	Comments(ctx context.Context, postID int64) ([]CommentView, error)
	MediaIDs(ctx context.Context, postID int64) ([]int64, error)
	User(ctx context.Context, userID int64) (*UserRow, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const postColumns = `
	SELECT p.id, p.text, p.author_id, u.username, p.created_at,
		(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
		EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.author_id = $1),
		(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

// Posts lists posts newest first.
func (r *Repository) Posts(ctx context.Context, viewerID int64, page Page) ([]PostRow, error) {
	query := postColumns + `
		WHERE ($2::bigint = 0 OR p.author_id = $2)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, viewerID, page.AuthorID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	posts, err := pgx.CollectRows(rows, pgx.RowToStructByPos[PostRow])
	if err != nil {
		return nil, fmt.Errorf("scan posts: %w", err)
	}
	return posts, nil
}

func (r *Repository) Post(ctx context.Context, viewerID, postID int64) (*PostRow, error) {
	rows, err := r.pool.Query(ctx, postColumns+" WHERE p.id = $2", viewerID, postID)
	if err != nil {
		return nil, fmt.Errorf("select post: %w", err)
	}
	post, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[PostRow])
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return post, nil
}

func (r *Repository) Comments(ctx context.Context, postID int64) ([]CommentView, error) {
	query := `
		SELECT c.id, c.text, c.author_id, u.username, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at, c.id
	`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("select comments: %w", err)
	}
	comments, err := pgx.CollectRows(rows, pgx.RowToStructByPos[CommentView])
	if err != nil {
		return nil, fmt.Errorf("scan comments: %w", err)
	}
	return comments, nil
}

func (r *Repository) MediaIDs(ctx context.Context, postID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, "SELECT id FROM media_in_post WHERE post_id = $1 ORDER BY id", postID)
	if err != nil {
		return nil, fmt.Errorf("select post media: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan post media: %w", err)
	}
	return ids, nil
}

func (r *Repository) User(ctx context.Context, userID int64) (*UserRow, error) {
	u := &UserRow{}
	err := r.pool.QueryRow(ctx, "SELECT id, username, name, surname, email FROM users WHERE id = $1", userID).
		Scan(&u.ID, &u.Username, &u.Name, &u.Surname, &u.Email)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}
