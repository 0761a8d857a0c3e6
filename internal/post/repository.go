package post

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-social/internal/apperr"
	"go-social/internal/db"
)

var (
	ErrPostNotFound    = apperr.NotFound("post_not_found", "post does not exist")
	ErrCommentNotFound = apperr.NotFound("comment_not_found", "comment does not exist")
	ErrMediaNotFound   = apperr.NotFound("media_not_found", "image does not exist")
)

// Store is the persistence the post service depends on.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
	GetPost(ctx context.Context, id int64) (*Post, error)
	DeletePost(ctx context.Context, id int64) error
	GetComment(ctx context.Context, id int64) (*Comment, error)
	CreateComment(ctx context.Context, c *Comment) error
	DeleteComment(ctx context.Context, id int64) error
	AddMedia(ctx context.Context, postID int64, image []byte) (int64, error)
	GetMedia(ctx context.Context, id int64) (*Media, error)
	DeleteMedia(ctx context.Context, id int64) error
	ComplainAboutPost(ctx context.Context, authorID, postID int64) error
	ComplainAboutComment(ctx context.Context, authorID, commentID int64) error
}

// Tx holds the writes that must happen together.
type Tx interface {
	CreatePost(ctx context.Context, p *Post) error
	UpdatePostText(ctx context.Context, id int64, text string) error
	DeleteVariants(ctx context.Context, postID int64) error
	CreateVariant(ctx context.Context, postID int64, text string) (int64, error)
	DeleteLike(ctx context.Context, postID, userID int64) (bool, error)
	InsertLike(ctx context.Context, postID, userID int64) error
	CountLikes(ctx context.Context, postID int64) (int64, error)
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

func (r *Repository) GetPost(ctx context.Context, id int64) (*Post, error) {
	p := &Post{}
	err := r.pool.QueryRow(ctx, `SELECT id, text, author_id, created_at FROM posts WHERE id = $1`, id).
		Scan(&p.ID, &p.Text, &p.AuthorID, &p.CreatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("select post: %w", err)
	}
	return p, nil
}

// DeletePost removes the post. Variants, votes, comments, likes, media and
// complaints go with it through ON DELETE CASCADE in the same statement.
func (r *Repository) DeletePost(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *Repository) GetComment(ctx context.Context, id int64) (*Comment, error) {
	c := &Comment{}
	err := r.pool.QueryRow(ctx, `SELECT id, text, author_id, post_id, created_at FROM comments WHERE id = $1`, id).
		Scan(&c.ID, &c.Text, &c.AuthorID, &c.PostID, &c.CreatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("select comment: %w", err)
	}
	return c, nil
}

func (r *Repository) CreateComment(ctx context.Context, c *Comment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO comments (text, author_id, post_id) VALUES ($1, $2, $3) RETURNING id, created_at`,
		c.Text, c.AuthorID, c.PostID,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err, "comments_post_id_fkey") {
			return ErrPostNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *Repository) DeleteComment(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *Repository) AddMedia(ctx context.Context, postID int64, image []byte) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO media_in_post (post_id, image) VALUES ($1, $2) RETURNING id`, postID, image).
		Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return 0, ErrPostNotFound
		}
		return 0, fmt.Errorf("insert post media: %w", err)
	}
	return id, nil
}

func (r *Repository) GetMedia(ctx context.Context, id int64) (*Media, error) {
	m := &Media{}
	err := r.pool.QueryRow(ctx, `SELECT id, post_id, image FROM media_in_post WHERE id = $1`, id).
		Scan(&m.ID, &m.PostID, &m.Image)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("select post media: %w", err)
	}
	return m, nil
}

func (r *Repository) DeleteMedia(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM media_in_post WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMediaNotFound
	}
	return nil
}

func (r *Repository) ComplainAboutPost(ctx context.Context, authorID, postID int64) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO complaints_about_post (author_id, post_id) VALUES ($1, $2)`, authorID, postID)
	if err != nil {
		if db.IsForeignKeyViolation(err, "complaints_about_post_post_id_fkey") {
			return ErrPostNotFound
		}
		return fmt.Errorf("insert post complaint: %w", err)
	}
	return nil
}

func (r *Repository) ComplainAboutComment(ctx context.Context, authorID, commentID int64) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO complaints_about_comment (author_id, comment_id) VALUES ($1, $2)`, authorID, commentID)
	if err != nil {
		if db.IsForeignKeyViolation(err, "complaints_about_comment_comment_id_fkey") {
			return ErrCommentNotFound
		}
		return fmt.Errorf("insert comment complaint: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) CreatePost(ctx context.Context, p *Post) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO posts (text, author_id) VALUES ($1, $2) RETURNING id, created_at`,
		p.Text, p.AuthorID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (t *pgTx) UpdatePostText(ctx context.Context, id int64, text string) error {
	tag, err := t.tx.Exec(ctx, `UPDATE posts SET text = $2 WHERE id = $1`, id, text)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (t *pgTx) DeleteVariants(ctx context.Context, postID int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM voting_variants WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete variants: %w", err)
	}
	return nil
}

func (t *pgTx) CreateVariant(ctx context.Context, postID int64, text string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO voting_variants (post_id, text) VALUES ($1, $2) RETURNING id`, postID, text).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert variant: %w", err)
	}
	return id, nil
}

func (t *pgTx) DeleteLike(ctx context.Context, postID, userID int64) (bool, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM likes WHERE post_id = $1 AND author_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (t *pgTx) InsertLike(ctx context.Context, postID, userID int64) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO likes (post_id, author_id) VALUES ($1, $2) ON CONFLICT (author_id, post_id) DO NOTHING`,
		postID, userID,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err, "likes_post_id_fkey") {
			return ErrPostNotFound
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

func (t *pgTx) CountLikes(ctx context.Context, postID int64) (int64, error) {
	var n int64
	if err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}
