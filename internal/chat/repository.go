package chat

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-social/internal/apperr"
	"go-social/internal/db"
)

var (
	ErrRecipientNotFound = apperr.NotFound("recipient_not_found", "recipient does not exist")
	ErrMessageNotFound   = apperr.NotFound("message_not_found", "message does not exist")
	ErrMediaNotFound     = apperr.NotFound("media_not_found", "image does not exist")
)

// MessageWriter is what the delivery pipeline needs from storage.
type MessageWriter interface {
	CreateMessage(ctx context.Context, m *Message) error
}

type Store interface {
	MessageWriter
	Username(ctx context.Context, userID int64) (string, error)
	Conversation(ctx context.Context, a, b int64) ([]Message, error)
	GetMessage(ctx context.Context, id int64) (*Message, error)
	DeleteMessage(ctx context.Context, id int64) error
	AddMedia(ctx context.Context, messageID int64, image []byte) (int64, error)
	GetMedia(ctx context.Context, id int64) (*MessageMedia, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateMessage stores m and fills its id and timestamp. A missing recipient
// is reported as ErrRecipientNotFound.
func (r *Repository) CreateMessage(ctx context.Context, m *Message) error {
	query := "INSERT INTO messages (text, author_id, getter_id) VALUES ($1, $2, $3) RETURNING id, created_at"

	err := r.pool.QueryRow(ctx, query, m.Text, m.AuthorID, m.GetterID).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err, "messages_getter_id_fkey") {
			return ErrRecipientNotFound
		}
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *Repository) Username(ctx context.Context, userID int64) (string, error) {
	var username string
	err := r.pool.QueryRow(ctx, "SELECT username FROM users WHERE id = $1", userID).Scan(&username)
	if err != nil {
		if db.IsNoRows(err) {
			return "", ErrRecipientNotFound
		}
		return "", fmt.Errorf("select username: %w", err)
	}
	return username, nil
}

// Conversation returns every message between a and b, oldest first, with the
// ids of attached images.
func (r *Repository) Conversation(ctx context.Context, a, b int64) ([]Message, error) {
	query := `
		SELECT m.id, m.text, m.author_id, m.getter_id, m.created_at,
			COALESCE(array_agg(mm.id ORDER BY mm.id) FILTER (WHERE mm.id IS NOT NULL), '{}')
		FROM messages m
		LEFT JOIN media_in_message mm ON mm.message_id = m.id
		WHERE (m.author_id = $1 AND m.getter_id = $2) OR (m.author_id = $2 AND m.getter_id = $1)
		GROUP BY m.id
		ORDER BY m.created_at, m.id
	`
	rows, err := r.pool.Query(ctx, query, a, b)
	if err != nil {
		return nil, fmt.Errorf("select conversation: %w", err)
	}
	messages, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Message])
	if err != nil {
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	return messages, nil
}

func (r *Repository) GetMessage(ctx context.Context, id int64) (*Message, error) {
	m := &Message{}
	err := r.pool.QueryRow(ctx, "SELECT id, text, author_id, getter_id, created_at FROM messages WHERE id = $1", id).
		Scan(&m.ID, &m.Text, &m.AuthorID, &m.GetterID, &m.CreatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("select message: %w", err)
	}
	return m, nil
}

func (r *Repository) DeleteMessage(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM messages WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *Repository) AddMedia(ctx context.Context, messageID int64, image []byte) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, "INSERT INTO media_in_message (message_id, image) VALUES ($1, $2) RETURNING id", messageID, image).
		Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return 0, ErrMessageNotFound
		}
		return 0, fmt.Errorf("insert message media: %w", err)
	}
	return id, nil
}

func (r *Repository) GetMedia(ctx context.Context, id int64) (*MessageMedia, error) {
	m := &MessageMedia{}
	err := r.pool.QueryRow(ctx, "SELECT id, message_id, image FROM media_in_message WHERE id = $1", id).
		Scan(&m.ID, &m.MessageID, &m.Image)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("select message media: %w", err)
	}
	return m, nil
}
