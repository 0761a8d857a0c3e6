package chat

import "time"

type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	AuthorID  int64     `json:"author_id"`
	GetterID  int64     `json:"getter_id"`
	CreatedAt time.Time `json:"created_at"`
	Media     []int64   `json:"media"`
}

// MessageMedia is an image attached to a message.
type MessageMedia struct {
	ID        int64
	MessageID int64
	Image     []byte
}

type HistoryResponse struct {
	RecipientID       int64     `json:"recipient_id"`
	RecipientUsername string    `json:"recipient_username"`
	Messages          []Message `json:"messages"`
}

type MediaResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// OutboundFrame is what the recipient's socket receives for a new message.
// author_id is a string, matching how clients send recipient_id.
type OutboundFrame struct {
	ID        int64     `json:"id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
