package post

import "time"

type Post struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	AuthorID  int64     `json:"author_id"`
	PostID    int64     `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Media is an image attached to a post.
type Media struct {
	ID     int64
	PostID int64
	Image  []byte
}

type CreatePostRequest struct {
	Text    string   `json:"text" validate:"required,storable,min=3,max=10000"`
	Options []string `json:"options" validate:"omitempty,max=20,dive,storable,min=3,max=100"`
}

// EditPostRequest changes the text when present. A present options list
// replaces the whole poll, an empty list removes it.
type EditPostRequest struct {
	Text    *string  `json:"text" validate:"omitempty,storable,min=3,max=10000"`
	Options []string `json:"options" validate:"omitempty,max=20,dive,storable,min=3,max=100"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,storable,min=3,max=10000"`
}

type LikeResponse struct {
	Status     string `json:"status"`
	LikesCount int64  `json:"likes_count"`
}

type MediaResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}
