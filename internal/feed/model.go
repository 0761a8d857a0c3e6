package feed

import (
	"time"

	"go-social/internal/voting"
)

// PostRow is a post with its per-viewer counters, as read from storage.
type PostRow struct {
	ID             int64
	Text           string
	AuthorID       int64
	AuthorUsername string
	CreatedAt      time.Time
	LikesCount     int64
	Liked          bool
	CommentsCount  int64
}

type CommentView struct {
	ID             int64     `json:"id"`
	Text           string    `json:"text"`
	AuthorID       int64     `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	CreatedAt      time.Time `json:"created_at"`
}

// PostView is the composite read model of a post: counters, comments,
// attached image ids and the poll tally for the viewer.
type PostView struct {
	ID             int64                  `json:"id"`
	Text           string                 `json:"text"`
	AuthorID       int64                  `json:"author_id"`
	AuthorUsername string                 `json:"author_username"`
	CreatedAt      time.Time              `json:"created_at"`
	LikesCount     int64                  `json:"likes_count"`
	LikedStatus    bool                   `json:"liked_status"`
	CommentsCount  int64                  `json:"comments_count"`
	Comments       []CommentView          `json:"comments"`
	ImagesID       []int64                `json:"images_id"`
	VotingVariants []voting.VariantResult `json:"voting_variants"`
}

type PostsResponse struct {
	Posts []PostView `json:"posts"`
}

type UserRow struct {
	ID       int64
	Username string
	Name     string
	Surname  string
	Email    string
}

type Profile struct {
	Username string     `json:"username"`
	Name     string     `json:"name"`
	Surname  string     `json:"surname"`
	Email    string     `json:"email"`
	Posts    []PostView `json:"posts"`
}

// Page bounds a post listing. AuthorID zero means every author.
type Page struct {
	AuthorID int64
	Limit    int
	Offset   int
}
