package voting

import "time"

// Variant is one option of a post's poll.
type Variant struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// VariantCount is a variant with its raw vote count, the input of Tally.
type VariantCount struct {
	ID        int64
	Text      string
	Votes     int64
	UserVoted bool
}

type VariantResult struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	Percent    int    `json:"percent"`
	VotesCount int64  `json:"votes_count"`
	UserVoted  bool   `json:"user_voted"`
}

type Voter struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type VotedUsersResponse struct {
	Users []Voter `json:"users"`
}
