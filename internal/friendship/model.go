package friendship

import "time"

type Request struct {
	ID        int64
	AuthorID  int64
	GetterID  int64
	CreatedAt time.Time
}

// IncomingRequest is a pending request as shown to its getter.
type IncomingRequest struct {
	ID             int64  `json:"id"`
	AuthorID       int64  `json:"author_id"`
	AuthorUsername string `json:"author_username"`
}

type Friend struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type RequestsResponse struct {
	FriendshipRequests []IncomingRequest `json:"friendship_requests"`
}

type FriendsResponse struct {
	FriendsList []Friend `json:"friends_list"`
}

type IsFriendResponse struct {
	IsFriend bool `json:"isFriend"`
}

const (
	StatusRequested = "requested"
	StatusFriends   = "friends"
)
