package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"go-social/internal/chat"
	"go-social/internal/feed"
	"go-social/internal/friendship"
	"go-social/internal/httpx"
	myMiddleware "go-social/internal/middleware"
	"go-social/internal/post"
	"go-social/internal/user"
	"go-social/internal/voting"
)

// Handlers groups the feature handlers mounted by NewRouter.
type Handlers struct {
	User       *user.Handler
	Post       *post.Handler
	Voting     *voting.Handler
	Friendship *friendship.Handler
	Chat       *chat.Handler
	Feed       *feed.Handler
}

// NewRouter mounts every route. Everything except registration, login,
// logout and the health probe sits behind authenticate.
func NewRouter(h Handlers, authenticate func(http.Handler) http.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(myMiddleware.RequestLogger(logger))

	// Public Routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, httpx.OK)
	})
	r.Post("/register", h.User.Register)
	r.Post("/login", h.User.Login)
	r.Post("/logout", h.User.Logout)

	// Protected Routes
	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/my_id", h.User.MyID)
		r.Put("/profile", h.User.EditProfile)
		r.Post("/avatar", h.User.UploadAvatar)
		r.Get("/user/{id}/avatar", h.User.GetAvatar)

		r.Post("/post", h.Post.CreatePost)
		r.Put("/post/{id}", h.Post.EditPost)
		r.Delete("/post/{id}", h.Post.DeletePost)
		r.Post("/post/{id}/comment", h.Post.CreateComment)
		r.Delete("/comment/{id}", h.Post.DeleteComment)
		r.Post("/post/{id}/like", h.Post.ToggleLike)
		r.Post("/posts/{id}/media", h.Post.AddMedia)
		r.Get("/posts/image/{id}", h.Post.GetMedia)
		r.Delete("/posts/image/{id}", h.Post.DeleteMedia)
		r.Post("/complaint_post/{id}", h.Post.ComplainAboutPost)
		r.Post("/complaint_comment/{id}", h.Post.ComplainAboutComment)

		r.Post("/vote/{id}", h.Voting.Vote)
		r.Delete("/vote/{id}", h.Voting.Withdraw)
		r.Get("/voted_users/{id}", h.Voting.VotedUsers)

		r.Get("/posts", h.Feed.Posts)
		r.Get("/posts/{id}", h.Feed.Post)
		r.Get("/users/{id}/posts", h.Feed.UserPosts)
		r.Get("/profile/posts", h.Feed.MyPosts)
		r.Get("/mypage", h.Feed.MyPage)
		r.Get("/users/{id}", h.Feed.UserPage)

		r.Post("/friendship_request/{id}", h.Friendship.SendRequest)
		r.Delete("/friendship_request/{id}", h.Friendship.RemoveRequest)
		r.Get("/friendship_requests", h.Friendship.IncomingRequests)
		r.Get("/friends", h.Friendship.Friends)
		r.Get("/isfriend/{id}", h.Friendship.IsFriend)
		r.Delete("/friend/{id}", h.Friendship.RemoveFriend)

		// WebSocket (Real-time)
		r.Get("/chatsocket/{id}", h.Chat.ServeWs)
		r.Get("/chat/{id}", h.Chat.History)
		r.Delete("/message/{id}", h.Chat.DeleteMessage)
		r.Post("/messages/{id}/media", h.Chat.AddMedia)
		r.Get("/messages/image/{id}", h.Chat.GetMedia)
	})

	return r
}
