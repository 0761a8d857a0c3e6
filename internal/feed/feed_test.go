package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-social/internal/apperr"
	myMiddleware "go-social/internal/middleware"
	"go-social/internal/voting"
)

func seed() (*fakeStore, *fakePolls) {
	store := newFakeStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")
	store.addPost(10, 1, "first post")
	store.addPost(11, 2, "second post")
	store.addPost(12, 1, "third post")

	store.likes[10] = map[int64]bool{1: true, 2: true}
	store.likes[11] = map[int64]bool{1: true}
	store.comments[10] = []CommentView{{ID: 100, Text: "nice", AuthorID: 2, AuthorUsername: "bob"}}
	store.media[10] = []int64{7, 8}

	polls := &fakePolls{results: map[int64][]voting.VariantResult{
		10: {{ID: 1, Text: "yes", Percent: 100, VotesCount: 1, UserVoted: true}, {ID: 2, Text: "no"}},
	}}
	return store, polls
}

func TestPostView(t *testing.T) {
	t.Parallel()
	store, polls := seed()
	a := NewAggregator(store, polls)

	v, err := a.Post(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, "first post", v.Text)
	assert.Equal(t, "alice", v.AuthorUsername)
	assert.Equal(t, int64(2), v.LikesCount)
	assert.True(t, v.LikedStatus)
	assert.Equal(t, int64(1), v.CommentsCount)
	assert.Len(t, v.Comments, 1)
	assert.Equal(t, []int64{7, 8}, v.ImagesID)
	require.Len(t, v.VotingVariants, 2)
	assert.True(t, v.VotingVariants[0].UserVoted)

	bare, err := a.Post(context.Background(), 2, 12)
	require.NoError(t, err)
	assert.False(t, bare.LikedStatus)
	assert.NotNil(t, bare.Comments)
	assert.NotNil(t, bare.ImagesID)
	assert.NotNil(t, bare.VotingVariants)

	_, err = a.Post(context.Background(), 2, 99)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPostsNewestFirst(t *testing.T) {
	t.Parallel()
	store, polls := seed()
	a := NewAggregator(store, polls)

	posts, err := a.Posts(context.Background(), 1, Page{})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []int64{12, 11, 10}, []int64{posts[0].ID, posts[1].ID, posts[2].ID})
	assert.True(t, posts[1].LikedStatus)

	_, err = a.Posts(context.Background(), 1, Page{Limit: 1000})
	require.NoError(t, err)
	require.Equal(t, DefaultPageSize, store.pages[0].Limit)
	require.Equal(t, MaxPageSize, store.pages[1].Limit)

	page, err := a.Posts(context.Background(), 1, Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(11), page[0].ID)
}

func TestPollFailureFailsListing(t *testing.T) {
	t.Parallel()
	store, polls := seed()
	polls.fail = true

	_, err := NewAggregator(store, polls).Posts(context.Background(), 1, Page{})
	require.ErrorIs(t, err, errPollsDown)
}

func TestUserPostsAndProfile(t *testing.T) {
	t.Parallel()
	store, polls := seed()
	a := NewAggregator(store, polls)
	ctx := context.Background()

	posts, err := a.UserPosts(ctx, 2, 1, Page{})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, int64(1), p.AuthorID)
	}

	_, err = a.UserPosts(ctx, 2, 42, Page{})
	require.ErrorIs(t, err, ErrUserNotFound)

	profile, err := a.Profile(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Username)
	assert.Equal(t, "bob@example.com", profile.Email)
	require.Len(t, profile.Posts, 1)
	assert.Equal(t, "second post", profile.Posts[0].Text)

	_, err = a.Profile(ctx, 1, 42)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestHandlers(t *testing.T) {
	t.Parallel()
	store, polls := seed()
	h := NewHandler(NewAggregator(store, polls), zap.NewNop().Sugar())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(myMiddleware.WithUserID(req.Context(), 2)))
		})
	})
	r.Get("/posts", h.Posts)
	r.Get("/posts/{id}", h.Post)
	r.Get("/users/{id}/posts", h.UserPosts)
	r.Get("/profile/posts", h.MyPosts)
	r.Get("/mypage", h.MyPage)
	r.Get("/users/{id}", h.UserPage)

	serve := func(target string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		return rr
	}

	rr := serve("/posts/10")
	require.Equal(t, http.StatusOK, rr.Code)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	for _, key := range []string{"id", "text", "author_id", "author_username", "created_at", "likes_count",
		"liked_status", "comments_count", "comments", "images_id", "voting_variants"} {
		assert.Contains(t, raw, key)
	}

	rr = serve("/posts?limit=2")
	require.Equal(t, http.StatusOK, rr.Code)
	var list PostsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Posts, 2)

	require.Equal(t, http.StatusBadRequest, serve("/posts?limit=-1").Code)
	require.Equal(t, http.StatusNotFound, serve("/posts/99").Code)
	require.Equal(t, http.StatusNotFound, serve("/users/99/posts").Code)

	rr = serve("/profile/posts")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Posts, 1)

	rr = serve("/mypage")
	require.Equal(t, http.StatusOK, rr.Code)
	var profile Profile
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, "bob", profile.Username)

	rr = serve("/users/1")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, "alice", profile.Username)
	assert.Len(t, profile.Posts, 2)
}
