package feed

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go-social/internal/voting"
)

type fakeStore struct {
	mu       sync.Mutex
	users    map[int64]UserRow
	posts    map[int64]PostRow
	likes    map[int64]map[int64]bool
	comments map[int64][]CommentView
	media    map[int64][]int64
	pages    []Page
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[int64]UserRow{},
		posts:    map[int64]PostRow{},
		likes:    map[int64]map[int64]bool{},
		comments: map[int64][]CommentView{},
		media:    map[int64][]int64{},
	}
}

func (f *fakeStore) addUser(id int64, username string) {
	f.users[id] = UserRow{ID: id, Username: username, Name: "Name" + username, Surname: "Surname", Email: username + "@example.com"}
}

func (f *fakeStore) addPost(id, authorID int64, text string) {
	f.posts[id] = PostRow{
		ID:             id,
		Text:           text,
		AuthorID:       authorID,
		AuthorUsername: f.users[authorID].Username,
		CreatedAt:      time.Date(2024, 1, 1, 0, 0, int(id), 0, time.UTC),
	}
}

func (f *fakeStore) row(viewerID int64, p PostRow) PostRow {
	p.LikesCount = int64(len(f.likes[p.ID]))
	p.Liked = f.likes[p.ID][viewerID]
	p.CommentsCount = int64(len(f.comments[p.ID]))
	return p
}

func (f *fakeStore) Posts(_ context.Context, viewerID int64, page Page) ([]PostRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)

	var out []PostRow
	for _, p := range f.posts {
		if page.AuthorID == 0 || p.AuthorID == page.AuthorID {
			out = append(out, f.row(viewerID, p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if page.Offset >= len(out) {
		return nil, nil
	}
	out = out[page.Offset:]
	if len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}

func (f *fakeStore) Post(_ context.Context, viewerID, postID int64) (*PostRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.posts[postID]
	if !ok {
		return nil, ErrPostNotFound
	}
	row := f.row(viewerID, p)
	return &row, nil
}

func (f *fakeStore) Comments(_ context.Context, postID int64) ([]CommentView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CommentView(nil), f.comments[postID]...), nil
}

func (f *fakeStore) MediaIDs(_ context.Context, postID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.media[postID]...), nil
}

func (f *fakeStore) User(_ context.Context, userID int64) (*UserRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

var errPollsDown = errors.New("polls unavailable")

type fakePolls struct {
	results map[int64][]voting.VariantResult
	fail    bool
}

func (p *fakePolls) Results(_ context.Context, postID, _ int64) ([]voting.VariantResult, error) {
	if p.fail {
		return nil, errPollsDown
	}
	return p.results[postID], nil
}
