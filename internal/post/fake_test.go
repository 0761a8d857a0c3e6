package post

import (
	"context"
	"errors"
	"sync"
	"time"
)

type variant struct {
	PostID int64
	Text   string
}

type likeKey struct {
	PostID, UserID int64
}

type fakeState struct {
	nextID            int64
	posts             map[int64]Post
	variants          map[int64]variant
	likes             map[likeKey]bool
	comments          map[int64]Comment
	media             map[int64]Media
	postComplaints    []likeKey
	commentComplaints []likeKey
}

func (s *fakeState) clone() *fakeState {
	c := &fakeState{
		nextID:   s.nextID,
		posts:    map[int64]Post{},
		variants: map[int64]variant{},
		likes:    map[likeKey]bool{},
		comments: map[int64]Comment{},
		media:    map[int64]Media{},
	}
	for k, v := range s.posts {
		c.posts[k] = v
	}
	for k, v := range s.variants {
		c.variants[k] = v
	}
	for k, v := range s.likes {
		c.likes[k] = v
	}
	for k, v := range s.comments {
		c.comments[k] = v
	}
	for k, v := range s.media {
		c.media[k] = v
	}
	c.postComplaints = append(c.postComplaints, s.postComplaints...)
	c.commentComplaints = append(c.commentComplaints, s.commentComplaints...)
	return c
}

func (s *fakeState) id() int64 {
	s.nextID++
	return s.nextID
}

type fakeStore struct {
	mu    sync.Mutex
	state *fakeState
	// failVariant makes CreateVariant fail to exercise rollbacks.
	failVariant string
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: (&fakeState{}).clone()}
}

func (f *fakeStore) variantsOf(postID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for id := int64(1); id <= f.state.nextID; id++ {
		if v, ok := f.state.variants[id]; ok && v.PostID == postID {
			out = append(out, v.Text)
		}
	}
	return out
}

func (f *fakeStore) InTx(ctx context.Context, fn func(Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := f.state.clone()
	if err := fn(&fakeTx{state: f.state, failVariant: f.failVariant}); err != nil {
		f.state = snapshot
		return err
	}
	return nil
}

func (f *fakeStore) GetPost(_ context.Context, id int64) (*Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.state.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	return &p, nil
}

func (f *fakeStore) DeletePost(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(f.state.posts, id)
	for vid, v := range f.state.variants {
		if v.PostID == id {
			delete(f.state.variants, vid)
		}
	}
	for k := range f.state.likes {
		if k.PostID == id {
			delete(f.state.likes, k)
		}
	}
	for cid, c := range f.state.comments {
		if c.PostID == id {
			delete(f.state.comments, cid)
		}
	}
	for mid, m := range f.state.media {
		if m.PostID == id {
			delete(f.state.media, mid)
		}
	}
	return nil
}

func (f *fakeStore) GetComment(_ context.Context, id int64) (*Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.state.comments[id]
	if !ok {
		return nil, ErrCommentNotFound
	}
	return &c, nil
}

func (f *fakeStore) CreateComment(_ context.Context, c *Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.posts[c.PostID]; !ok {
		return ErrPostNotFound
	}
	c.ID = f.state.id()
	c.CreatedAt = time.Now()
	f.state.comments[c.ID] = *c
	return nil
}

func (f *fakeStore) DeleteComment(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.comments[id]; !ok {
		return ErrCommentNotFound
	}
	delete(f.state.comments, id)
	return nil
}

func (f *fakeStore) AddMedia(_ context.Context, postID int64, image []byte) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.posts[postID]; !ok {
		return 0, ErrPostNotFound
	}
	id := f.state.id()
	f.state.media[id] = Media{ID: id, PostID: postID, Image: image}
	return id, nil
}

func (f *fakeStore) GetMedia(_ context.Context, id int64) (*Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.state.media[id]
	if !ok {
		return nil, ErrMediaNotFound
	}
	return &m, nil
}

func (f *fakeStore) DeleteMedia(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.media[id]; !ok {
		return ErrMediaNotFound
	}
	delete(f.state.media, id)
	return nil
}

func (f *fakeStore) ComplainAboutPost(_ context.Context, authorID, postID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.postComplaints = append(f.state.postComplaints, likeKey{PostID: postID, UserID: authorID})
	return nil
}

func (f *fakeStore) ComplainAboutComment(_ context.Context, authorID, commentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.commentComplaints = append(f.state.commentComplaints, likeKey{PostID: commentID, UserID: authorID})
	return nil
}

type fakeTx struct {
	state       *fakeState
	failVariant string
}

func (t *fakeTx) CreatePost(_ context.Context, p *Post) error {
	p.ID = t.state.id()
	p.CreatedAt = time.Now()
	t.state.posts[p.ID] = *p
	return nil
}

func (t *fakeTx) UpdatePostText(_ context.Context, id int64, text string) error {
	p, ok := t.state.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	p.Text = text
	t.state.posts[id] = p
	return nil
}

func (t *fakeTx) DeleteVariants(_ context.Context, postID int64) error {
	for id, v := range t.state.variants {
		if v.PostID == postID {
			delete(t.state.variants, id)
		}
	}
	return nil
}

func (t *fakeTx) CreateVariant(_ context.Context, postID int64, text string) (int64, error) {
	if t.failVariant != "" && text == t.failVariant {
		return 0, errors.New("storage is down")
	}
	id := t.state.id()
	t.state.variants[id] = variant{PostID: postID, Text: text}
	return id, nil
}

func (t *fakeTx) DeleteLike(_ context.Context, postID, userID int64) (bool, error) {
	k := likeKey{PostID: postID, UserID: userID}
	if !t.state.likes[k] {
		return false, nil
	}
	delete(t.state.likes, k)
	return true, nil
}

func (t *fakeTx) InsertLike(_ context.Context, postID, userID int64) error {
	t.state.likes[likeKey{PostID: postID, UserID: userID}] = true
	return nil
}

func (t *fakeTx) CountLikes(_ context.Context, postID int64) (int64, error) {
	var n int64
	for k := range t.state.likes {
		if k.PostID == postID {
			n++
		}
	}
	return n, nil
}
