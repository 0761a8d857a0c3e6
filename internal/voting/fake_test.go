package voting

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"
)

type vote struct {
	UserID    int64
	VariantID int64
}

type voterKey struct {
	UserID, PostID int64
}

// fakeStore does not serialize transactions on its own. Only LockVoter keeps
// concurrent vote changes apart, the way the advisory lock does in Postgres.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	posts    map[int64]bool
	variants map[int64]Variant
	votes    map[int64]vote
	users    map[int64]string

	locksMu sync.Mutex
	locks   map[voterKey]*sync.Mutex
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts:    map[int64]bool{},
		variants: map[int64]Variant{},
		votes:    map[int64]vote{},
		users:    map[int64]string{},
		locks:    map[voterKey]*sync.Mutex{},
	}
}

func (f *fakeStore) addPost(options ...string) (int64, []int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	postID := f.nextID
	f.posts[postID] = true

	ids := make([]int64, 0, len(options))
	for _, text := range options {
		f.nextID++
		f.variants[f.nextID] = Variant{ID: f.nextID, PostID: postID, Text: text, CreatedAt: time.Now()}
		ids = append(ids, f.nextID)
	}
	return postID, ids
}

// userVotes returns the variants userID holds a vote on within postID.
func (f *fakeStore) userVotes(userID, postID int64) []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int64
	for _, v := range f.votes {
		if v.UserID == userID && f.variants[v.VariantID].PostID == postID {
			out = append(out, v.VariantID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (f *fakeStore) InTx(ctx context.Context, fn func(Tx) error) error {
	tx := &fakeTx{store: f}
	defer tx.release()
	return fn(tx)
}

func (f *fakeStore) GetVariant(_ context.Context, id int64) (*Variant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.variants[id]
	if !ok {
		return nil, ErrVariantNotFound
	}
	return &v, nil
}

func (f *fakeStore) Counts(_ context.Context, postID, userID int64) ([]VariantCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []int64
	for id, v := range f.variants {
		if v.PostID == postID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	counts := make([]VariantCount, 0, len(ids))
	for _, id := range ids {
		c := VariantCount{ID: id, Text: f.variants[id].Text}
		for _, v := range f.votes {
			if v.VariantID == id {
				c.Votes++
				if v.UserID == userID {
					c.UserVoted = true
				}
			}
		}
		counts = append(counts, c)
	}
	return counts, nil
}

func (f *fakeStore) Voters(_ context.Context, variantID int64) ([]Voter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []int64
	for id, v := range f.votes {
		if v.VariantID == variantID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var voters []Voter
	for _, id := range ids {
		userID := f.votes[id].UserID
		voters = append(voters, Voter{ID: userID, Username: f.users[userID]})
	}
	return voters, nil
}

type fakeTx struct {
	store *fakeStore
	held  []*sync.Mutex
}

func (t *fakeTx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
	t.held = nil
}

func (t *fakeTx) LockVoter(_ context.Context, userID, postID int64) error {
	f := t.store
	f.locksMu.Lock()
	m, ok := f.locks[voterKey{userID, postID}]
	if !ok {
		m = &sync.Mutex{}
		f.locks[voterKey{userID, postID}] = m
	}
	f.locksMu.Unlock()

	m.Lock()
	t.held = append(t.held, m)
	return nil
}

func (t *fakeTx) GetVariant(ctx context.Context, id int64) (*Variant, error) {
	return t.store.GetVariant(ctx, id)
}

func (t *fakeTx) PostExists(_ context.Context, postID int64) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.posts[postID], nil
}

func (t *fakeTx) VariantIDs(_ context.Context, postID int64) ([]int64, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	var ids []int64
	for id, v := range t.store.variants {
		if v.PostID == postID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (t *fakeTx) DeleteVotes(_ context.Context, userID int64, variantIDs []int64) (int64, error) {
	// widen the window between delete and insert
	runtime.Gosched()

	f := t.store
	f.mu.Lock()
	defer f.mu.Unlock()

	wanted := map[int64]bool{}
	for _, id := range variantIDs {
		wanted[id] = true
	}
	var n int64
	for id, v := range f.votes {
		if v.UserID == userID && wanted[v.VariantID] {
			delete(f.votes, id)
			n++
		}
	}
	return n, nil
}

func (t *fakeTx) InsertVote(_ context.Context, userID, variantID int64) (int64, error) {
	runtime.Gosched()

	f := t.store
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.variants[variantID]; !ok {
		return 0, ErrVariantNotFound
	}
	f.nextID++
	f.votes[f.nextID] = vote{UserID: userID, VariantID: variantID}
	return f.nextID, nil
}
