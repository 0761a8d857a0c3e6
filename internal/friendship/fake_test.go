package friendship

import (
	"context"
	"sort"
	"sync"
	"time"
)

type pair struct {
	A, B int64
}

func orderedPair(a, b int64) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// fakeStore runs transactions one at a time without rollback; the service
// only writes after its last check.
type fakeStore struct {
	mu          sync.Mutex
	nextID      int64
	users       map[int64]string
	requests    map[int64]Request
	friendships map[pair]bool
}

func newFakeStore(usernames ...string) *fakeStore {
	f := &fakeStore{
		users:       map[int64]string{},
		requests:    map[int64]Request{},
		friendships: map[pair]bool{},
	}
	for i, name := range usernames {
		f.users[int64(i+1)] = name
	}
	return f
}

func (f *fakeStore) InTx(_ context.Context, fn func(Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(&fakeTx{f})
}

func (f *fakeStore) GetRequest(_ context.Context, id int64) (*Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	return &req, nil
}

func (f *fakeStore) DeleteRequest(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteRequest(id)
}

func (f *fakeStore) deleteRequest(id int64) error {
	if _, ok := f.requests[id]; !ok {
		return ErrRequestNotFound
	}
	delete(f.requests, id)
	return nil
}

func (f *fakeStore) IncomingRequests(_ context.Context, userID int64) ([]IncomingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []IncomingRequest
	for _, req := range f.requests {
		if req.GetterID == userID {
			out = append(out, IncomingRequest{ID: req.ID, AuthorID: req.AuthorID, AuthorUsername: f.users[req.AuthorID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) Friends(_ context.Context, userID int64) ([]Friend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Friend
	for p := range f.friendships {
		switch userID {
		case p.A:
			out = append(out, Friend{ID: p.B, Username: f.users[p.B]})
		case p.B:
			out = append(out, Friend{ID: p.A, Username: f.users[p.A]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeStore) AreFriends(_ context.Context, a, b int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.friendships[orderedPair(a, b)], nil
}

func (f *fakeStore) DeleteFriendship(_ context.Context, a, b int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := orderedPair(a, b)
	if !f.friendships[p] {
		return false, nil
	}
	delete(f.friendships, p)
	return true, nil
}

type fakeTx struct {
	f *fakeStore
}

func (t *fakeTx) LockPair(context.Context, int64, int64) error { return nil }

func (t *fakeTx) UserExists(_ context.Context, id int64) (bool, error) {
	_, ok := t.f.users[id]
	return ok, nil
}

func (t *fakeTx) FindRequest(_ context.Context, authorID, getterID int64) (int64, bool, error) {
	for _, req := range t.f.requests {
		if req.AuthorID == authorID && req.GetterID == getterID {
			return req.ID, true, nil
		}
	}
	return 0, false, nil
}

func (t *fakeTx) AreFriends(_ context.Context, a, b int64) (bool, error) {
	return t.f.friendships[orderedPair(a, b)], nil
}

func (t *fakeTx) CreateRequest(_ context.Context, authorID, getterID int64) (int64, error) {
	t.f.nextID++
	t.f.requests[t.f.nextID] = Request{ID: t.f.nextID, AuthorID: authorID, GetterID: getterID, CreatedAt: time.Now()}
	return t.f.nextID, nil
}

func (t *fakeTx) DeleteRequest(_ context.Context, id int64) error {
	return t.f.deleteRequest(id)
}

func (t *fakeTx) CreateFriendship(_ context.Context, a, b int64) error {
	p := orderedPair(a, b)
	if t.f.friendships[p] {
		return ErrAlreadyFriends
	}
	t.f.friendships[p] = true
	return nil
}
