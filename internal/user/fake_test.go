package user

import (
	"context"
	"sync"
)

type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User
	avatar map[int64][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[int64]*User{}, avatar: map[int64][]byte{}}
}

func (f *fakeStore) Create(_ context.Context, u *User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.users {
		if other.Username == u.Username {
			return 0, ErrUsernameTaken
		}
		if other.Email == u.Email {
			return 0, ErrEmailTaken
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.ID] = &cp
	return u.ID, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) UsernameTaken(_ context.Context, username string, exceptID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username && u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) EmailTaken(_ context.Context, email string, exceptID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Update(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) SetAvatar(_ context.Context, id int64, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return ErrNotFound
	}
	f.avatar[id] = data
	return nil
}

func (f *fakeStore) Avatar(_ context.Context, id int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return nil, ErrNotFound
	}
	data, ok := f.avatar[id]
	if !ok {
		return nil, ErrNoAvatar
	}
	return data, nil
}
