package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var errStoreDown = errors.New("connection refused")

type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]string
	messages map[int64]Message
	media    map[int64]MessageMedia
	failNext bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[int64]string{},
		messages: map[int64]Message{},
		media:    map[int64]MessageMedia{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

// failCreate makes the next CreateMessage fail with a storage error.
func (f *fakeStore) failCreate() {
	f.mu.Lock()
	f.failNext = true
	f.mu.Unlock()
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeStore) CreateMessage(_ context.Context, m *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext {
		f.failNext = false
		return errStoreDown
	}
	if _, ok := f.users[m.GetterID]; !ok {
		return ErrRecipientNotFound
	}
	m.ID = f.id()
	m.CreatedAt = time.Now().UTC()
	f.messages[m.ID] = *m
	return nil
}

func (f *fakeStore) Username(_ context.Context, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name, ok := f.users[userID]
	if !ok {
		return "", ErrRecipientNotFound
	}
	return name, nil
}

func (f *fakeStore) Conversation(_ context.Context, a, b int64) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Message
	for _, m := range f.messages {
		if (m.AuthorID == a && m.GetterID == b) || (m.AuthorID == b && m.GetterID == a) {
			m.Media = []int64{}
			for _, md := range f.media {
				if md.MessageID == m.ID {
					m.Media = append(m.Media, md.ID)
				}
			}
			sort.Slice(m.Media, func(i, j int) bool { return m.Media[i] < m.Media[j] })
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) GetMessage(_ context.Context, id int64) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.messages[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	return &m, nil
}

func (f *fakeStore) DeleteMessage(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.messages[id]; !ok {
		return ErrMessageNotFound
	}
	delete(f.messages, id)
	for mid, md := range f.media {
		if md.MessageID == id {
			delete(f.media, mid)
		}
	}
	return nil
}

func (f *fakeStore) AddMedia(_ context.Context, messageID int64, image []byte) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.messages[messageID]; !ok {
		return 0, ErrMessageNotFound
	}
	id := f.id()
	f.media[id] = MessageMedia{ID: id, MessageID: messageID, Image: image}
	return id, nil
}

func (f *fakeStore) GetMedia(_ context.Context, id int64) (*MessageMedia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	md, ok := f.media[id]
	if !ok {
		return nil, ErrMediaNotFound
	}
	return &md, nil
}
