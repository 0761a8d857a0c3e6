package chat

import (
	"sync"

	"go.uber.org/zap"
)

// Registry maps a user id to that user's live connection. A user has at most
// one entry; a new connection replaces the old one, which stays open but is
// no longer reachable through the registry.
type Registry struct {
	mu      sync.RWMutex
	clients map[int64]*Client
	closed  bool
	logger  *zap.SugaredLogger
}

func NewRegistry(logger *zap.SugaredLogger) *Registry {
	return &Registry{
		clients: make(map[int64]*Client),
		logger:  logger,
	}
}

// Register installs c for its user and returns the client it replaced, if
// any. After Shutdown the client is closed instead.
func (r *Registry) Register(c *Client) (replaced *Client) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		c.Close()
		return nil
	}
	replaced = r.clients[c.UserID]
	r.clients[c.UserID] = c
	r.mu.Unlock()

	if replaced != nil {
		r.logger.Debugw("connection replaced", "user_id", c.UserID)
	}
	return replaced
}

// Unregister removes c's entry if it still points at c. Calling it for a
// replaced or already removed client does nothing.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.clients[c.UserID]; ok && cur == c {
		delete(r.clients, c.UserID)
	}
}

// Send queues payload for userID's connection without blocking. It returns
// false when the user is offline or their buffer is full; the payload is
// dropped either way.
func (r *Registry) Send(userID int64, payload []byte) bool {
	r.mu.RLock()
	c, ok := r.clients[userID]
	r.mu.RUnlock()

	if !ok {
		return false
	}
	if !c.enqueue(payload) {
		r.logger.Debugw("dropping frame", "user_id", userID)
		return false
	}
	return true
}

// Connected reports whether userID has a registered connection.
func (r *Registry) Connected(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[userID]
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Shutdown closes every registered connection and refuses new ones.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.closed = true
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.clients = make(map[int64]*Client)
	r.mu.Unlock()

	for _, c := range clients {
		c.goAway()
	}
	r.logger.Infow("chat registry closed", "connections", len(clients))
}
