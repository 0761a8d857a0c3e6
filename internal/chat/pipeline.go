package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"go-social/internal/apperr"
)

// Pipeline runs the receive loop of every chat connection: it validates
// inbound frames, stores them as messages and hands them to the registry
// for delivery.
type Pipeline struct {
	registry *Registry
	store    MessageWriter
	parsers  fastjson.ParserPool
	logger   *zap.SugaredLogger
}

func NewPipeline(registry *Registry, store MessageWriter, logger *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// Serve registers c and blocks until its transport closes or storage fails.
// c is unregistered and closed on every exit path.
func (p *Pipeline) Serve(ctx context.Context, c *Client) {
	p.registry.Register(c)
	defer func() {
		p.registry.Unregister(c)
		c.Close()
	}()

	go c.writePump()

	err := c.readPump(func(raw []byte) error {
		return p.handleFrame(ctx, c, raw)
	})

	var closeErr *websocket.CloseError
	switch {
	case errors.As(err, &closeErr):
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
			p.logger.Warnw("chat connection closed unexpectedly", "user_id", c.UserID, "error", err)
		}
	case isStorageError(err):
		p.logger.Errorw("closing chat connection after storage failure", "user_id", c.UserID, "error", err)
	default:
		p.logger.Debugw("chat connection ended", "user_id", c.UserID, "error", err)
	}
}

// handleFrame returns an error only when the connection must end. Bad
// frames and unknown recipients are answered in-band.
func (p *Pipeline) handleFrame(ctx context.Context, c *Client, raw []byte) error {
	frame, err := parseFrame(&p.parsers, raw)
	if err != nil {
		c.enqueue([]byte(replyInvalidFrame))
		return nil
	}

	msg := &Message{
		Text:     frame.Message,
		AuthorID: c.UserID,
		GetterID: frame.RecipientID,
	}
	if err := p.store.CreateMessage(ctx, msg); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.enqueue([]byte(replyRecipientNotFound))
			return nil
		}
		return &storageError{err: err}
	}

	payload, err := json.Marshal(OutboundFrame{
		ID:        msg.ID,
		AuthorID:  strconv.FormatInt(msg.AuthorID, 10),
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		return &storageError{err: err}
	}

	p.registry.Send(msg.GetterID, payload)
	return nil
}

type storageError struct {
	err error
}

func (e *storageError) Error() string { return "store message: " + e.err.Error() }
func (e *storageError) Unwrap() error { return e.err }

func isStorageError(err error) bool {
	var se *storageError
	return errors.As(err, &se)
}
