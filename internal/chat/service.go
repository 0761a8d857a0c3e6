package chat

import (
	"context"

	"go-social/internal/apperr"
)

var (
	errNotMessageAuthor = apperr.Forbidden("not_message_author", "you are not the author of this message")
	errNotParticipant   = apperr.Forbidden("not_participant", "you are not a participant of this conversation")
)

// Service covers the request/response side of chat: history and message
// attachments. Live delivery goes through Pipeline.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// History returns the conversation between userID and recipientID.
func (s *Service) History(ctx context.Context, userID, recipientID int64) (*HistoryResponse, error) {
	username, err := s.store.Username(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.Conversation(ctx, userID, recipientID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []Message{}
	}

	return &HistoryResponse{
		RecipientID:       recipientID,
		RecipientUsername: username,
		Messages:          messages,
	}, nil
}

func (s *Service) DeleteMessage(ctx context.Context, userID, messageID int64) error {
	if _, err := s.ownedMessage(ctx, userID, messageID); err != nil {
		return err
	}
	return s.store.DeleteMessage(ctx, messageID)
}

func (s *Service) AddMedia(ctx context.Context, userID, messageID int64, image []byte) (int64, error) {
	if _, err := s.ownedMessage(ctx, userID, messageID); err != nil {
		return 0, err
	}
	return s.store.AddMedia(ctx, messageID, image)
}

// Media returns an attached image to either side of the conversation.
func (s *Service) Media(ctx context.Context, userID, mediaID int64) (*MessageMedia, error) {
	media, err := s.store.GetMedia(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	msg, err := s.store.GetMessage(ctx, media.MessageID)
	if err != nil {
		return nil, err
	}
	if msg.AuthorID != userID && msg.GetterID != userID {
		return nil, errNotParticipant
	}
	return media, nil
}

func (s *Service) ownedMessage(ctx context.Context, userID, messageID int64) (*Message, error) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.AuthorID != userID {
		return nil, errNotMessageAuthor
	}
	return msg, nil
}
