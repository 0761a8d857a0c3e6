package friendship

import (
	"context"

	"go-social/internal/apperr"
)

var (
	errSelfRequest    = apperr.Validation("self_friendship", "you cannot send a friendship request to yourself")
	errNotYourRequest = apperr.Forbidden("not_request_party", "only the author or the recipient can remove this request")
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// SendRequest asks getterID for friendship. When getterID has already asked
// the author, the pending request is consumed and the two become friends;
// the returned status tells which of the two happened.
func (s *Service) SendRequest(ctx context.Context, authorID, getterID int64) (string, error) {
	if authorID == getterID {
		return "", errSelfRequest
	}

	status := StatusRequested
	err := s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.LockPair(ctx, authorID, getterID); err != nil {
			return err
		}

		exists, err := tx.UserExists(ctx, getterID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}

		if _, ok, err := tx.FindRequest(ctx, authorID, getterID); err != nil {
			return err
		} else if ok {
			return ErrAlreadyRequested
		}

		friends, err := tx.AreFriends(ctx, authorID, getterID)
		if err != nil {
			return err
		}
		if friends {
			return ErrAlreadyFriends
		}

		mutualID, mutual, err := tx.FindRequest(ctx, getterID, authorID)
		if err != nil {
			return err
		}
		if mutual {
			if err := tx.DeleteRequest(ctx, mutualID); err != nil {
				return err
			}
			status = StatusFriends
			return tx.CreateFriendship(ctx, authorID, getterID)
		}

		_, err = tx.CreateRequest(ctx, authorID, getterID)
		return err
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

// RemoveRequest lets the recipient reject or the author cancel a request.
func (s *Service) RemoveRequest(ctx context.Context, userID, requestID int64) error {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.GetterID != userID && req.AuthorID != userID {
		return errNotYourRequest
	}
	return s.store.DeleteRequest(ctx, requestID)
}

func (s *Service) IncomingRequests(ctx context.Context, userID int64) ([]IncomingRequest, error) {
	requests, err := s.store.IncomingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []IncomingRequest{}
	}
	return requests, nil
}

func (s *Service) Friends(ctx context.Context, userID int64) ([]Friend, error) {
	friends, err := s.store.Friends(ctx, userID)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []Friend{}
	}
	return friends, nil
}

func (s *Service) IsFriend(ctx context.Context, userID, otherID int64) (bool, error) {
	return s.store.AreFriends(ctx, userID, otherID)
}

func (s *Service) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	removed, err := s.store.DeleteFriendship(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFriends
	}
	return nil
}
