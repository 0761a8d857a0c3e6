package post

import (
	"context"

	"go-social/internal/apperr"
)

var (
	errNotPostAuthor    = apperr.Forbidden("not_post_author", "you are not the author of this post")
	errNotCommentAuthor = apperr.Forbidden("not_comment_author", "you are not the author of this comment")
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreatePost stores the post and one voting variant per option in a single
// transaction.
func (s *Service) CreatePost(ctx context.Context, authorID int64, req *CreatePostRequest) (*Post, error) {
	p := &Post{Text: req.Text, AuthorID: authorID}

	err := s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.CreatePost(ctx, p); err != nil {
			return err
		}
		for _, option := range req.Options {
			if _, err := tx.CreateVariant(ctx, p.ID, option); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// EditPost updates the text and, when options are given, replaces the poll.
// Votes on the old variants disappear with them.
func (s *Service) EditPost(ctx context.Context, userID, postID int64, req *EditPostRequest) error {
	if _, err := s.ownedPost(ctx, userID, postID); err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx Tx) error {
		if req.Text != nil {
			if err := tx.UpdatePostText(ctx, postID, *req.Text); err != nil {
				return err
			}
		}
		if req.Options == nil {
			return nil
		}
		if err := tx.DeleteVariants(ctx, postID); err != nil {
			return err
		}
		for _, option := range req.Options {
			if _, err := tx.CreateVariant(ctx, postID, option); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) DeletePost(ctx context.Context, userID, postID int64) error {
	if _, err := s.ownedPost(ctx, userID, postID); err != nil {
		return err
	}
	return s.store.DeletePost(ctx, postID)
}

func (s *Service) CreateComment(ctx context.Context, userID, postID int64, req *CommentRequest) (*Comment, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	c := &Comment{Text: req.Text, AuthorID: userID, PostID: postID}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteComment(ctx context.Context, userID, commentID int64) error {
	c, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AuthorID != userID {
		return errNotCommentAuthor
	}
	return s.store.DeleteComment(ctx, commentID)
}

// ToggleLike removes the caller's like if there is one and adds it otherwise.
func (s *Service) ToggleLike(ctx context.Context, userID, postID int64) (*LikeResponse, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	resp := &LikeResponse{}
	err := s.store.InTx(ctx, func(tx Tx) error {
		removed, err := tx.DeleteLike(ctx, postID, userID)
		if err != nil {
			return err
		}
		resp.Status = "unliked"
		if !removed {
			if err := tx.InsertLike(ctx, postID, userID); err != nil {
				return err
			}
			resp.Status = "liked"
		}
		resp.LikesCount, err = tx.CountLikes(ctx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) AddMedia(ctx context.Context, userID, postID int64, image []byte) (int64, error) {
	if _, err := s.ownedPost(ctx, userID, postID); err != nil {
		return 0, err
	}
	return s.store.AddMedia(ctx, postID, image)
}

func (s *Service) Media(ctx context.Context, id int64) ([]byte, error) {
	m, err := s.store.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.Image, nil
}

// DeleteMedia is allowed to the author of the post the image belongs to.
func (s *Service) DeleteMedia(ctx context.Context, userID, mediaID int64) error {
	m, err := s.store.GetMedia(ctx, mediaID)
	if err != nil {
		return err
	}
	if _, err := s.ownedPost(ctx, userID, m.PostID); err != nil {
		return err
	}
	return s.store.DeleteMedia(ctx, mediaID)
}

func (s *Service) ComplainAboutPost(ctx context.Context, userID, postID int64) error {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return err
	}
	return s.store.ComplainAboutPost(ctx, userID, postID)
}

func (s *Service) ComplainAboutComment(ctx context.Context, userID, commentID int64) error {
	if _, err := s.store.GetComment(ctx, commentID); err != nil {
		return err
	}
	return s.store.ComplainAboutComment(ctx, userID, commentID)
}

func (s *Service) ownedPost(ctx context.Context, userID, postID int64) (*Post, error) {
	p, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != userID {
		return nil, errNotPostAuthor
	}
	return p, nil
}
