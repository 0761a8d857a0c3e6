package feed

import (
	"context"

	"golang.org/x/sync/errgroup"

	"go-social/internal/voting"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Posts assembled concurrently per listing.
	viewWorkers = 8
)

// Polls yields the tally of a post's poll for a viewer. *voting.Engine
// satisfies it.
type Polls interface {
	Results(ctx context.Context, postID, viewerID int64) ([]voting.VariantResult, error)
}

// Aggregator composes post views and profiles from the base entities.
type Aggregator struct {
	store Store
	polls Polls
}

func NewAggregator(store Store, polls Polls) *Aggregator {
	return &Aggregator{store: store, polls: polls}
}

func (a *Aggregator) Post(ctx context.Context, viewerID, postID int64) (*PostView, error) {
	row, err := a.store.Post(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	return a.view(ctx, viewerID, row)
}

// Posts lists post views newest first. The page is clamped to MaxPageSize.
func (a *Aggregator) Posts(ctx context.Context, viewerID int64, page Page) ([]PostView, error) {
	if page.Limit <= 0 {
		page.Limit = DefaultPageSize
	}
	if page.Limit > MaxPageSize {
		page.Limit = MaxPageSize
	}

	rows, err := a.store.Posts(ctx, viewerID, page)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(viewWorkers)
	for i := range rows {
		i := i
		g.Go(func() error {
			v, err := a.view(gctx, viewerID, &rows[i])
			if err != nil {
				return err
			}
			views[i] = *v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// UserPosts lists the posts of authorID, who must exist.
func (a *Aggregator) UserPosts(ctx context.Context, viewerID, authorID int64, page Page) ([]PostView, error) {
	if _, err := a.store.User(ctx, authorID); err != nil {
		return nil, err
	}
	page.AuthorID = authorID
	return a.Posts(ctx, viewerID, page)
}

// Profile returns userID's public data with their latest posts.
func (a *Aggregator) Profile(ctx context.Context, viewerID, userID int64) (*Profile, error) {
	user, err := a.store.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := a.Posts(ctx, viewerID, Page{AuthorID: userID, Limit: MaxPageSize})
	if err != nil {
		return nil, err
	}

	return &Profile{
		Username: user.Username,
		Name:     user.Name,
		Surname:  user.Surname,
		Email:    user.Email,
		Posts:    posts,
	}, nil
}

// view loads the comments, images and poll of row in parallel.
func (a *Aggregator) view(ctx context.Context, viewerID int64, row *PostRow) (*PostView, error) {
	v := &PostView{
		ID:             row.ID,
		Text:           row.Text,
		AuthorID:       row.AuthorID,
		AuthorUsername: row.AuthorUsername,
		CreatedAt:      row.CreatedAt,
		LikesCount:     row.LikesCount,
		LikedStatus:    row.Liked,
		CommentsCount:  row.CommentsCount,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		comments, err := a.store.Comments(gctx, row.ID)
		v.Comments = comments
		return err
	})
	g.Go(func() error {
		ids, err := a.store.MediaIDs(gctx, row.ID)
		v.ImagesID = ids
		return err
	})
	g.Go(func() error {
		variants, err := a.polls.Results(gctx, row.ID, viewerID)
		v.VotingVariants = variants
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if v.Comments == nil {
		v.Comments = []CommentView{}
	}
	if v.ImagesID == nil {
		v.ImagesID = []int64{}
	}
	if v.VotingVariants == nil {
		v.VotingVariants = []voting.VariantResult{}
	}
	return v, nil
}
