// Package voting keeps a user's poll answers consistent: at most one vote per
// user across the variants of a post.
package voting

import (
	"context"
)

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// CastVote moves the user's vote on the variant's poll to variantID. Any
// earlier vote on a sibling variant, including variantID itself, is removed
// in the same transaction, so exactly one vote remains afterwards.
func (e *Engine) CastVote(ctx context.Context, variantID, userID int64) error {
	return e.store.InTx(ctx, func(tx Tx) error {
		variant, err := tx.GetVariant(ctx, variantID)
		if err != nil {
			return err
		}
		if err := tx.LockVoter(ctx, userID, variant.PostID); err != nil {
			return err
		}

		siblings, err := tx.VariantIDs(ctx, variant.PostID)
		if err != nil {
			return err
		}
		if _, err := tx.DeleteVotes(ctx, userID, siblings); err != nil {
			return err
		}

		_, err = tx.InsertVote(ctx, userID, variantID)
		return err
	})
}

// WithdrawVote removes the user's vote from the post's poll. Withdrawing
// without a vote is a no-op.
func (e *Engine) WithdrawVote(ctx context.Context, postID, userID int64) error {
	return e.store.InTx(ctx, func(tx Tx) error {
		ok, err := tx.PostExists(ctx, postID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPostNotFound
		}
		if err := tx.LockVoter(ctx, userID, postID); err != nil {
			return err
		}

		variants, err := tx.VariantIDs(ctx, postID)
		if err != nil {
			return err
		}
		_, err = tx.DeleteVotes(ctx, userID, variants)
		return err
	})
}

// Results returns the tallied poll of a post as seen by viewerID.
func (e *Engine) Results(ctx context.Context, postID, viewerID int64) ([]VariantResult, error) {
	counts, err := e.store.Counts(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	return Tally(counts), nil
}

// VotedUsers lists who voted for the variant.
func (e *Engine) VotedUsers(ctx context.Context, variantID int64) ([]Voter, error) {
	if _, err := e.store.GetVariant(ctx, variantID); err != nil {
		return nil, err
	}
	voters, err := e.store.Voters(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if voters == nil {
		voters = []Voter{}
	}
	return voters, nil
}
