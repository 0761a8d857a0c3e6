package voting

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-social/internal/apperr"
	"go-social/internal/db"
)

var (
	ErrVariantNotFound = apperr.NotFound("variant_not_found", "voting variant does not exist")
	ErrPostNotFound    = apperr.NotFound("post_not_found", "post does not exist")
)

// Store is the persistence the engine depends on.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
	GetVariant(ctx context.Context, id int64) (*Variant, error)
	Counts(ctx context.Context, postID, userID int64) ([]VariantCount, error)
	Voters(ctx context.Context, variantID int64) ([]Voter, error)
}

// Tx is the transactional view used by castVote and withdrawVote.
type Tx interface {
	// LockVoter serializes vote changes of one user on one post until the
	// transaction ends.
	LockVoter(ctx context.Context, userID, postID int64) error
	GetVariant(ctx context.Context, id int64) (*Variant, error)
	PostExists(ctx context.Context, postID int64) (bool, error)
	VariantIDs(ctx context.Context, postID int64) ([]int64, error)
	DeleteVotes(ctx context.Context, userID int64, variantIDs []int64) (int64, error)
	InsertVote(ctx context.Context, userID, variantID int64) (int64, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) InTx(ctx context.Context, fn func(Tx) error) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

func (r *Repository) GetVariant(ctx context.Context, id int64) (*Variant, error) {
	return getVariant(ctx, r.pool, id)
}

func (r *Repository) Counts(ctx context.Context, postID, userID int64) ([]VariantCount, error) {
	query := `
		SELECT v.id, v.text, COUNT(vo.id), COALESCE(BOOL_OR(vo.user_id = $2), false)
		FROM voting_variants v
		LEFT JOIN votes vo ON vo.variant_id = v.id
		WHERE v.post_id = $1
		GROUP BY v.id
		ORDER BY v.id
	`
	rows, err := r.pool.Query(ctx, query, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("select vote counts: %w", err)
	}
	counts, err := pgx.CollectRows(rows, pgx.RowToStructByPos[VariantCount])
	if err != nil {
		return nil, fmt.Errorf("scan vote counts: %w", err)
	}
	return counts, nil
}

func (r *Repository) Voters(ctx context.Context, variantID int64) ([]Voter, error) {
	query := `
		SELECT u.id, u.username
		FROM votes vo
		JOIN users u ON u.id = vo.user_id
		WHERE vo.variant_id = $1
		ORDER BY vo.created_at, vo.id
	`
	rows, err := r.pool.Query(ctx, query, variantID)
	if err != nil {
		return nil, fmt.Errorf("select voters: %w", err)
	}
	voters, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Voter])
	if err != nil {
		return nil, fmt.Errorf("scan voters: %w", err)
	}
	return voters, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func getVariant(ctx context.Context, q querier, id int64) (*Variant, error) {
	v := &Variant{}
	err := q.QueryRow(ctx, `SELECT id, post_id, text, created_at FROM voting_variants WHERE id = $1`, id).
		Scan(&v.ID, &v.PostID, &v.Text, &v.CreatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("select variant: %w", err)
	}
	return v, nil
}

type pgTx struct {
	tx pgx.Tx
}

// LockVoter takes a transaction scoped advisory lock keyed on the pair. Ids
// are folded into int4 keys; a collision only makes two voters wait on each
// other.
func (t *pgTx) LockVoter(ctx context.Context, userID, postID int64) error {
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, int32(userID), int32(postID)); err != nil {
		return fmt.Errorf("lock voter: %w", err)
	}
	return nil
}

func (t *pgTx) GetVariant(ctx context.Context, id int64) (*Variant, error) {
	return getVariant(ctx, t.tx, id)
}

func (t *pgTx) PostExists(ctx context.Context, postID int64) (bool, error) {
	var ok bool
	if err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return ok, nil
}

func (t *pgTx) VariantIDs(ctx context.Context, postID int64) ([]int64, error) {
	rows, err := t.tx.Query(ctx, `SELECT id FROM voting_variants WHERE post_id = $1 ORDER BY id`, postID)
	if err != nil {
		return nil, fmt.Errorf("select variants: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan variants: %w", err)
	}
	return ids, nil
}

func (t *pgTx) DeleteVotes(ctx context.Context, userID int64, variantIDs []int64) (int64, error) {
	if len(variantIDs) == 0 {
		return 0, nil
	}
	tag, err := t.tx.Exec(ctx, `DELETE FROM votes WHERE user_id = $1 AND variant_id = ANY($2)`, userID, variantIDs)
	if err != nil {
		return 0, fmt.Errorf("delete votes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) InsertVote(ctx context.Context, userID, variantID int64) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO votes (user_id, variant_id) VALUES ($1, $2) RETURNING id`, userID, variantID).
		Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err, "votes_variant_id_fkey") {
			return 0, ErrVariantNotFound
		}
		return 0, fmt.Errorf("insert vote: %w", err)
	}
	return id, nil
}
