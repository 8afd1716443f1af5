package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jwong2529/humor-study/internal/domain/enums"
	"github.com/jwong2529/humor-study/internal/domain/model"
)

var ErrCaptionNotFound = errors.New("caption not found")

type VoteRepo struct {
	pool *pgxpool.Pool
}

func NewVoteRepo(pool *pgxpool.Pool) *VoteRepo {
	return &VoteRepo{pool: pool}
}

// Upsert stores the viewer's vote. A later vote overwrites the value and the
// modified timestamp; the created timestamp of the first vote is kept.
func (r *VoteRepo) Upsert(ctx context.Context, profileID, captionID uuid.UUID, value enums.VoteValue, now time.Time) (model.CaptionVote, error) {
	if profileID == uuid.Nil || captionID == uuid.Nil {
		return model.CaptionVote{}, fmt.Errorf("invalid vote payload")
	}
	if !value.Valid() {
		return model.CaptionVote{}, fmt.Errorf("invalid vote value %d", value)
	}

	vote := model.CaptionVote{
		ProfileID: profileID,
		CaptionID: captionID,
		Value:     value,
	}

	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var one int
		err := tx.QueryRow(ctx, `SELECT 1 FROM captions WHERE id = $1`, captionID).Scan(&one)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCaptionNotFound
			}
			return fmt.Errorf("lookup caption: %w", err)
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO profiles (id) VALUES ($1)
ON CONFLICT (id) DO NOTHING
`, profileID); err != nil {
			return fmt.Errorf("ensure profile: %w", err)
		}

		if err := tx.QueryRow(ctx, `
INSERT INTO caption_votes (
	profile_id,
	caption_id,
	vote_value,
	created_datetime_utc,
	modified_datetime_utc
) VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (profile_id, caption_id) DO UPDATE SET
	vote_value = EXCLUDED.vote_value,
	modified_datetime_utc = EXCLUDED.modified_datetime_utc
RETURNING created_datetime_utc, modified_datetime_utc
`, profileID, captionID, int16(value), now.UTC()).Scan(&vote.CreatedAt, &vote.ModifiedAt); err != nil {
			return fmt.Errorf("upsert caption vote: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.CaptionVote{}, err
	}

	return vote, nil
}
