package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jwong2529/humor-study/internal/domain/model"
)

type CaptionRepo struct {
	pool *pgxpool.Pool
}

func NewCaptionRepo(pool *pgxpool.Pool) *CaptionRepo {
	return &CaptionRepo{pool: pool}
}

// FeedRow is a public caption with its image URL and vote aggregate. ImageURL
// is empty when the caption has no image.
type FeedRow struct {
	CaptionID uuid.UUID
	ImageURL  string
	Content   string
	Upvotes   int
	Downvotes int
	MyVote    *int
	CreatedAt time.Time
}

func (r *CaptionRepo) ListFeed(ctx context.Context, viewerID uuid.UUID, limit int) ([]FeedRow, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 500
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	c.id,
	COALESCE(i.url, ''),
	c.content,
	COUNT(v.id) FILTER (WHERE v.vote_value > 0)::int,
	COUNT(v.id) FILTER (WHERE v.vote_value < 0)::int,
	MAX(v.vote_value) FILTER (WHERE v.profile_id = $1)::int,
	c.created_datetime_utc
FROM captions c
LEFT JOIN images i ON i.id = c.image_id
LEFT JOIN caption_votes v ON v.caption_id = c.id
WHERE c.is_public = TRUE
GROUP BY c.id, i.url
ORDER BY c.created_datetime_utc DESC, c.id
LIMIT $2
`, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list feed captions: %w", err)
	}
	defer rows.Close()

	items := make([]FeedRow, 0, limit)
	for rows.Next() {
		var row FeedRow
		if err := rows.Scan(
			&row.CaptionID,
			&row.ImageURL,
			&row.Content,
			&row.Upvotes,
			&row.Downvotes,
			&row.MyVote,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan feed caption: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed captions: %w", err)
	}

	return items, nil
}

// InsertWithImage stores an image and a caption pointing at it. An empty
// imageURL stores the caption without an image.
func (r *CaptionRepo) InsertWithImage(ctx context.Context, imageURL, content string) (model.Caption, error) {
	var caption model.Caption
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if imageURL != "" {
			var imageID uuid.UUID
			if err := tx.QueryRow(ctx, `
INSERT INTO images (url) VALUES ($1)
RETURNING id
`, imageURL).Scan(&imageID); err != nil {
				return fmt.Errorf("insert image: %w", err)
			}
			caption.ImageID = &imageID
		}

		if err := tx.QueryRow(ctx, `
INSERT INTO captions (image_id, content)
VALUES ($1, $2)
RETURNING id, content, created_datetime_utc
`, caption.ImageID, content).Scan(&caption.ID, &caption.Content, &caption.CreatedAt); err != nil {
			return fmt.Errorf("insert caption: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Caption{}, err
	}

	return caption, nil
}
