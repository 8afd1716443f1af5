package feed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jwong2529/humor-study/internal/domain/model"
	pgrepo "github.com/jwong2529/humor-study/internal/repo/postgres"
	mediasvc "github.com/jwong2529/humor-study/internal/services/media"
)

const defaultLimit = 500

var ErrLoadFailed = errors.New("feed load failed")

type Repository interface {
	ListFeed(ctx context.Context, viewerID uuid.UUID, limit int) ([]pgrepo.FeedRow, error)
}

type ImageResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

type Config struct {
	Limit   int
	Shuffle bool
}

type Service struct {
	repo     Repository
	resolver ImageResolver
	cfg      Config
	logger   *zap.Logger
	shuffle  func(n int, swap func(i, j int))
	now      func() time.Time
}

func NewService(repo Repository, resolver ImageResolver, cfg Config, logger *zap.Logger) *Service {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repo:     repo,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
		shuffle:  rand.Shuffle,
		now:      time.Now,
	}
}

// LoadFeed returns the viewer's whole session feed in presentation order.
// Captions without a usable image are dropped; any other failure fails the
// whole load.
func (s *Service) LoadFeed(ctx context.Context, viewerID uuid.UUID) ([]model.FeedItem, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: feed repository is nil", ErrLoadFailed)
	}

	startedAt := s.now()
	rows, err := s.repo.ListFeed(ctx, viewerID, s.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	items := make([]model.FeedItem, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		ref := strings.TrimSpace(row.ImageURL)
		if ref == "" {
			dropped++
			continue
		}

		imageURL := ref
		if s.resolver != nil {
			imageURL, err = s.resolver.Resolve(ctx, ref)
			if errors.Is(err, mediasvc.ErrInvalidRef) {
				dropped++
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
			}
		}

		items = append(items, model.FeedItem{
			ID:       row.CaptionID.String(),
			ImageURL: imageURL,
			Content:  row.Content,
			Votes: model.VoteTally{
				Upvotes:   row.Upvotes,
				Downvotes: row.Downvotes,
				Mine:      row.MyVote,
			},
		})
	}

	if s.cfg.Shuffle && s.shuffle != nil {
		s.shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
	}

	s.logger.Debug("feed loaded",
		zap.String("profile_id", viewerID.String()),
		zap.Int("items", len(items)),
		zap.Int("dropped", dropped),
		zap.Duration("took", s.now().Sub(startedAt)),
	)

	return items, nil
}
