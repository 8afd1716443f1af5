package votes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jwong2529/humor-study/internal/domain/enums"
	"github.com/jwong2529/humor-study/internal/domain/model"
	pgrepo "github.com/jwong2529/humor-study/internal/repo/postgres"
)

const swipeVoteEvent = "swipe_vote"

var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidVoteValue = errors.New("vote value must be -1 or 1")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("caption not found")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e *TooFastError) Error() string {
	return fmt.Sprintf("too many votes, retry after %ds", e.RetryAfterSec)
}

type Store interface {
	Upsert(ctx context.Context, profileID, captionID uuid.UUID, value enums.VoteValue, now time.Time) (model.CaptionVote, error)
}

type Limiter interface {
	AllowVote(ctx context.Context, profileID uuid.UUID) (int64, bool, error)
}

type EventRecorder interface {
	Record(ctx context.Context, profileID uuid.UUID, name string, props map[string]any) error
}

// Telemetry describes the gesture that produced a vote.
type Telemetry struct {
	ReleaseVX float64
	OffsetX   float64
	ViewMS    int64
	Source    string
}

type Dependencies struct {
	Store   Store
	Limiter Limiter
	Events  EventRecorder
	Logger  *zap.Logger
}

type Service struct {
	store   Store
	limiter Limiter
	events  EventRecorder
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:   deps.Store,
		limiter: deps.Limiter,
		events:  deps.Events,
		logger:  logger,
		now:     time.Now,
	}
}

// Submit records the caller's vote on a caption. Repeating a vote, or
// changing it, overwrites the earlier one.
func (s *Service) Submit(ctx context.Context, profileID uuid.UUID, captionID string, value int, telemetry *Telemetry) (model.CaptionVote, error) {
	if profileID == uuid.Nil {
		return model.CaptionVote{}, ErrUnauthorized
	}

	cid, err := uuid.Parse(strings.TrimSpace(captionID))
	if err != nil || cid == uuid.Nil {
		return model.CaptionVote{}, fmt.Errorf("%w: caption_id", ErrValidation)
	}

	vote := enums.VoteValue(value)
	if !vote.Valid() {
		s.logger.Warn("invalid vote value",
			zap.String("profile_id", profileID.String()),
			zap.String("caption_id", cid.String()),
			zap.Int("vote_value", value),
		)
		return model.CaptionVote{}, ErrInvalidVoteValue
	}

	if s.store == nil {
		return model.CaptionVote{}, fmt.Errorf("vote store is nil")
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowVote(ctx, profileID)
		if err != nil {
			return model.CaptionVote{}, fmt.Errorf("check vote rate: %w", err)
		}
		if !allowed {
			return model.CaptionVote{}, &TooFastError{RetryAfterSec: retryAfter}
		}
	}

	saved, err := s.store.Upsert(ctx, profileID, cid, vote, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrCaptionNotFound) {
			return model.CaptionVote{}, ErrNotFound
		}
		return model.CaptionVote{}, fmt.Errorf("upsert vote: %w", err)
	}

	s.recordTelemetry(ctx, saved, telemetry)

	return saved, nil
}

func (s *Service) recordTelemetry(ctx context.Context, vote model.CaptionVote, telemetry *Telemetry) {
	if s.events == nil || telemetry == nil {
		return
	}

	props := map[string]any{
		"caption_id": vote.CaptionID.String(),
		"vote_value": int(vote.Value),
		"release_vx": telemetry.ReleaseVX,
		"offset_x":   telemetry.OffsetX,
		"view_ms":    telemetry.ViewMS,
	}
	if telemetry.Source != "" {
		props["source"] = telemetry.Source
	}

	if err := s.events.Record(ctx, vote.ProfileID, swipeVoteEvent, props); err != nil {
		s.logger.Warn("record vote telemetry failed",
			zap.String("caption_id", vote.CaptionID.String()),
			zap.Error(err),
		)
	}
}
