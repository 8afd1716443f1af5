package votes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jwong2529/humor-study/internal/domain/enums"
	"github.com/jwong2529/humor-study/internal/domain/model"
	pgrepo "github.com/jwong2529/humor-study/internal/repo/postgres"
)

type voteStoreStub struct {
	votes map[[2]uuid.UUID]model.CaptionVote
	err   error
	calls int
}

func (s *voteStoreStub) Upsert(_ context.Context, profileID, captionID uuid.UUID, value enums.VoteValue, now time.Time) (model.CaptionVote, error) {
	s.calls++
	if s.err != nil {
		return model.CaptionVote{}, s.err
	}
	if s.votes == nil {
		s.votes = make(map[[2]uuid.UUID]model.CaptionVote)
	}

	key := [2]uuid.UUID{profileID, captionID}
	vote, ok := s.votes[key]
	if !ok {
		vote = model.CaptionVote{ProfileID: profileID, CaptionID: captionID, CreatedAt: now}
	}
	vote.Value = value
	vote.ModifiedAt = now
	s.votes[key] = vote
	return vote, nil
}

type limiterStub struct {
	allowed    bool
	retryAfter int64
}

func (s *limiterStub) AllowVote(_ context.Context, _ uuid.UUID) (int64, bool, error) {
	return s.retryAfter, s.allowed, nil
}

type eventRecorderStub struct {
	names []string
	props []map[string]any
	err   error
}

func (s *eventRecorderStub) Record(_ context.Context, _ uuid.UUID, name string, props map[string]any) error {
	s.names = append(s.names, name)
	s.props = append(s.props, props)
	return s.err
}

func TestSubmitUpsertsLastWriteWins(t *testing.T) {
	store := &voteStoreStub{}
	svc := NewService(Dependencies{Store: store})

	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)
	profileID, captionID := uuid.New(), uuid.New()

	svc.now = func() time.Time { return first }
	if _, err := svc.Submit(context.Background(), profileID, captionID.String(), 1, nil); err != nil {
		t.Fatalf("first vote: %v", err)
	}

	svc.now = func() time.Time { return second }
	vote, err := svc.Submit(context.Background(), profileID, captionID.String(), -1, nil)
	if err != nil {
		t.Fatalf("second vote: %v", err)
	}

	if len(store.votes) != 1 {
		t.Fatalf("expected a single stored vote, got %d", len(store.votes))
	}
	if vote.Value != enums.VoteDown || !vote.CreatedAt.Equal(first) || !vote.ModifiedAt.Equal(second) {
		t.Fatalf("unexpected stored vote: %+v", vote)
	}
}

func TestSubmitRejectsInvalidValues(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := &voteStoreStub{}
	svc := NewService(Dependencies{Store: store, Logger: zap.New(core)})

	for _, value := range []int{0, 2, -2} {
		_, err := svc.Submit(context.Background(), uuid.New(), uuid.NewString(), value, nil)
		if !errors.Is(err, ErrInvalidVoteValue) {
			t.Fatalf("expected ErrInvalidVoteValue for %d, got %v", value, err)
		}
	}
	if store.calls != 0 {
		t.Fatalf("invalid values must not reach the store")
	}
	if logs.FilterMessage("invalid vote value").Len() != 3 {
		t.Fatalf("expected a warning per rejected vote")
	}
}

func TestSubmitValidatesCallerAndCaption(t *testing.T) {
	svc := NewService(Dependencies{Store: &voteStoreStub{}})

	if _, err := svc.Submit(context.Background(), uuid.Nil, uuid.NewString(), 1, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), uuid.New(), "not-a-uuid", 1, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	missing := NewService(Dependencies{Store: &voteStoreStub{err: pgrepo.ErrCaptionNotFound}})
	if _, err := missing.Submit(context.Background(), uuid.New(), uuid.NewString(), 1, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	store := &voteStoreStub{}
	svc := NewService(Dependencies{Store: store, Limiter: &limiterStub{allowed: false, retryAfter: 7}})

	_, err := svc.Submit(context.Background(), uuid.New(), uuid.NewString(), 1, nil)
	var tooFast *TooFastError
	if !errors.As(err, &tooFast) || tooFast.RetryAfterSec != 7 {
		t.Fatalf("expected TooFastError with retry 7, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("rate limited vote must not be stored")
	}
}

func TestSubmitRecordsTelemetryAndSwallowsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	events := &eventRecorderStub{err: errors.New("insert failed")}
	svc := NewService(Dependencies{
		Store:   &voteStoreStub{},
		Limiter: &limiterStub{allowed: true},
		Events:  events,
		Logger:  zap.New(core),
	})

	captionID := uuid.New()
	_, err := svc.Submit(context.Background(), uuid.New(), captionID.String(), 1, &Telemetry{ReleaseVX: 0.42, OffsetX: 130, ViewMS: 2100})
	if err != nil {
		t.Fatalf("telemetry failure must not fail the vote: %v", err)
	}

	if len(events.names) != 1 || events.names[0] != "swipe_vote" {
		t.Fatalf("unexpected events: %+v", events.names)
	}
	props := events.props[0]
	if props["caption_id"] != captionID.String() || props["vote_value"] != 1 || props["release_vx"] != 0.42 {
		t.Fatalf("unexpected props: %+v", props)
	}
	if logs.FilterMessage("record vote telemetry failed").Len() != 1 {
		t.Fatalf("expected telemetry failure to be logged")
	}
}
