package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	pgrepo "github.com/jwong2529/humor-study/internal/repo/postgres"
	mediasvc "github.com/jwong2529/humor-study/internal/services/media"
)

type feedRepoStub struct {
	rows      []pgrepo.FeedRow
	err       error
	lastLimit int
	viewer    uuid.UUID
}

func (s *feedRepoStub) ListFeed(_ context.Context, viewerID uuid.UUID, limit int) ([]pgrepo.FeedRow, error) {
	s.viewer = viewerID
	s.lastLimit = limit
	return s.rows, s.err
}

type resolverStub struct {
	fail map[string]error
}

func (s *resolverStub) Resolve(_ context.Context, ref string) (string, error) {
	if err, ok := s.fail[ref]; ok {
		return "", err
	}
	return "https://signed.example/" + ref, nil
}

func intptr(v int) *int {
	return &v
}

func TestLoadFeedFiltersMissingImages(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	repo := &feedRepoStub{rows: []pgrepo.FeedRow{
		{CaptionID: ids[0], ImageURL: "a.jpg", Content: "one", Upvotes: 3, Downvotes: 1, MyVote: intptr(1)},
		{CaptionID: ids[1], ImageURL: "", Content: "no image"},
		{CaptionID: ids[2], ImageURL: "   ", Content: "blank image"},
		{CaptionID: ids[3], ImageURL: "ftp://bad", Content: "bad ref"},
	}}
	resolver := &resolverStub{fail: map[string]error{"ftp://bad": mediasvc.ErrInvalidRef}}
	svc := NewService(repo, resolver, Config{Limit: 10}, nil)

	viewer := uuid.New()
	items, err := svc.LoadFeed(context.Background(), viewer)
	if err != nil {
		t.Fatalf("load feed: %v", err)
	}
	if repo.viewer != viewer || repo.lastLimit != 10 {
		t.Fatalf("unexpected repo call: viewer=%v limit=%d", repo.viewer, repo.lastLimit)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}

	item := items[0]
	if item.ID != ids[0].String() || item.ImageURL != "https://signed.example/a.jpg" || item.Content != "one" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Votes.Score() != 2 || item.Votes.Mine == nil || *item.Votes.Mine != 1 {
		t.Fatalf("unexpected votes: %+v", item.Votes)
	}
}

func TestLoadFeedFailsWholeLoad(t *testing.T) {
	repo := &feedRepoStub{err: errors.New("connection refused")}
	svc := NewService(repo, nil, Config{}, nil)

	items, err := svc.LoadFeed(context.Background(), uuid.New())
	if !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
	if items != nil {
		t.Fatalf("expected no partial feed, got %d items", len(items))
	}

	repo = &feedRepoStub{rows: []pgrepo.FeedRow{
		{CaptionID: uuid.New(), ImageURL: "ok.jpg"},
		{CaptionID: uuid.New(), ImageURL: "broken.jpg"},
	}}
	svc = NewService(repo, &resolverStub{fail: map[string]error{"broken.jpg": fmt.Errorf("s3 unavailable")}}, Config{}, nil)
	if _, err := svc.LoadFeed(context.Background(), uuid.New()); !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed on presign failure, got %v", err)
	}
}

func TestLoadFeedShufflesOnce(t *testing.T) {
	rows := make([]pgrepo.FeedRow, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, pgrepo.FeedRow{CaptionID: uuid.New(), ImageURL: fmt.Sprintf("https://img/%d.jpg", i)})
	}
	svc := NewService(&feedRepoStub{rows: rows}, nil, Config{Shuffle: true}, nil)

	calls := 0
	svc.shuffle = func(n int, swap func(i, j int)) {
		calls++
		swap(0, n-1)
	}

	items, err := svc.LoadFeed(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("load feed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single shuffle, got %d", calls)
	}
	if items[0].ID != rows[2].CaptionID.String() || items[2].ID != rows[0].CaptionID.String() {
		t.Fatalf("shuffle result not applied: %+v", items)
	}
	if items[0].ImageURL != "https://img/2.jpg" {
		t.Fatalf("unexpected pass-through url %q", items[0].ImageURL)
	}
}
