package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jwong2529/humor-study/internal/transport/http/dto"
)

func TestAPIClientFeedSendsBearerAndMapsItems(t *testing.T) {
	mine := 1
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/feed" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("unexpected auth header %q", got)
		}
		_ = json.NewEncoder(w).Encode(dto.FeedResponse{
			Items: []dto.FeedItemResponse{{
				ID:       "c1",
				ImageURL: "https://img.example/1.png",
				Content:  "caption",
				Votes:    dto.FeedVotesResponse{Upvotes: 3, Downvotes: 1, Score: 2, Mine: &mine},
			}},
			Total: 1,
		})
	}))
	defer server.Close()

	client := NewAPIClient(server.URL+"/", "tok", time.Second)
	items, err := client.Feed(context.Background())
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "c1" || items[0].Votes.Score() != 2 || *items[0].Votes.Mine != 1 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestAPIClientSubmitVoteMapsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dto.VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode vote: %v", err)
		}
		switch req.CaptionID {
		case "missing":
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"code": "CAPTION_NOT_FOUND", "message": "caption not found"})
		case "anon":
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"code": "UNAUTHORIZED", "message": "sign in"})
		default:
			if req.Client == nil || req.Client.ReleaseVX != 0.3 {
				t.Fatalf("missing gesture telemetry: %+v", req.Client)
			}
			_ = json.NewEncoder(w).Encode(dto.VoteResponse{OK: true, CaptionID: req.CaptionID, VoteValue: req.VoteValue})
		}
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "tok", time.Second)

	resp, err := client.SubmitVote(context.Background(), "c1", 1, &dto.VoteGesture{ReleaseVX: 0.3})
	if err != nil || !resp.OK || resp.VoteValue != 1 {
		t.Fatalf("unexpected vote result: %+v err=%v", resp, err)
	}

	_, err = client.SubmitVote(context.Background(), "missing", 1, &dto.VoteGesture{ReleaseVX: 0.3})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Code != "CAPTION_NOT_FOUND" {
		t.Fatalf("expected not found api error, got %v", err)
	}

	_, err = client.SubmitVote(context.Background(), "anon", -1, nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
