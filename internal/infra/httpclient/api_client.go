package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jwong2529/humor-study/internal/domain/model"
	"github.com/jwong2529/humor-study/internal/transport/http/dto"
	httperrors "github.com/jwong2529/humor-study/internal/transport/http/errors"
)

var ErrUnauthorized = errors.New("api rejected the access token")

// APIError is a non-2xx answer from the humor-study API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// APIClient talks to the public /v1 endpoints with a bearer token.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPIClient(baseURL, accessToken string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   accessToken,
		http:    New(timeout),
	}
}

func (c *APIClient) Feed(ctx context.Context) ([]model.FeedItem, error) {
	var resp dto.FeedResponse
	if err := c.do(ctx, http.MethodGet, "/v1/feed", nil, &resp); err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}

	items := make([]model.FeedItem, 0, len(resp.Items))
	for _, item := range resp.Items {
		items = append(items, model.FeedItem{
			ID:       item.ID,
			ImageURL: item.ImageURL,
			Content:  item.Content,
			Votes: model.VoteTally{
				Upvotes:   item.Votes.Upvotes,
				Downvotes: item.Votes.Downvotes,
				Mine:      item.Votes.Mine,
			},
		})
	}
	return items, nil
}

func (c *APIClient) SubmitVote(ctx context.Context, captionID string, value int, gesture *dto.VoteGesture) (dto.VoteResponse, error) {
	var resp dto.VoteResponse
	req := dto.VoteRequest{CaptionID: captionID, VoteValue: value, Client: gesture}
	if err := c.do(ctx, http.MethodPost, "/v1/votes", req, &resp); err != nil {
		return dto.VoteResponse{}, fmt.Errorf("submit vote: %w", err)
	}
	return resp, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr httperrors.APIError
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&apiErr)
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
		}
		return &APIError{Status: resp.StatusCode, Code: apiErr.Code, Message: apiErr.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
