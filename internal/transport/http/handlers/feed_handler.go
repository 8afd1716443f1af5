package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jwong2529/humor-study/internal/domain/model"
	authsvc "github.com/jwong2529/humor-study/internal/services/auth"
	"github.com/jwong2529/humor-study/internal/transport/http/dto"
	httperrors "github.com/jwong2529/humor-study/internal/transport/http/errors"
)

type FeedLoader interface {
	LoadFeed(ctx context.Context, viewerID uuid.UUID) ([]model.FeedItem, error)
}

type FeedHandler struct {
	service FeedLoader
	logger  *zap.Logger
}

func NewFeedHandler(service FeedLoader, logger *zap.Logger) *FeedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedHandler{service: service, logger: logger}
}

// Handle returns the whole session feed. A failed load never returns a
// partial list.
func (h *FeedHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "sign in to view the feed")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	items, err := h.service.LoadFeed(r.Context(), identity.ProfileID)
	if err != nil {
		h.logger.Error("feed load failed", zap.String("profile_id", identity.ProfileID.String()), zap.Error(err))
		writeInternal(w, "FEED_LOAD_FAILED", "failed to load feed")
		return
	}

	out := make([]dto.FeedItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FeedItemDTO(item))
	}

	httperrors.Write(w, http.StatusOK, dto.FeedResponse{
		Items: out,
		Total: len(out),
	})
}

func FeedItemDTO(item model.FeedItem) dto.FeedItemResponse {
	return dto.FeedItemResponse{
		ID:       item.ID,
		ImageURL: item.ImageURL,
		Content:  item.Content,
		Votes: dto.FeedVotesResponse{
			Upvotes:   item.Votes.Upvotes,
			Downvotes: item.Votes.Downvotes,
			Score:     item.Votes.Score(),
			Mine:      item.Votes.Mine,
		},
	}
}
