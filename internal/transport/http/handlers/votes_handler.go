package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jwong2529/humor-study/internal/domain/model"
	authsvc "github.com/jwong2529/humor-study/internal/services/auth"
	votesvc "github.com/jwong2529/humor-study/internal/services/votes"
	"github.com/jwong2529/humor-study/internal/transport/http/dto"
	httperrors "github.com/jwong2529/humor-study/internal/transport/http/errors"
)

type VoteSubmitter interface {
	Submit(ctx context.Context, profileID uuid.UUID, captionID string, value int, telemetry *votesvc.Telemetry) (model.CaptionVote, error)
}

type VotesHandler struct {
	service VoteSubmitter
	logger  *zap.Logger
}

func NewVotesHandler(service VoteSubmitter, logger *zap.Logger) *VotesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VotesHandler{service: service, logger: logger}
}

func (h *VotesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "sign in to vote")
		return
	}
	if h.service == nil {
		writeInternal(w, "VOTES_SERVICE_UNAVAILABLE", "votes service is unavailable")
		return
	}

	var req dto.VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	var telemetry *votesvc.Telemetry
	if req.Client != nil {
		telemetry = &votesvc.Telemetry{
			ReleaseVX: req.Client.ReleaseVX,
			OffsetX:   req.Client.OffsetX,
			ViewMS:    req.Client.ViewMS,
			Source:    "http",
		}
	}

	vote, err := h.service.Submit(r.Context(), identity.ProfileID, req.CaptionID, req.VoteValue, telemetry)
	if err != nil {
		h.writeVoteError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.VoteResponse{
		OK:         true,
		CaptionID:  vote.CaptionID.String(),
		VoteValue:  int(vote.Value),
		CreatedAt:  vote.CreatedAt,
		ModifiedAt: vote.ModifiedAt,
	})
}

func (h *VotesHandler) writeVoteError(w http.ResponseWriter, err error) {
	var tooFast *votesvc.TooFastError
	switch {
	case errors.Is(err, votesvc.ErrUnauthorized):
		writeUnauthorized(w, "UNAUTHORIZED", "sign in to vote")
	case errors.Is(err, votesvc.ErrInvalidVoteValue):
		writeBadRequest(w, "INVALID_VOTE_VALUE", "vote_value must be -1 or 1")
	case errors.Is(err, votesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "caption_id must be a uuid")
	case errors.Is(err, votesvc.ErrNotFound):
		writeNotFound(w, "CAPTION_NOT_FOUND", "caption not found")
	case errors.As(err, &tooFast):
		httperrors.WriteRateLimited(w, httperrors.RateLimitError{
			Code:          "TOO_FAST",
			Message:       "too many votes, slow down",
			RetryAfterSec: tooFast.RetryAfterSec,
		})
	default:
		h.logger.Error("vote submission failed", zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to submit vote")
	}
}
