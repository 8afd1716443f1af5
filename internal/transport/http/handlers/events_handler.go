package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	analyticsvc "github.com/jwong2529/humor-study/internal/services/analytics"
	authsvc "github.com/jwong2529/humor-study/internal/services/auth"
	"github.com/jwong2529/humor-study/internal/transport/http/dto"
	httperrors "github.com/jwong2529/humor-study/internal/transport/http/errors"
)

type EventIngester interface {
	IngestBatch(ctx context.Context, profileID *uuid.UUID, events []analyticsvc.BatchEvent) error
}

type EventsHandler struct {
	service EventIngester
}

func NewEventsHandler(service EventIngester) *EventsHandler {
	return &EventsHandler{service: service}
}

func (h *EventsHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "EVENTS_SERVICE_UNAVAILABLE", "events service is unavailable")
		return
	}

	var req dto.EventsBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	input := make([]analyticsvc.BatchEvent, 0, len(req))
	for _, item := range req {
		input = append(input, analyticsvc.BatchEvent{
			Name:  item.Name,
			TS:    item.TS,
			Props: item.Props,
		})
	}

	var profileID *uuid.UUID
	if identity, ok := authsvc.IdentityFromContext(r.Context()); ok {
		pid := identity.ProfileID
		profileID = &pid
	}

	if err := h.service.IngestBatch(r.Context(), profileID, input); err != nil {
		if errors.Is(err, analyticsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid events batch")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to ingest events")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.EventsBatchResponse{
		OK:       true,
		Accepted: len(input),
	})
}
