package handlers

import (
	"context"
	"errors"
	"net/http"

	authsvc "github.com/jwong2529/humor-study/internal/services/auth"
	"github.com/jwong2529/humor-study/internal/transport/http/dto"
	httperrors "github.com/jwong2529/humor-study/internal/transport/http/errors"
)

type SessionRevoker interface {
	Revoke(ctx context.Context, sid string) error
}

type LogoutHandler struct {
	sessions SessionRevoker
}

func NewLogoutHandler(sessions SessionRevoker) *LogoutHandler {
	return &LogoutHandler{sessions: sessions}
}

// Handle ends the caller's study session; its token stops working at once.
func (h *LogoutHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.sessions.Revoke(r.Context(), identity.SID); err != nil {
		switch {
		case errors.Is(err, authsvc.ErrSessionNotFound), errors.Is(err, authsvc.ErrInvalidInput):
			writeUnauthorized(w, "UNAUTHORIZED", "session already ended")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}
