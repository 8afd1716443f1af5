package handlers

import (
	"net/http"

	authsvc "github.com/jwong2529/humor-study/internal/services/auth"
	"github.com/jwong2529/humor-study/internal/transport/http/dto"
	httperrors "github.com/jwong2529/humor-study/internal/transport/http/errors"
)

type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

// Handle reports the signed-in caller, or 401 so the client can show its
// sign-in state.
func (h *MeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MeResponse{
		ID:   identity.ProfileID.String(),
		Role: string(identity.Role),
		SID:  identity.SID,
	})
}
