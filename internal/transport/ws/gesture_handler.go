// Package ws serves the gesture socket: the browser streams pointer samples,
// the server runs the swipe deck and streams card frames back.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	authsvc "github.com/jwong2529/humor-study/internal/services/auth"
	"github.com/jwong2529/humor-study/internal/swipe"
	httperrors "github.com/jwong2529/humor-study/internal/transport/http/errors"
	"github.com/jwong2529/humor-study/internal/transport/http/handlers"
)

const (
	defaultFrameInterval = 16 * time.Millisecond
	writeWait            = 5 * time.Second
	pongWait             = 60 * time.Second
	pingPeriod           = pongWait * 9 / 10
	maxMessageSize       = 4096
	outboxSize           = 64
)

type Config struct {
	Swipe         swipe.Config
	FrameInterval time.Duration
	CheckOrigin   func(r *http.Request) bool
}

type GestureHandler struct {
	feed     handlers.FeedLoader
	votes    handlers.VoteSubmitter
	cfg      Config
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewGestureHandler(feed handlers.FeedLoader, votes handlers.VoteSubmitter, cfg Config, logger *zap.Logger) *GestureHandler {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = defaultFrameInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GestureHandler{
		feed:  feed,
		votes: votes,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
		logger: logger,
	}
}

// Handle loads the feed before upgrading so a failed load is still a plain
// HTTP error.
func (h *GestureHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: "UNAUTHORIZED", Message: "sign in to swipe"})
		return
	}
	if h.feed == nil || h.votes == nil {
		httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: "SWIPE_UNAVAILABLE", Message: "swipe session is unavailable"})
		return
	}

	items, err := h.feed.LoadFeed(r.Context(), identity.ProfileID)
	if err != nil {
		h.logger.Error("feed load failed", zap.String("profile_id", identity.ProfileID.String()), zap.Error(err))
		httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: "FEED_LOAD_FAILED", Message: "failed to load feed"})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	logger := h.logger.With(
		zap.String("profile_id", identity.ProfileID.String()),
		zap.String("sid", identity.SID),
	)

	// The session outlives the request context once hijacked.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	s := newSession(conn, h.votes, identity.ProfileID, h.cfg, logger)
	s.run(ctx, items)
}
