package apiapp

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jwong2529/humor-study/internal/swipe"
	"github.com/jwong2529/humor-study/internal/transport/http/handlers"
	"github.com/jwong2529/humor-study/internal/transport/ws"
)

type Dependencies struct {
	Tokens           AccessTokenValidator
	Sessions         handlers.SessionRevoker
	AnalyticsService handlers.EventIngester
	FeedService      handlers.FeedLoader
	VoteService      handlers.VoteSubmitter
	HealthChecks     map[string]handlers.Pinger
	Swipe            swipe.Config
	FrameInterval    time.Duration
	AllowedOrigins   []string
	Logger           *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	logoutHandler := handlers.NewLogoutHandler(deps.Sessions)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks, deps.Logger)
	meHandler := handlers.NewMeHandler()
	feedHandler := handlers.NewFeedHandler(deps.FeedService, deps.Logger)
	votesHandler := handlers.NewVotesHandler(deps.VoteService, deps.Logger)
	eventsHandler := handlers.NewEventsHandler(deps.AnalyticsService)
	gestureHandler := ws.NewGestureHandler(deps.FeedService, deps.VoteService, ws.Config{
		Swipe:         deps.Swipe,
		FrameInterval: deps.FrameInterval,
		CheckOrigin:   OriginChecker(deps.AllowedOrigins),
	}, deps.Logger)

	authMW := AuthMiddleware(deps.Tokens, deps.Logger)
	timeoutMW := chimiddleware.Timeout(requestTimeout)

	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(timeoutMW, authMW)
			r.Post("/auth/logout", logoutHandler.Handle)
			r.Get("/me", meHandler.Handle)
			r.Get("/feed", feedHandler.Handle)
			r.Post("/votes", votesHandler.Handle)
			r.Post("/events/batch", eventsHandler.Batch)
		})

		// long-lived; no request timeout
		r.With(authMW).Get("/swipe/ws", gestureHandler.Handle)
	})
}
