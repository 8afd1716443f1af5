package apiapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jwong2529/humor-study/internal/config"
	"github.com/jwong2529/humor-study/internal/domain/enums"
	"github.com/jwong2529/humor-study/internal/domain/model"
	authsvc "github.com/jwong2529/humor-study/internal/services/auth"
	votesvc "github.com/jwong2529/humor-study/internal/services/votes"
	"github.com/jwong2529/humor-study/internal/swipe"
	"github.com/jwong2529/humor-study/internal/transport/http/handlers"
)

type validatorStub struct {
	token  string
	claims authsvc.AccessClaims
}

func (s validatorStub) ValidateAccessToken(_ context.Context, accessToken string) (authsvc.AccessClaims, error) {
	if accessToken != s.token {
		return authsvc.AccessClaims{}, errors.New("bad token")
	}
	return s.claims, nil
}

var middlewareProfile = uuid.MustParse("0b5e5c1a-4a3e-4a8f-8f7e-3a0c9e6d1b22")

func newValidator() validatorStub {
	return validatorStub{
		token: "good-token",
		claims: authsvc.AccessClaims{
			ProfileID: middlewareProfile,
			SID:       "sid-1",
			Role:      enums.RoleUser,
		},
	}
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	mw := AuthMiddleware(newValidator(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok || identity.ProfileID != middlewareProfile || identity.SID != "sid-1" {
			t.Fatalf("unexpected identity: %+v ok=%v", identity, ok)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuthMiddlewareRejectsMissingAndInvalidTokens(t *testing.T) {
	mw := AuthMiddleware(newValidator(), zap.NewNop())
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called")
	})

	for _, header := range []string{"", "Bearer bad-token", "Basic good-token", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/v1/feed", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		mw(next).ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: unexpected status %d", header, rr.Code)
		}
	}
}

func TestAuthMiddlewareQueryTokenOnlyForWebsocket(t *testing.T) {
	mw := AuthMiddleware(newValidator(), zap.NewNop())
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	plain := httptest.NewRequest(http.MethodGet, "/v1/feed?access_token=good-token", nil)
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, plain)
	if rr.Code != http.StatusUnauthorized || called {
		t.Fatalf("query token accepted on plain request: status=%d", rr.Code)
	}

	upgrade := httptest.NewRequest(http.MethodGet, "/v1/swipe/ws?access_token=good-token", nil)
	upgrade.Header.Set("Connection", "Upgrade")
	upgrade.Header.Set("Upgrade", "websocket")
	rr = httptest.NewRecorder()
	mw(next).ServeHTTP(rr, upgrade)
	if rr.Code != http.StatusNoContent || !called {
		t.Fatalf("query token rejected on upgrade: status=%d", rr.Code)
	}
}

func TestAuthMiddlewareWithoutServiceIsUnavailable(t *testing.T) {
	mw := AuthMiddleware(nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got %d", rr.Code)
	}
}

func TestOriginChecker(t *testing.T) {
	check := OriginChecker([]string{"https://humor.example/"})

	allowed := httptest.NewRequest(http.MethodGet, "/v1/swipe/ws", nil)
	allowed.Header.Set("Origin", "https://HUMOR.example")
	if !check(allowed) {
		t.Fatal("expected configured origin to pass")
	}

	denied := httptest.NewRequest(http.MethodGet, "/v1/swipe/ws", nil)
	denied.Header.Set("Origin", "https://evil.example")
	if check(denied) {
		t.Fatal("expected foreign origin to be rejected")
	}

	if !OriginChecker(nil)(denied) {
		t.Fatal("empty allow-list should accept any origin")
	}
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := requestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one http_request entry, got %d", len(entries))
	}
	if status := entries[0].ContextMap()["status"]; status != int64(http.StatusTeapot) {
		t.Fatalf("unexpected status field: %v", status)
	}
}

type routeFeedStub struct{}

func (routeFeedStub) LoadFeed(context.Context, uuid.UUID) ([]model.FeedItem, error) {
	return []model.FeedItem{{ID: "c1", ImageURL: "https://img.example/1.png", Content: "caption"}}, nil
}

type routeVoteStub struct{}

func (routeVoteStub) Submit(_ context.Context, profileID uuid.UUID, _ string, value int, _ *votesvc.Telemetry) (model.CaptionVote, error) {
	return model.CaptionVote{ProfileID: profileID, Value: enums.VoteValue(value)}, nil
}

func TestRoutesRequireAuthForFeed(t *testing.T) {
	r := newTestRouter()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/feed", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status without token: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected healthz status: %d", rr.Code)
	}
}

func TestRoutesServeFeedWithAuth(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/feed", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}
	var body struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if body.Total != 1 || len(body.Items) != 1 || body.Items[0].ID != "c1" {
		t.Fatalf("unexpected feed body: %+v", body)
	}
}

func TestRoutesLogoutEndsSessionOnly(t *testing.T) {
	revoker := &routeRevokerStub{}
	r := chi.NewRouter()
	RegisterRoutes(r, Dependencies{
		FeedService:  routeFeedStub{},
		VoteService:  routeVoteStub{},
		HealthChecks: map[string]handlers.Pinger{},
		Swipe:        swipe.DefaultConfig(),
		Tokens:       newValidator(),
		Sessions:     revoker,
		Logger:       zap.NewNop(),
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || len(revoker.revoked) != 1 || revoker.revoked[0] != "sid-1" {
		t.Fatalf("expected sid-1 revoked, got %d %v", rr.Code, revoker.revoked)
	}

	for _, path := range []string{"/v1/auth/refresh", "/v1/auth/logout_all"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s should not be routed, got %d", path, rr.Code)
		}
	}
}

func TestSwipeConfigMapsSection(t *testing.T) {
	cfg := config.Default().Swipe
	cfg.VelocityThreshold = 0.5
	cfg.ExitMargin = 50

	got := SwipeConfig(cfg)
	if got.VelocityThreshold != 0.5 || got.ExitMargin != 50 || got.AdvanceDelay != cfg.AdvanceDelay {
		t.Fatalf("unexpected swipe config: %+v", got)
	}
	if got.Spring != swipe.DefaultSpring() {
		t.Fatalf("spring should keep defaults: %+v", got.Spring)
	}
}

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	ApplyMiddlewares(r, config.CORSConfig{}, zap.NewNop())
	RegisterRoutes(r, Dependencies{
		FeedService:  routeFeedStub{},
		VoteService:  routeVoteStub{},
		HealthChecks: map[string]handlers.Pinger{},
		Swipe:        swipe.DefaultConfig(),
		Tokens:       newValidator(),
		Sessions:     &routeRevokerStub{},
		Logger:       zap.NewNop(),
	})
	return r
}

type routeRevokerStub struct {
	revoked []string
}

func (s *routeRevokerStub) Revoke(_ context.Context, sid string) error {
	s.revoked = append(s.revoked, sid)
	return nil
}
