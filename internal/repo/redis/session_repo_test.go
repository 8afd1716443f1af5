package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jwong2529/humor-study/internal/domain/enums"
	authsvc "github.com/jwong2529/humor-study/internal/services/auth"
)

func TestSessionRepoRoundTripAndExpiry(t *testing.T) {
	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	defer client.Close()

	repo := NewSessionRepo(client)
	ctx := context.Background()

	issued := time.Now().UTC().Truncate(time.Second)
	session := authsvc.Session{
		SID:       "sid-1",
		ProfileID: uuid.New(),
		Role:      enums.RoleUser,
		Label:     "cohort-a",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(2 * time.Hour),
	}
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ProfileID != session.ProfileID || got.Role != session.Role || got.Label != "cohort-a" ||
		!got.IssuedAt.Equal(session.IssuedAt) || !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Fatalf("unexpected session: %+v", got)
	}
	if ttl := mini.TTL(studySessionKey("sid-1")); ttl <= time.Hour || ttl > 2*time.Hour {
		t.Fatalf("expected ttl bounded by the session expiry, got %v", ttl)
	}

	mini.FastForward(3 * time.Hour)
	if _, err := repo.Get(ctx, "sid-1"); !errors.Is(err, authsvc.ErrSessionNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}

func TestSessionRepoDeleteReportsMissing(t *testing.T) {
	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	defer client.Close()

	repo := NewSessionRepo(client)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := repo.Create(ctx, authsvc.Session{SID: "sid-2", ProfileID: uuid.New(), Role: enums.RoleUser, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, "sid-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "sid-2"); !errors.Is(err, authsvc.ErrSessionNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if err := repo.Create(ctx, authsvc.Session{SID: "", ProfileID: uuid.New()}); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty sid, got %v", err)
	}
}
