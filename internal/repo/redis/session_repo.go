package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jwong2529/humor-study/internal/domain/enums"
	authsvc "github.com/jwong2529/humor-study/internal/services/auth"
)

const studySessionPrefix = "study_session:"

// SessionRepo keeps one hash per study session, expiring with the session.
type SessionRepo struct {
	client *goredis.Client
}

func NewSessionRepo(client *goredis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

func (r *SessionRepo) Create(ctx context.Context, session authsvc.Session) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(session.SID) == "" || session.ProfileID == uuid.Nil {
		return authsvc.ErrInvalidInput
	}

	key := studySessionKey(session.SID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"profile_id": session.ProfileID.String(),
		"role":       string(session.Role),
		"label":      session.Label,
		"issued_at":  session.IssuedAt.Unix(),
		"expires_at": session.ExpiresAt.Unix(),
	})
	pipe.ExpireAt(ctx, key, session.ExpiresAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create study session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, sid string) (authsvc.Session, error) {
	if r.client == nil {
		return authsvc.Session{}, fmt.Errorf("redis client is nil")
	}

	values, err := r.client.HGetAll(ctx, studySessionKey(sid)).Result()
	if err != nil {
		return authsvc.Session{}, fmt.Errorf("get study session: %w", err)
	}
	if len(values) == 0 {
		return authsvc.Session{}, authsvc.ErrSessionNotFound
	}

	profileID, err := uuid.Parse(values["profile_id"])
	if err != nil {
		return authsvc.Session{}, fmt.Errorf("study session %s: bad profile id: %w", sid, err)
	}
	issued, err := parseUnix(values["issued_at"])
	if err != nil {
		return authsvc.Session{}, fmt.Errorf("study session %s: bad issued_at: %w", sid, err)
	}
	expires, err := parseUnix(values["expires_at"])
	if err != nil {
		return authsvc.Session{}, fmt.Errorf("study session %s: bad expires_at: %w", sid, err)
	}

	return authsvc.Session{
		SID:       sid,
		ProfileID: profileID,
		Role:      enums.Role(values["role"]),
		Label:     values["label"],
		IssuedAt:  issued,
		ExpiresAt: expires,
	}, nil
}

func (r *SessionRepo) Delete(ctx context.Context, sid string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	removed, err := r.client.Del(ctx, studySessionKey(sid)).Result()
	if err != nil {
		return fmt.Errorf("delete study session: %w", err)
	}
	if removed == 0 {
		return authsvc.ErrSessionNotFound
	}
	return nil
}

func parseUnix(v string) (time.Time, error) {
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}

func studySessionKey(sid string) string {
	return studySessionPrefix + sid
}
