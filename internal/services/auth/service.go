package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwong2529/humor-study/internal/domain/enums"
)

const (
	MinSessionTTL = time.Hour
	MaxSessionTTL = 30 * 24 * time.Hour
)

type SessionStore interface {
	Create(ctx context.Context, session Session) error
	Get(ctx context.Context, sid string) (Session, error)
	Delete(ctx context.Context, sid string) error
}

type Service struct {
	signer   *Signer
	sessions SessionStore
	ttl      time.Duration
	now      func() time.Time
}

func NewService(signer *Signer, sessions SessionStore, ttl time.Duration) *Service {
	return &Service{
		signer:   signer,
		sessions: sessions,
		ttl:      min(max(ttl, MinSessionTTL), MaxSessionTTL),
		now:      time.Now,
	}
}

// Issue opens a study session for a known profile. Sign-in happens outside
// this API; operators and tests call this directly.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (Issued, error) {
	if req.ProfileID == uuid.Nil {
		return Issued{}, ErrInvalidInput
	}
	if req.Role == "" {
		req.Role = enums.RoleUser
	}

	now := s.now().UTC().Truncate(time.Second)
	session := Session{
		SID:       uuid.NewString(),
		ProfileID: req.ProfileID,
		Role:      req.Role,
		Label:     strings.TrimSpace(req.Label),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	token, err := s.signer.Sign(session)
	if err != nil {
		return Issued{}, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return Issued{}, fmt.Errorf("create session: %w", err)
	}
	return Issued{Token: token, Session: session}, nil
}

// Revoke ends a session before it expires. Its token stops validating at once.
func (s *Service) Revoke(ctx context.Context, sid string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.Delete(ctx, sid); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) ValidateAccessToken(ctx context.Context, token string) (AccessClaims, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return AccessClaims{}, ErrUnauthorized
		}
		return AccessClaims{}, fmt.Errorf("get session: %w", err)
	}
	if session.ProfileID != claims.ProfileID || session.Role != claims.Role {
		return AccessClaims{}, ErrUnauthorized
	}
	if !s.now().Before(session.ExpiresAt) {
		return AccessClaims{}, ErrUnauthorized
	}
	return claims, nil
}
