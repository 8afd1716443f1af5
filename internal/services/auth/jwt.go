package auth

import (
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jwong2529/humor-study/internal/domain/enums"
)

const tokenIssuer = "humor-study"

// Signer turns sessions into bearer tokens and back.
type Signer struct {
	secret []byte
	now    func() time.Time
}

type sessionClaims struct {
	SID  string `json:"sid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

func (s *Signer) Sign(session Session) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("jwt secret is empty")
	}
	if session.ProfileID == uuid.Nil || strings.TrimSpace(session.SID) == "" {
		return "", fmt.Errorf("invalid session for token")
	}

	claims := sessionClaims{
		SID:  session.SID,
		Role: string(session.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   session.ProfileID.String(),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			NotBefore: jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *Signer) Parse(raw string) (AccessClaims, error) {
	if strings.TrimSpace(raw) == "" {
		return AccessClaims{}, ErrUnauthorized
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}

	profileID, err := uuid.Parse(claims.Subject)
	if err != nil || profileID == uuid.Nil || strings.TrimSpace(claims.SID) == "" {
		return AccessClaims{}, ErrUnauthorized
	}

	return AccessClaims{
		ProfileID: profileID,
		SID:       claims.SID,
		Role:      enums.Role(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
