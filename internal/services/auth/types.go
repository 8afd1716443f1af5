package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwong2529/humor-study/internal/domain/enums"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSessionNotFound = errors.New("session not found")
)

// Session is one participant's sitting. Label is free text the operator
// attaches when minting it (a cohort or a tester name).
type Session struct {
	SID       string
	ProfileID uuid.UUID
	Role      enums.Role
	Label     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type IssueRequest struct {
	ProfileID uuid.UUID
	Role      enums.Role
	Label     string
}

type Issued struct {
	Token   string
	Session Session
}

type AccessClaims struct {
	ProfileID uuid.UUID
	SID       string
	Role      enums.Role
	ExpiresAt time.Time
}
