package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwong2529/humor-study/internal/domain/enums"
)

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

// Identity is the signed-in caller. Handlers treat its absence as "sign in".
type Identity struct {
	ProfileID uuid.UUID
	SID       string
	Role      enums.Role
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	if !ok || identity.ProfileID == uuid.Nil {
		return Identity{}, false
	}
	return identity, true
}
