package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jwong2529/humor-study/internal/domain/enums"
	"github.com/jwong2529/humor-study/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// Ensure creates the profile if it is missing. An existing role is only
// changed when role is non-empty.
func (r *ProfileRepo) Ensure(ctx context.Context, id uuid.UUID, role enums.Role) (model.Profile, error) {
	if id == uuid.Nil {
		return model.Profile{}, fmt.Errorf("invalid profile id")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	var (
		profile model.Profile
		stored  string
	)
	err := r.pool.QueryRow(ctx, `
INSERT INTO profiles (id, role)
VALUES ($1, COALESCE(NULLIF($2, ''), 'USER'))
ON CONFLICT (id) DO UPDATE SET
	role = COALESCE(NULLIF(EXCLUDED.role, ''), profiles.role)
RETURNING id, role, created_datetime_utc
`, id, string(role)).Scan(&profile.ID, &stored, &profile.CreatedAt)
	if err != nil {
		return model.Profile{}, fmt.Errorf("ensure profile: %w", err)
	}
	profile.Role = enums.Role(stored)

	return profile, nil
}

func (r *ProfileRepo) Get(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrProfileNotFound
	}

	var (
		profile model.Profile
		stored  string
	)
	err := r.pool.QueryRow(ctx, `
SELECT id, role, created_datetime_utc
FROM profiles
WHERE id = $1
`, id).Scan(&profile.ID, &stored, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	profile.Role = enums.Role(stored)

	return profile, nil
}
