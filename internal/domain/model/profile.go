package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwong2529/humor-study/internal/domain/enums"
)

type Profile struct {
	ID        uuid.UUID  `json:"id"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"created_datetime_utc"`
}
