package model

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID         int64                  `json:"id"`
	ProfileID  *uuid.UUID             `json:"profile_id"`
	Name       string                 `json:"name"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}
