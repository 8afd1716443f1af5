package model

import (
	"time"

	"github.com/google/uuid"
)

type Image struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_datetime_utc"`
}

type Caption struct {
	ID        uuid.UUID  `json:"id"`
	ImageID   *uuid.UUID `json:"image_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_datetime_utc"`
}
