package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwong2529/humor-study/internal/domain/enums"
)

// CaptionVote is keyed by (ProfileID, CaptionID); a later vote for the same
// pair replaces the earlier one.
type CaptionVote struct {
	ProfileID  uuid.UUID       `json:"profile_id"`
	CaptionID  uuid.UUID       `json:"caption_id"`
	Value      enums.VoteValue `json:"vote_value"`
	CreatedAt  time.Time       `json:"created_datetime_utc"`
	ModifiedAt time.Time       `json:"modified_datetime_utc"`
}
