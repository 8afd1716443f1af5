package dto

import "time"

type VoteRequest struct {
	CaptionID string       `json:"caption_id"`
	VoteValue int          `json:"vote_value"`
	Client    *VoteGesture `json:"client,omitempty"`
}

// VoteGesture is optional client telemetry about the swipe.
type VoteGesture struct {
	ReleaseVX float64 `json:"release_vx"`
	OffsetX   float64 `json:"offset_x"`
	ViewMS    int64   `json:"card_view_ms"`
}

type VoteResponse struct {
	OK         bool      `json:"ok"`
	CaptionID  string    `json:"caption_id"`
	VoteValue  int       `json:"vote_value"`
	CreatedAt  time.Time `json:"created_datetime_utc"`
	ModifiedAt time.Time `json:"modified_datetime_utc"`
}
