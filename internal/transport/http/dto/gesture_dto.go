package dto

// GestureClientMessage is one message from the browser on the gesture socket.
// Type is one of "viewport", "down", "move", "up", "lost".
type GestureClientMessage struct {
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	TMS   int64   `json:"t_ms"`
	Width float64 `json:"width,omitempty"`
}

// GestureServerMessage is sent by the server. Type is one of "card", "frame",
// "commit", "cancel", "exhausted", "error".
type GestureServerMessage struct {
	Type    string             `json:"type"`
	Card    *FeedItemResponse  `json:"card,omitempty"`
	Index   int                `json:"index,omitempty"`
	Frames  []GestureFrame     `json:"frames,omitempty"`
	Outcome *GestureOutcome    `json:"outcome,omitempty"`
	Error   *GestureErrorFrame `json:"error,omitempty"`
}

type GestureFrame struct {
	ItemID  string  `json:"item_id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Rot     float64 `json:"rot"`
	Scale   float64 `json:"scale"`
	Like    float64 `json:"like"`
	Nope    float64 `json:"nope"`
	Leaving bool    `json:"leaving,omitempty"`
}

type GestureOutcome struct {
	ItemID    string  `json:"item_id"`
	Decision  string  `json:"decision,omitempty"`
	VoteValue int     `json:"vote_value,omitempty"`
	ReleaseVX float64 `json:"release_vx"`
	OffsetX   float64 `json:"offset_x"`
}

type GestureErrorFrame struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
