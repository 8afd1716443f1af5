package model

type VoteTally struct {
	Upvotes   int  `json:"upvotes"`
	Downvotes int  `json:"downvotes"`
	Mine      *int `json:"mine,omitempty"`
}

func (t VoteTally) Score() int {
	return t.Upvotes - t.Downvotes
}

// FeedItem is immutable once fetched.
type FeedItem struct {
	ID       string    `json:"id"`
	ImageURL string    `json:"image_url"`
	Content  string    `json:"content"`
	Votes    VoteTally `json:"votes"`
}
