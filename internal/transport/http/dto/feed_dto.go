package dto

type FeedVotesResponse struct {
	Upvotes   int  `json:"upvotes"`
	Downvotes int  `json:"downvotes"`
	Score     int  `json:"score"`
	Mine      *int `json:"mine"`
}

type FeedItemResponse struct {
	ID       string            `json:"id"`
	ImageURL string            `json:"image_url"`
	Content  string            `json:"content"`
	Votes    FeedVotesResponse `json:"votes"`
}

type FeedResponse struct {
	Items []FeedItemResponse `json:"items"`
	Total int                `json:"total"`
}
