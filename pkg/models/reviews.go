package models

import "time"

// Review is one customer review pulled from a feed or scraped source.
// Rating is 0 when the source carries no star rating.
type Review struct {
	Source      string    `json:"source"`
	Author      string    `json:"author,omitempty"`
	Rating      float64   `json:"rating,omitempty"` // 1..5 stars, 0 = unrated
	Text        string    `json:"text"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// ReviewScore is one review's scored sentiment.
type ReviewScore struct {
	Source      string    `json:"source"`
	Excerpt     string    `json:"excerpt"`
	Score       float64   `json:"score"`      // -1 (scathing) .. +1 (glowing)
	Confidence  float64   `json:"confidence"` // 0..1
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// ReviewSentiment is the aggregate sentiment for one branch.
type ReviewSentiment struct {
	BranchID    string        `json:"branch_id"`
	Score       float64       `json:"score"`
	Confidence  float64       `json:"confidence"`
	Label       string        `json:"label"`
	Scores      []ReviewScore `json:"scores,omitempty"`
	ReviewCount int           `json:"review_count"`
	Timestamp   time.Time     `json:"timestamp"`
}
