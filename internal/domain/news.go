package domain

import "time"

// NewsType categorizes a news post
type NewsType string

const (
	NewsAnnouncement NewsType = "ANNOUNCEMENT"
	NewsEvent        NewsType = "EVENT"
	NewsPromotion    NewsType = "PROMOTION"
)

// News is a post attached to a place. Mutations require the place to be
// moderated and the caller to own it (or be a superadmin).
type News struct {
	ID        string    `json:"id" db:"id"`
	PlaceID   string    `json:"place_id" db:"place_id"`
	Type      NewsType  `json:"type" db:"type"`
	Title     string    `json:"title" db:"title"`
	Text      string    `json:"text" db:"text"`
	Photo     string    `json:"photo" db:"photo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
