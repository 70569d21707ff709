package domain

import "time"

// Review is a single user's review of a place.
// A user holds at most one review per place; IsEdited is set on the first
// update and never reset.
type Review struct {
	ID        string    `json:"id" db:"id"`
	PlaceID   string    `json:"place_id" db:"place_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Text      string    `json:"text" db:"text"`
	Check     float64   `json:"check" db:"check_amount"`
	IsEdited  bool      `json:"is_edited" db:"is_edited"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
