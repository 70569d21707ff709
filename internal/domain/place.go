package domain

import "time"

// PlaceType categorizes an establishment
type PlaceType string

const (
	PlaceRestaurant PlaceType = "RESTAURANT"
	PlaceCafe       PlaceType = "CAFE"
	PlaceBar        PlaceType = "BAR"
	PlaceClub       PlaceType = "CLUB"
	PlaceOther      PlaceType = "OTHER"
)

// PlaceContacts holds optional contact channels of a place
type PlaceContacts struct {
	Phone    string `json:"phone"`
	Telegram string `json:"telegram"`
	Email    string `json:"email"`
}

// Place represents an establishment listing.
// Rating is derived from reviews and cached on the row.
// An unmoderated place cannot host news, reviews or view tracking.
type Place struct {
	ID           string        `json:"id" db:"id"`
	Name         string        `json:"name" db:"name"`
	Description  string        `json:"description" db:"description"`
	Address      string        `json:"address" db:"address"`
	Longitude    float64       `json:"longitude" db:"longitude"`
	Latitude     float64       `json:"latitude" db:"latitude"`
	Photo        string        `json:"photo" db:"photo"`
	Tags         []string      `json:"tags" db:"tags"`
	Type         PlaceType     `json:"type" db:"type"`
	AverageCheck float64       `json:"average_check" db:"average_check"`
	Rating       float64       `json:"rating" db:"rating"`
	Contacts     PlaceContacts `json:"contacts"`
	CreatedBy    string        `json:"created_by" db:"created_by"`
	IsModerated  bool          `json:"is_moderated" db:"is_moderated"`
	IsDeleted    bool          `json:"is_deleted" db:"is_deleted"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// PlaceView records a single user viewing a place
type PlaceView struct {
	ID      string    `json:"id" db:"id"`
	PlaceID string    `json:"place_id" db:"place_id"`
	UserID  string    `json:"user_id" db:"user_id"`
	ViewedAt time.Time `json:"viewed_at" db:"viewed_at"`
}
