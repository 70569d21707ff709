package repository

import (
	"github.com/placium/places-api/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User        UserRepository
	Session     SessionRepository
	ActionToken ActionTokenRepository
	OldPassword OldPasswordRepository
	Place       PlaceRepository
	Review      ReviewRepository
	News        NewsRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Session:     NewSessionRepository(db),
		ActionToken: NewActionTokenRepository(db),
		OldPassword: NewOldPasswordRepository(db),
		Place:       NewPlaceRepository(db),
		Review:      NewReviewRepository(db),
		News:        NewNewsRepository(db),
	}
}
