package repository

import (
	"context"
	"time"

	"github.com/placium/places-api/internal/domain"
)

// UserListQuery filters and paginates user listings
type UserListQuery struct {
	Name    string
	Page    int
	Limit   int
	OrderBy string
	Desc    bool
}

// PlaceListQuery filters and paginates place listings.
// Soft-deleted places are always excluded.
type PlaceListQuery struct {
	Name      string
	Type      domain.PlaceType
	Tag       string
	CreatedBy string
	Page      int
	Limit     int
	OrderBy   string
	Desc      bool
}

// UserRepository defines methods for user records
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, query UserListQuery) ([]*domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetVerified(ctx context.Context, userID string) error
	SetRole(ctx context.Context, userID string, role domain.Role) error
	SoftDelete(ctx context.Context, userID string) error
	Restore(ctx context.Context, userID, passwordHash string) error
	AddFavorite(ctx context.Context, userID, placeID string) error
	RemoveFavorite(ctx context.Context, userID, placeID string) error
	IsFavorite(ctx context.Context, userID, placeID string) (bool, error)
	FavoriteIDs(ctx context.Context, userID string) ([]string, error)
}

// SessionRepository persists issued access/refresh token pairs.
// A cryptographically valid token without a row here is revoked.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByAccessToken(ctx context.Context, accessToken string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteByAccessToken(ctx context.Context, accessToken string) error
	DeleteByRefreshToken(ctx context.Context, refreshToken string) error
	DeleteAllByUser(ctx context.Context, userID string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ActionTokenRepository persists single-purpose tokens, consumed on use
type ActionTokenRepository interface {
	// Replace deletes any existing token of the same (user, type) and stores
	// the new one, keeping at most one active token per purpose.
	Replace(ctx context.Context, token *domain.ActionToken) error
	GetByToken(ctx context.Context, token string) (*domain.ActionToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteAllByUser(ctx context.Context, userID string, types ...domain.TokenType) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// OldPasswordRepository retains replaced password hashes for reuse checks
type OldPasswordRepository interface {
	Create(ctx context.Context, old *domain.OldPassword) error
	GetByUser(ctx context.Context, userID string) ([]*domain.OldPassword, error)
	DeleteAllByUser(ctx context.Context, userID string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PlaceRepository defines methods for place records
type PlaceRepository interface {
	Create(ctx context.Context, place *domain.Place) error
	GetByID(ctx context.Context, id string) (*domain.Place, error)
	List(ctx context.Context, query PlaceListQuery) ([]*domain.Place, int, error)
	Update(ctx context.Context, place *domain.Place) error
	UpdatePhoto(ctx context.Context, id, photo string) error
	SetModerated(ctx context.Context, id string, moderated bool) error
	SetRating(ctx context.Context, id string, rating float64) error
	SetCreatedBy(ctx context.Context, id, userID string) error
	SoftDelete(ctx context.Context, id string) error
	CountByCreator(ctx context.Context, userID string) (int, error)
	AllTags(ctx context.Context) ([]string, error)
	AddView(ctx context.Context, view *domain.PlaceView) error
	CountViews(ctx context.Context, placeID string, from, to time.Time) (int, error)
}

// ReviewRepository defines methods for review records
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	GetByPlace(ctx context.Context, placeID string) ([]*domain.Review, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id string) error
	AverageRating(ctx context.Context, placeID string) (float64, error)
}

// NewsRepository defines methods for news records
type NewsRepository interface {
	Create(ctx context.Context, news *domain.News) error
	GetByID(ctx context.Context, id string) (*domain.News, error)
	GetByPlace(ctx context.Context, placeID string) ([]*domain.News, error)
	Update(ctx context.Context, news *domain.News) error
	UpdatePhoto(ctx context.Context, id, photo string) error
	Delete(ctx context.Context, id string) error
}
