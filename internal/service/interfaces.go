package service

import (
	"context"
	"time"

	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/internal/dto"
	"github.com/placium/places-api/internal/repository"
)

// AuthService defines the account lifecycle operations
type AuthService interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error)
	SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, claims domain.TokenClaims, refreshToken string) (domain.TokenPair, error)
	Logout(ctx context.Context, claims domain.TokenClaims, accessToken string) error
	LogoutAll(ctx context.Context, claims domain.TokenClaims) error
	Verify(ctx context.Context, claims domain.TokenClaims) error
	ResendVerifyEmail(ctx context.Context, claims domain.TokenClaims) error
	ForgotPassword(ctx context.Context, email string) error
	ForgotPasswordSet(ctx context.Context, claims domain.TokenClaims, token, password string) error
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	AccountRestore(ctx context.Context, email string) error
	AccountRestoreSet(ctx context.Context, claims domain.TokenClaims, token, password string) error
}

// UserService defines profile, favorites and administration operations
type UserService interface {
	GetMe(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteMe(ctx context.Context, userID string) error
	GetByID(ctx context.Context, userID string) (*dto.UserResponse, error)
	List(ctx context.Context, query repository.UserListQuery) (*dto.ListResponse[*dto.UserResponse], error)
	UpdatePhoto(ctx context.Context, userID, photo string) (*dto.UserResponse, error)
	AddFavorite(ctx context.Context, userID, placeID string) error
	RemoveFavorite(ctx context.Context, userID, placeID string) error
	IsFavorite(ctx context.Context, userID, placeID string) (bool, error)
	Favorites(ctx context.Context, userID string) ([]*domain.Place, error)
	Establishments(ctx context.Context, userID string) ([]*domain.Place, error)
	DeleteUser(ctx context.Context, userID string) error
	ChangeRole(ctx context.Context, userID string, role domain.Role) (*dto.UserResponse, error)
	ReassignEstablishment(ctx context.Context, placeID, newOwnerID string) error
}

// PlaceService defines the establishment catalog operations
type PlaceService interface {
	List(ctx context.Context, query repository.PlaceListQuery) (*dto.ListResponse[*domain.Place], error)
	GetByID(ctx context.Context, placeID string) (*domain.Place, error)
	Create(ctx context.Context, claims domain.TokenClaims, req *dto.CreatePlaceRequest) (*domain.Place, error)
	Update(ctx context.Context, claims domain.TokenClaims, placeID string, req *dto.UpdatePlaceRequest) (*domain.Place, error)
	UpdatePhoto(ctx context.Context, claims domain.TokenClaims, placeID, photo string) (*domain.Place, error)
	Delete(ctx context.Context, claims domain.TokenClaims, placeID string) error
	Moderate(ctx context.Context, placeID string, moderated bool) (*domain.Place, error)
	AllTags(ctx context.Context) ([]string, error)
	AddView(ctx context.Context, placeID, userID string) error
	ViewsStats(ctx context.Context, claims domain.TokenClaims, placeID string, from, to time.Time) (*dto.ViewsStatsResponse, error)
}

// ReviewService defines review operations nested under a place
type ReviewService interface {
	Create(ctx context.Context, claims domain.TokenClaims, placeID string, req *dto.CreateReviewRequest) (*domain.Review, error)
	GetByPlace(ctx context.Context, placeID string) ([]*domain.Review, error)
	Update(ctx context.Context, claims domain.TokenClaims, placeID, reviewID string, req *dto.UpdateReviewRequest) (*domain.Review, error)
	Delete(ctx context.Context, claims domain.TokenClaims, placeID, reviewID string) error
}

// NewsService defines news operations nested under a place
type NewsService interface {
	Create(ctx context.Context, claims domain.TokenClaims, placeID string, req *dto.CreateNewsRequest) (*domain.News, error)
	GetByID(ctx context.Context, placeID, newsID string) (*domain.News, error)
	GetByPlace(ctx context.Context, placeID string) ([]*domain.News, error)
	Update(ctx context.Context, claims domain.TokenClaims, placeID, newsID string, req *dto.UpdateNewsRequest) (*domain.News, error)
	UpdatePhoto(ctx context.Context, claims domain.TokenClaims, placeID, newsID, photo string) (*domain.News, error)
	Delete(ctx context.Context, claims domain.TokenClaims, placeID, newsID string) error
}

// CleanupService purges rows past their retention windows
type CleanupService interface {
	Run(ctx context.Context) (*dto.CleanupResponse, error)
}

// Notifier sends transactional emails. Implementations must be safe for
// concurrent use.
type Notifier interface {
	SendWelcome(ctx context.Context, to, name, actionToken string) error
	SendVerifyEmail(ctx context.Context, to, name, actionToken string) error
	SendForgotPassword(ctx context.Context, to, actionToken string) error
	SendAccountRestore(ctx context.Context, to, actionToken string) error
	SendLogout(ctx context.Context, to, name string) error
}

// MediaStorage removes uploaded objects that the database no longer references
type MediaStorage interface {
	Delete(ctx context.Context, url string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
