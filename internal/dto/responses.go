package dto

import (
	"time"

	"github.com/placium/places-api/internal/domain"
)

// UserResponse represents a user without credential material
type UserResponse struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	Role       domain.Role `json:"role"`
	Photo      string      `json:"photo,omitempty"`
	IsVerified bool        `json:"is_verified"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewUserResponse strips credential fields from a user
func NewUserResponse(user *domain.User) *UserResponse {
	return &UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		Photo:      user.Photo,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

// NewUserResponseList maps a slice of users
func NewUserResponseList(users []*domain.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// AuthResponse is returned on sign-up and sign-in
type AuthResponse struct {
	User   *UserResponse     `json:"user"`
	Tokens *domain.TokenPair `json:"tokens"`
}

// CanRestoreResponse signals that the email belongs to a soft-deleted
// account which may be restored instead of re-registered.
type CanRestoreResponse struct {
	CanRestore bool `json:"canRestore"`
}

// ListResponse wraps a paginated collection
type ListResponse[T any] struct {
	Items []T  `json:"items"`
	Total int  `json:"total"`
	Page  int  `json:"page"`
	Limit int  `json:"limit"`
}

// IsFavoriteResponse answers a favorite check for a single place
type IsFavoriteResponse struct {
	IsFavorite bool `json:"is_favorite"`
}

// ViewsStatsResponse reports how many views a place collected in a window
type ViewsStatsResponse struct {
	PlaceID string    `json:"place_id"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Views   int       `json:"views"`
}

// CleanupResponse reports how many expired rows each purge removed
type CleanupResponse struct {
	Sessions     int64 `json:"sessions"`
	ActionTokens int64 `json:"action_tokens"`
	OldPasswords int64 `json:"old_passwords"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
