package dto

import "github.com/placium/places-api/internal/domain"

// SignUpRequest represents a registration request
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,min=2,max=50"`
}

// SignInRequest represents a login request
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest asks for a password-reset email
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPasswordSetRequest sets a new password using a reset token
type ForgotPasswordSetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// ChangePasswordRequest changes the password of an authenticated user
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// VerifyEmailRequest carries an email-verification token
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// AccountRestoreRequest asks for an account-restore email
type AccountRestoreRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// AccountRestoreSetRequest completes account restore with a new password
type AccountRestoreSetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// UpdateUserRequest updates mutable profile fields. Nil fields are left as-is.
type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=50"`
	Photo *string `json:"photo"`
}

// ChangeRoleRequest assigns a new role to a user
type ChangeRoleRequest struct {
	Role domain.Role `json:"role" binding:"required"`
}

// ReassignEstablishmentRequest transfers a place to another admin
type ReassignEstablishmentRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// FavoriteRequest adds or removes a place from the caller's favorites
type FavoriteRequest struct {
	PlaceID string `json:"place_id" binding:"required"`
}

// CreatePlaceRequest creates an establishment listing
type CreatePlaceRequest struct {
	Name         string           `json:"name" binding:"required,min=2,max=100"`
	Description  string           `json:"description" binding:"max=2000"`
	Address      string           `json:"address" binding:"required"`
	Longitude    float64          `json:"longitude"`
	Latitude     float64          `json:"latitude"`
	Tags         []string         `json:"tags"`
	Type         domain.PlaceType `json:"type" binding:"required"`
	AverageCheck float64          `json:"average_check" binding:"gte=0"`
	Contacts     domain.PlaceContacts `json:"contacts"`
}

// UpdatePlaceRequest updates an establishment. Nil fields are left as-is.
type UpdatePlaceRequest struct {
	Name         *string           `json:"name" binding:"omitempty,min=2,max=100"`
	Description  *string           `json:"description" binding:"omitempty,max=2000"`
	Address      *string           `json:"address"`
	Longitude    *float64          `json:"longitude"`
	Latitude     *float64          `json:"latitude"`
	Tags         []string          `json:"tags"`
	Type         *domain.PlaceType `json:"type"`
	AverageCheck *float64          `json:"average_check" binding:"omitempty,gte=0"`
	Contacts     *domain.PlaceContacts `json:"contacts"`
}

// ModeratePlaceRequest approves or rejects a place listing
type ModeratePlaceRequest struct {
	IsModerated *bool `json:"is_moderated" binding:"required"`
}

// UpdatePhotoRequest replaces a stored photo with a new uploaded URL
type UpdatePhotoRequest struct {
	Photo string `json:"photo" binding:"required,url"`
}

// CreateReviewRequest creates a review of a place
type CreateReviewRequest struct {
	Rating int     `json:"rating" binding:"required,min=1,max=5"`
	Text   string  `json:"text" binding:"max=2000"`
	Check  float64 `json:"check" binding:"gte=0"`
}

// UpdateReviewRequest edits an existing review. Nil fields are left as-is.
type UpdateReviewRequest struct {
	Rating *int     `json:"rating" binding:"omitempty,min=1,max=5"`
	Text   *string  `json:"text" binding:"omitempty,max=2000"`
	Check  *float64 `json:"check" binding:"omitempty,gte=0"`
}

// CreateNewsRequest creates a news post for a place
type CreateNewsRequest struct {
	Type  domain.NewsType `json:"type" binding:"required"`
	Title string          `json:"title" binding:"required,min=2,max=200"`
	Text  string          `json:"text" binding:"required,max=5000"`
}

// UpdateNewsRequest edits a news post. Nil fields are left as-is.
type UpdateNewsRequest struct {
	Type  *domain.NewsType `json:"type"`
	Title *string          `json:"title" binding:"omitempty,min=2,max=200"`
	Text  *string          `json:"text" binding:"omitempty,max=5000"`
}

// ViewsStatsRequest selects a half-open [from, to) window of view counts
type ViewsStatsRequest struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}
