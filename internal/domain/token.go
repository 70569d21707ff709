package domain

import "time"

// TokenType identifies which secret and expiry a token is signed with
type TokenType string

const (
	TokenAccess  TokenType = "ACCESS"
	TokenRefresh TokenType = "REFRESH"

	// Single-purpose action tokens, consumed on use
	TokenVerifyEmail    TokenType = "VERIFY_EMAIL"
	TokenForgotPassword TokenType = "FORGOT_PASSWORD"
	TokenAccountRestore TokenType = "ACCOUNT_RESTORE"
)

// TokenClaims is the payload carried by every issued token
type TokenClaims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	Name   string `json:"name"`
}

// TokenPair is an issued access/refresh session pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session is a persisted token pair. A verified token without a matching
// session row is treated as invalid, which is how server-side revocation works.
type Session struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	AccessToken  string    `json:"-" db:"access_token"`
	RefreshToken string    `json:"-" db:"refresh_token"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ActionToken is a persisted single-purpose token. At most one row per
// (user, type) is kept: issuing a new one replaces the previous.
type ActionToken struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Token     string    `json:"-" db:"token"`
	Type      TokenType `json:"type" db:"type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
