package domain

import "time"

// Role is a user's access level in the system
type Role string

const (
	RoleUser               Role = "USER"
	RoleCritic             Role = "CRITIC"
	RoleEstablishmentAdmin Role = "ESTABLISHMENT_ADMIN"
	RoleSuperadmin         Role = "SUPERADMIN"
)

// Valid reports whether the role is one of the known values
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleCritic, RoleEstablishmentAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// User represents a user account.
// Favorites and admin establishments live in join tables and are loaded on demand.
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role"`
	Name         string     `json:"name" db:"name"`
	Photo        string     `json:"photo" db:"photo"`
	IsVerified   bool       `json:"is_verified" db:"is_verified"`
	IsDeleted    bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt    *time.Time `json:"deleted_at" db:"deleted_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// OldPassword holds a password hash that was replaced by a newer one.
// Kept so a user cannot rotate back to a recently used password.
type OldPassword struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
