package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create a user with an existing email
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicateToken is returned when trying to store a token that already exists
	ErrDuplicateToken = errors.New("token already exists")

	// ErrDuplicateReview is returned when a user already has a review for the place
	ErrDuplicateReview = errors.New("review for this place already exists")
)
