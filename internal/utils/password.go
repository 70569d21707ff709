package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/placium/places-api/internal/apperr"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a password with a hash.
// A malformed hash is reported as a mismatch, never as an error.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// EnsureNotReused rejects a candidate password that matches the current hash
// or any retained historical hash. Fails on the first match.
func EnsureNotReused(candidate, currentHash string, historicalHashes []string) error {
	if CheckPasswordHash(candidate, currentHash) {
		return apperr.New(apperr.KindPasswordReuse)
	}
	for _, hash := range historicalHashes {
		if CheckPasswordHash(candidate, hash) {
			return apperr.New(apperr.KindPasswordReuse)
		}
	}
	return nil
}
