package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/placium/places-api/internal/apperr"
	"github.com/placium/places-api/internal/domain"
)

// TokenSettings is the signing secret and lifetime for one token type
type TokenSettings struct {
	Secret string
	Expiry time.Duration
}

// TokenManager signs and verifies every token kind the service issues.
// Each token type has its own secret and expiry, so an access token can
// never pass verification as a refresh or action token.
type TokenManager struct {
	settings map[domain.TokenType]TokenSettings
}

// NewTokenManager creates a token manager from per-type settings
func NewTokenManager(settings map[domain.TokenType]TokenSettings) *TokenManager {
	return &TokenManager{settings: settings}
}

// GeneratePair generates a new access/refresh session pair
func (m *TokenManager) GeneratePair(claims domain.TokenClaims) (domain.TokenPair, error) {
	accessToken, err := m.Generate(claims, domain.TokenAccess)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refreshToken, err := m.Generate(claims, domain.TokenRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Generate signs a token of the given type. An unknown type is a wiring bug
// and surfaces as an internal error, never as a retryable client failure.
func (m *TokenManager) Generate(claims domain.TokenClaims, tokenType domain.TokenType) (string, error) {
	settings, ok := m.settings[tokenType]
	if !ok {
		return "", apperr.Newf(apperr.KindInternal, "invalid token type %q", tokenType)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": claims.UserID,
		"role":    string(claims.Role),
		"name":    claims.Name,
		"exp":     now.Add(settings.Expiry).Unix(),
		"iat":     now.Unix(),
		"typ":     string(tokenType),
		"jti":     uuid.New().String(),
	})

	tokenString, err := token.SignedString([]byte(settings.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, nil
}

// Verify checks a token's signature and expiry against the given type's
// secret and returns its claims. Every verification failure, whether the
// token is expired, tampered with or signed for another type, collapses to
// the same invalid-token error so callers get no verification oracle.
func (m *TokenManager) Verify(tokenString string, tokenType domain.TokenType) (domain.TokenClaims, error) {
	settings, ok := m.settings[tokenType]
	if !ok {
		return domain.TokenClaims{}, apperr.Newf(apperr.KindInternal, "invalid token type %q", tokenType)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(settings.Secret), nil
	})
	if err != nil || !token.Valid {
		return domain.TokenClaims{}, apperr.New(apperr.KindInvalidToken)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.TokenClaims{}, apperr.New(apperr.KindInvalidToken)
	}

	userID, ok := mapClaims["user_id"].(string)
	if !ok {
		return domain.TokenClaims{}, apperr.New(apperr.KindInvalidToken)
	}

	role, ok := mapClaims["role"].(string)
	if !ok {
		return domain.TokenClaims{}, apperr.New(apperr.KindInvalidToken)
	}

	name, _ := mapClaims["name"].(string)

	if typ, ok := mapClaims["typ"].(string); !ok || typ != string(tokenType) {
		return domain.TokenClaims{}, apperr.New(apperr.KindInvalidToken)
	}

	return domain.TokenClaims{
		UserID: userID,
		Role:   domain.Role(role),
		Name:   name,
	}, nil
}

// Expiry returns the configured lifetime for a token type
func (m *TokenManager) Expiry(tokenType domain.TokenType) time.Duration {
	return m.settings[tokenType].Expiry
}
