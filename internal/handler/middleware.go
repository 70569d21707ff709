package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/placium/places-api/internal/apperr"
	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/internal/repository"
	"github.com/placium/places-api/internal/utils"
)

// Context keys set by the auth middleware
const (
	ctxClaims       = "tokenClaims"
	ctxAccessToken  = "accessToken"
	ctxRefreshToken = "refreshToken"
	ctxActionToken  = "actionToken"
	ctxEmailDeleted = "emailDeleted"
)

// AuthMiddleware gates routes on token possession, role and account state.
// Session and action tokens must both verify cryptographically AND exist in
// their store; deleting the row is how the server revokes a token it cannot
// un-sign.
type AuthMiddleware struct {
	tokenManager    *utils.TokenManager
	sessionRepo     repository.SessionRepository
	actionTokenRepo repository.ActionTokenRepository
	userRepo        repository.UserRepository
	logger          *zap.Logger
}

// NewAuthMiddleware creates the auth middleware
func NewAuthMiddleware(
	tokenManager *utils.TokenManager,
	sessionRepo repository.SessionRepository,
	actionTokenRepo repository.ActionTokenRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) *AuthMiddleware {
	return &AuthMiddleware{
		tokenManager:    tokenManager,
		sessionRepo:     sessionRepo,
		actionTokenRepo: actionTokenRepo,
		userRepo:        userRepo,
		logger:          logger,
	}
}

// RequireAccessToken authenticates the request with a bearer access token
func (m *AuthMiddleware) RequireAccessToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			respondError(c, m.logger, err)
			return
		}

		claims, err := m.tokenManager.Verify(token, domain.TokenAccess)
		if err != nil {
			respondError(c, m.logger, err)
			return
		}

		if _, err := m.sessionRepo.GetByAccessToken(c.Request.Context(), token); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				respondError(c, m.logger, apperr.New(apperr.KindInvalidToken))
				return
			}
			respondError(c, m.logger, err)
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxAccessToken, token)
		c.Next()
	}
}

// RequireRefreshToken authenticates the request with a bearer refresh token
func (m *AuthMiddleware) RequireRefreshToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			respondError(c, m.logger, err)
			return
		}

		claims, err := m.tokenManager.Verify(token, domain.TokenRefresh)
		if err != nil {
			respondError(c, m.logger, err)
			return
		}

		if _, err := m.sessionRepo.GetByRefreshToken(c.Request.Context(), token); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				respondError(c, m.logger, apperr.New(apperr.KindInvalidToken))
				return
			}
			respondError(c, m.logger, err)
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxRefreshToken, token)
		c.Next()
	}
}

// RequireActionToken authenticates the request with a single-purpose token
// carried in the JSON body. The store lookup runs before signature
// verification, so a consumed token fails exactly like a forged one.
func (m *AuthMiddleware) RequireActionToken(tokenType domain.TokenType) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := tokenFromBody(c)
		if err != nil {
			respondError(c, m.logger, err)
			return
		}

		if _, err := m.actionTokenRepo.GetByToken(c.Request.Context(), token); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				respondError(c, m.logger, apperr.New(apperr.KindInvalidToken))
				return
			}
			respondError(c, m.logger, err)
			return
		}

		claims, err := m.tokenManager.Verify(token, tokenType)
		if err != nil {
			respondError(c, m.logger, err)
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxActionToken, token)
		c.Next()
	}
}

// RequireVerifiedUser rejects callers whose email is not verified. Runs
// after RequireAccessToken.
func (m *AuthMiddleware) RequireVerifiedUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)

		user, err := m.userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				respondError(c, m.logger, apperr.New(apperr.KindNotFound))
				return
			}
			respondError(c, m.logger, err)
			return
		}

		if !user.IsVerified {
			respondError(c, m.logger, apperr.New(apperr.KindUserNotVerified))
			return
		}

		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed set
func (m *AuthMiddleware) RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		respondError(c, m.logger, apperr.New(apperr.KindForbidden))
	}
}

// CheckEmailState inspects the email in the request body before a credential
// flow. A soft-deleted account sets a flag instead of failing, so sign-up can
// answer with a restore hint. On a safe flow (sign-up) a live duplicate is a
// conflict; on an unsafe flow (sign-in) an unknown email is a credential
// failure.
func (m *AuthMiddleware) CheckEmailState(safe bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := emailFromBody(c)
		if err != nil {
			respondError(c, m.logger, err)
			return
		}

		user, err := m.userRepo.GetByEmail(c.Request.Context(), utils.SanitizeEmail(email))
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			respondError(c, m.logger, err)
			return
		}

		switch {
		case user != nil && user.IsDeleted:
			c.Set(ctxEmailDeleted, true)
		case user != nil && safe:
			respondError(c, m.logger, apperr.New(apperr.KindEmailInUse))
			return
		case user == nil && !safe:
			respondError(c, m.logger, apperr.New(apperr.KindInvalidCredentials))
			return
		}

		c.Next()
	}
}

// ClaimsFromContext returns the token claims set by the auth middleware
func ClaimsFromContext(c *gin.Context) domain.TokenClaims {
	claims, _ := c.Get(ctxClaims)
	tokenClaims, _ := claims.(domain.TokenClaims)
	return tokenClaims
}

// AccessTokenFromContext returns the raw access token of the request
func AccessTokenFromContext(c *gin.Context) string {
	return c.GetString(ctxAccessToken)
}

// RefreshTokenFromContext returns the raw refresh token of the request
func RefreshTokenFromContext(c *gin.Context) string {
	return c.GetString(ctxRefreshToken)
}

// ActionTokenFromContext returns the raw action token of the request
func ActionTokenFromContext(c *gin.Context) string {
	return c.GetString(ctxActionToken)
}

// EmailDeletedFromContext reports whether CheckEmailState saw a soft-deleted
// account
func EmailDeletedFromContext(c *gin.Context) bool {
	return c.GetBool(ctxEmailDeleted)
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", apperr.New(apperr.KindNoAuthHeader)
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", apperr.New(apperr.KindInvalidAuthFormat)
	}

	return token, nil
}

// tokenFromBody extracts the "token" field without consuming the body; the
// handler still binds the full request afterwards.
func tokenFromBody(c *gin.Context) (string, error) {
	body, err := peekBody(c)
	if err != nil {
		return "", err
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Token == "" {
		return "", apperr.New(apperr.KindActionTokenRequired)
	}

	return payload.Token, nil
}

// emailFromBody extracts the "email" field without consuming the body
func emailFromBody(c *gin.Context) (string, error) {
	body, err := peekBody(c)
	if err != nil {
		return "", err
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Email == "" {
		return "", apperr.Newf(apperr.KindValidation, "email is required")
	}

	return payload.Email, nil
}

func peekBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err)
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	return body, nil
}
