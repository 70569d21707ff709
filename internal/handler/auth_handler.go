package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/placium/places-api/internal/dto"
	"github.com/placium/places-api/internal/service"
)

// AuthHandler handles account lifecycle requests
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Ping confirms the presented refresh token is still valid
// @Summary Check session liveness
// @Tags auth
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/ping [get]
func (h *AuthHandler) Ping(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// SignUp handles user registration. If the email belongs to a soft-deleted
// account, the response is a restore hint instead of a new registration.
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Registration request"
// @Success 201 {object} dto.AuthResponse
// @Success 200 {object} dto.CanRestoreResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/sign-up [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	if EmailDeletedFromContext(c) {
		c.JSON(http.StatusOK, dto.CanRestoreResponse{CanRestore: true})
		return
	}

	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	response, err := h.authService.SignUp(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// SignIn handles user login
// @Summary Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignInRequest true "Login request"
// @Success 201 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /auth/sign-in [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	response, err := h.authService.SignIn(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Refresh rotates the presented session pair
// @Summary Rotate the session token pair
// @Tags auth
// @Produce json
// @Success 201 {object} domain.TokenPair
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	tokens, err := h.authService.Refresh(c.Request.Context(), ClaimsFromContext(c), RefreshTokenFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, tokens)
}

// Logout revokes the presented session
// @Summary Close the current session
// @Tags auth
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), ClaimsFromContext(c), AccessTokenFromContext(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// LogoutAll revokes every session of the caller
// @Summary Close all sessions
// @Tags auth
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	if err := h.authService.LogoutAll(c.Request.Context(), ClaimsFromContext(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// VerifyEmail consumes a verification token and marks the email verified
// @Summary Verify email
// @Tags auth
// @Accept json
// @Param request body dto.VerifyEmailRequest true "Verification token"
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.authService.Verify(c.Request.Context(), ClaimsFromContext(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ResendVerification issues a fresh verification token
// @Summary Resend the verification email
// @Tags auth
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	if err := h.authService.ResendVerifyEmail(c.Request.Context(), ClaimsFromContext(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ForgotPassword emails a password-reset token
// @Summary Request a password reset
// @Tags auth
// @Accept json
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/password-forgot [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ForgotPasswordSet sets a new password using a reset token
// @Summary Complete a password reset
// @Tags auth
// @Accept json
// @Param request body dto.ForgotPasswordSetRequest true "Reset token and new password"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/password-forgot [put]
func (h *AuthHandler) ForgotPasswordSet(c *gin.Context) {
	var req dto.ForgotPasswordSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.authService.ForgotPasswordSet(c.Request.Context(), ClaimsFromContext(c), req.Token, req.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ChangePassword replaces the caller's password
// @Summary Change password
// @Tags auth
// @Accept json
// @Param request body dto.ChangePasswordRequest true "Old and new password"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/password-change [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), ClaimsFromContext(c).UserID, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AccountRestore emails an account-restore token
// @Summary Request account restore
// @Tags auth
// @Accept json
// @Param request body dto.AccountRestoreRequest true "Account email"
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/account-restore [post]
func (h *AuthHandler) AccountRestore(c *gin.Context) {
	var req dto.AccountRestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.authService.AccountRestore(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AccountRestoreSet reactivates a soft-deleted account
// @Summary Complete account restore
// @Tags auth
// @Accept json
// @Param request body dto.AccountRestoreSetRequest true "Restore token and new password"
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/account-restore [put]
func (h *AuthHandler) AccountRestoreSet(c *gin.Context) {
	var req dto.AccountRestoreSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.authService.AccountRestoreSet(c.Request.Context(), ClaimsFromContext(c), req.Token, req.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
