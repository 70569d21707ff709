package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/placium/places-api/internal/dto"
	"github.com/placium/places-api/internal/repository"
	"github.com/placium/places-api/internal/service"
)

// UserHandler handles profile, favorites and user administration requests
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// GetMe returns the caller's profile
// @Summary Get own profile
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetMe(c.Request.Context(), ClaimsFromContext(c).UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe updates the caller's profile
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.UpdateUserRequest true "Profile fields"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.userService.UpdateMe(c.Request.Context(), ClaimsFromContext(c).UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteMe soft-deletes the caller's account
// @Summary Delete own account
// @Tags users
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.userService.DeleteMe(c.Request.Context(), ClaimsFromContext(c).UserID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePhoto replaces the caller's profile photo
// @Summary Update own photo
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.UpdatePhotoRequest true "Uploaded photo URL"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /users/me/photo [patch]
func (h *UserHandler) UpdatePhoto(c *gin.Context) {
	var req dto.UpdatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.userService.UpdatePhoto(c.Request.Context(), ClaimsFromContext(c).UserID, req.Photo)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// List returns a filtered page of users
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} dto.ListResponse[dto.UserResponse]
// @Failure 403 {object} dto.ErrorResponse
// @Router /users/all [get]
func (h *UserHandler) List(c *gin.Context) {
	query := repository.UserListQuery{
		Name:    c.Query("name"),
		Page:    intQuery(c, "page", 1),
		Limit:   intQuery(c, "limit", 20),
		OrderBy: c.DefaultQuery("order_by", "created_at"),
		Desc:    c.DefaultQuery("order", "desc") == "desc",
	}

	users, err := h.userService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetByID returns a user's profile
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param userId path string true "User id"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{userId} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser soft-deletes any account
// @Summary Delete a user
// @Tags users
// @Param userId path string true "User id"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{userId} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("userId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChangeRole assigns a new role to a user
// @Summary Change a user's role
// @Tags users
// @Accept json
// @Produce json
// @Param userId path string true "User id"
// @Param request body dto.ChangeRoleRequest true "New role"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /users/{userId}/role [patch]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req dto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.userService.ChangeRole(c.Request.Context(), c.Param("userId"), req.Role)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// AddFavorite adds a place to the caller's favorites
// @Summary Add a favorite place
// @Tags users
// @Accept json
// @Param request body dto.FavoriteRequest true "Place id"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/favorites [post]
func (h *UserHandler) AddFavorite(c *gin.Context) {
	var req dto.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.userService.AddFavorite(c.Request.Context(), ClaimsFromContext(c).UserID, req.PlaceID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveFavorite removes a place from the caller's favorites
// @Summary Remove a favorite place
// @Tags users
// @Accept json
// @Param request body dto.FavoriteRequest true "Place id"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/favorites [delete]
func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	var req dto.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.userService.RemoveFavorite(c.Request.Context(), ClaimsFromContext(c).UserID, req.PlaceID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// IsFavorite reports whether a place is in the caller's favorites
// @Summary Check a favorite place
// @Tags users
// @Produce json
// @Param placeId path string true "Place id"
// @Success 200 {object} dto.IsFavoriteResponse
// @Router /users/favorites/{placeId} [get]
func (h *UserHandler) IsFavorite(c *gin.Context) {
	favorite, err := h.userService.IsFavorite(c.Request.Context(), ClaimsFromContext(c).UserID, c.Param("placeId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.IsFavoriteResponse{IsFavorite: favorite})
}

// Favorites returns the caller's favorited places
// @Summary List favorite places
// @Tags users
// @Produce json
// @Success 200 {array} domain.Place
// @Router /users/favorites [get]
func (h *UserHandler) Favorites(c *gin.Context) {
	places, err := h.userService.Favorites(c.Request.Context(), ClaimsFromContext(c).UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, places)
}

// Establishments returns the places administered by the caller
// @Summary List own establishments
// @Tags users
// @Produce json
// @Success 200 {array} domain.Place
// @Failure 403 {object} dto.ErrorResponse
// @Router /users/me/establishments [get]
func (h *UserHandler) Establishments(c *gin.Context) {
	places, err := h.userService.Establishments(c.Request.Context(), ClaimsFromContext(c).UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, places)
}

// ReassignEstablishment transfers a place to another admin
// @Summary Reassign an establishment
// @Tags users
// @Accept json
// @Param placeId path string true "Place id"
// @Param request body dto.ReassignEstablishmentRequest true "New owner"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/reassign-establishment/{placeId} [patch]
func (h *UserHandler) ReassignEstablishment(c *gin.Context) {
	var req dto.ReassignEstablishmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.userService.ReassignEstablishment(c.Request.Context(), c.Param("placeId"), req.UserID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// intQuery parses an integer query parameter with a fallback
func intQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
