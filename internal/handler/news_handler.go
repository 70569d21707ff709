package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/placium/places-api/internal/dto"
	"github.com/placium/places-api/internal/service"
)

// NewsHandler handles news requests nested under a place
type NewsHandler struct {
	newsService service.NewsService
	logger      *zap.Logger
}

// NewNewsHandler creates a new news handler
func NewNewsHandler(newsService service.NewsService, logger *zap.Logger) *NewsHandler {
	return &NewsHandler{newsService: newsService, logger: logger}
}

// Create posts news to a place
// @Summary Create news
// @Tags news
// @Accept json
// @Produce json
// @Param placeId path string true "Place id"
// @Param request body dto.CreateNewsRequest true "News fields"
// @Success 201 {object} domain.News
// @Failure 403 {object} dto.ErrorResponse
// @Router /places/{placeId}/news [post]
func (h *NewsHandler) Create(c *gin.Context) {
	var req dto.CreateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	news, err := h.newsService.Create(c.Request.Context(), ClaimsFromContext(c), c.Param("placeId"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, news)
}

// GetByID returns a news post
// @Summary Get news by id
// @Tags news
// @Produce json
// @Param placeId path string true "Place id"
// @Param newsId path string true "News id"
// @Success 200 {object} domain.News
// @Failure 404 {object} dto.ErrorResponse
// @Router /places/{placeId}/news/{newsId} [get]
func (h *NewsHandler) GetByID(c *gin.Context) {
	news, err := h.newsService.GetByID(c.Request.Context(), c.Param("placeId"), c.Param("newsId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, news)
}

// GetByPlace returns the news of a place
// @Summary List news of a place
// @Tags news
// @Produce json
// @Param placeId path string true "Place id"
// @Success 200 {array} domain.News
// @Failure 404 {object} dto.ErrorResponse
// @Router /places/{placeId}/news [get]
func (h *NewsHandler) GetByPlace(c *gin.Context) {
	items, err := h.newsService.GetByPlace(c.Request.Context(), c.Param("placeId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Update edits a news post
// @Summary Update news
// @Tags news
// @Accept json
// @Produce json
// @Param placeId path string true "Place id"
// @Param newsId path string true "News id"
// @Param request body dto.UpdateNewsRequest true "Changed fields"
// @Success 200 {object} domain.News
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /places/{placeId}/news/{newsId} [patch]
func (h *NewsHandler) Update(c *gin.Context) {
	var req dto.UpdateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	news, err := h.newsService.Update(c.Request.Context(), ClaimsFromContext(c), c.Param("placeId"), c.Param("newsId"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, news)
}

// UpdatePhoto replaces a news photo
// @Summary Update a news photo
// @Tags news
// @Accept json
// @Produce json
// @Param placeId path string true "Place id"
// @Param newsId path string true "News id"
// @Param request body dto.UpdatePhotoRequest true "Uploaded photo URL"
// @Success 200 {object} domain.News
// @Failure 403 {object} dto.ErrorResponse
// @Router /places/{placeId}/news/{newsId}/photo [patch]
func (h *NewsHandler) UpdatePhoto(c *gin.Context) {
	var req dto.UpdatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	news, err := h.newsService.UpdatePhoto(c.Request.Context(), ClaimsFromContext(c), c.Param("placeId"), c.Param("newsId"), req.Photo)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, news)
}

// Delete removes a news post
// @Summary Delete news
// @Tags news
// @Param placeId path string true "Place id"
// @Param newsId path string true "News id"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /places/{placeId}/news/{newsId} [delete]
func (h *NewsHandler) Delete(c *gin.Context) {
	if err := h.newsService.Delete(c.Request.Context(), ClaimsFromContext(c), c.Param("placeId"), c.Param("newsId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
