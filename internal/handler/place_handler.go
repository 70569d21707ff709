package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/placium/places-api/internal/apperr"
	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/internal/dto"
	"github.com/placium/places-api/internal/repository"
	"github.com/placium/places-api/internal/service"
)

// PlaceHandler handles establishment catalog requests
type PlaceHandler struct {
	placeService service.PlaceService
	logger       *zap.Logger
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(placeService service.PlaceService, logger *zap.Logger) *PlaceHandler {
	return &PlaceHandler{placeService: placeService, logger: logger}
}

// List returns a filtered page of places
// @Summary List places
// @Tags places
// @Produce json
// @Param name query string false "Name filter"
// @Param type query string false "Place type filter"
// @Param tag query string false "Tag filter"
// @Success 200 {object} dto.ListResponse[domain.Place]
// @Router /places [get]
func (h *PlaceHandler) List(c *gin.Context) {
	query := repository.PlaceListQuery{
		Name:    c.Query("name"),
		Type:    domain.PlaceType(c.Query("type")),
		Tag:     c.Query("tag"),
		Page:    intQuery(c, "page", 1),
		Limit:   intQuery(c, "limit", 20),
		OrderBy: c.DefaultQuery("order_by", "created_at"),
		Desc:    c.DefaultQuery("order", "desc") == "desc",
	}

	places, err := h.placeService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, places)
}

// AllTags returns every distinct tag in the catalog
// @Summary List tags
// @Tags places
// @Produce json
// @Success 200 {array} string
// @Router /places/tags [get]
func (h *PlaceHandler) AllTags(c *gin.Context) {
	tags, err := h.placeService.AllTags(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetByID returns a place
// @Summary Get place by id
// @Tags places
// @Produce json
// @Param placeId path string true "Place id"
// @Success 200 {object} domain.Place
// @Failure 404 {object} dto.ErrorResponse
// @Router /places/{placeId} [get]
func (h *PlaceHandler) GetByID(c *gin.Context) {
	place, err := h.placeService.GetByID(c.Request.Context(), c.Param("placeId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, place)
}

// Create registers a new establishment
// @Summary Create a place
// @Tags places
// @Accept json
// @Produce json
// @Param request body dto.CreatePlaceRequest true "Place fields"
// @Success 201 {object} domain.Place
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /places [post]
func (h *PlaceHandler) Create(c *gin.Context) {
	var req dto.CreatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	place, err := h.placeService.Create(c.Request.Context(), ClaimsFromContext(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, place)
}

// Update edits an establishment
// @Summary Update a place
// @Tags places
// @Accept json
// @Produce json
// @Param placeId path string true "Place id"
// @Param request body dto.UpdatePlaceRequest true "Changed fields"
// @Success 200 {object} domain.Place
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /places/{placeId} [patch]
func (h *PlaceHandler) Update(c *gin.Context) {
	var req dto.UpdatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	place, err := h.placeService.Update(c.Request.Context(), ClaimsFromContext(c), c.Param("placeId"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, place)
}

// UpdatePhoto replaces a place's photo
// @Summary Update a place photo
// @Tags places
// @Accept json
// @Produce json
// @Param placeId path string true "Place id"
// @Param request body dto.UpdatePhotoRequest true "Uploaded photo URL"
// @Success 200 {object} domain.Place
// @Failure 403 {object} dto.ErrorResponse
// @Router /places/{placeId}/photo [patch]
func (h *PlaceHandler) UpdatePhoto(c *gin.Context) {
	var req dto.UpdatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	place, err := h.placeService.UpdatePhoto(c.Request.Context(), ClaimsFromContext(c), c.Param("placeId"), req.Photo)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, place)
}

// Delete soft-deletes an establishment
// @Summary Delete a place
// @Tags places
// @Param placeId path string true "Place id"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /places/{placeId} [delete]
func (h *PlaceHandler) Delete(c *gin.Context) {
	if err := h.placeService.Delete(c.Request.Context(), ClaimsFromContext(c), c.Param("placeId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Moderate approves or rejects a place listing
// @Summary Moderate a place
// @Tags places
// @Accept json
// @Produce json
// @Param placeId path string true "Place id"
// @Param request body dto.ModeratePlaceRequest true "Moderation verdict"
// @Success 200 {object} domain.Place
// @Failure 404 {object} dto.ErrorResponse
// @Router /places/{placeId}/moderate [patch]
func (h *PlaceHandler) Moderate(c *gin.Context) {
	var req dto.ModeratePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	place, err := h.placeService.Moderate(c.Request.Context(), c.Param("placeId"), *req.IsModerated)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, place)
}

// AddView records the caller viewing a place
// @Summary Record a place view
// @Tags places
// @Param placeId path string true "Place id"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /places/{placeId}/view [post]
func (h *PlaceHandler) AddView(c *gin.Context) {
	if err := h.placeService.AddView(c.Request.Context(), c.Param("placeId"), ClaimsFromContext(c).UserID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ViewsStats counts a place's views between two dates
// @Summary Get place view statistics
// @Tags places
// @Produce json
// @Param placeId path string true "Place id"
// @Param from query string true "Window start, RFC 3339 date"
// @Param to query string true "Window end, RFC 3339 date"
// @Success 200 {object} dto.ViewsStatsResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /places/{placeId}/views-stats [get]
func (h *PlaceHandler) ViewsStats(c *gin.Context) {
	var req dto.ViewsStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidation(c, err)
		return
	}

	from, err := parseDate(req.From)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	to, err := parseDate(req.To)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	stats, err := h.placeService.ViewsStats(c.Request.Context(), ClaimsFromContext(c), c.Param("placeId"), from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// parseDate accepts either a full RFC 3339 timestamp or a bare date
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperr.Newf(apperr.KindValidation, "invalid date %q", value)
	}
	return t, nil
}
