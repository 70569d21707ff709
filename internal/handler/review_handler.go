package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/placium/places-api/internal/dto"
	"github.com/placium/places-api/internal/service"
)

// ReviewHandler handles review requests nested under a place
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *zap.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, logger: logger}
}

// Create writes the caller's review of a place
// @Summary Create a review
// @Tags reviews
// @Accept json
// @Produce json
// @Param placeId path string true "Place id"
// @Param request body dto.CreateReviewRequest true "Review fields"
// @Success 201 {object} domain.Review
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /places/{placeId}/reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), ClaimsFromContext(c), c.Param("placeId"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// GetByPlace returns the reviews of a place
// @Summary List reviews of a place
// @Tags reviews
// @Produce json
// @Param placeId path string true "Place id"
// @Success 200 {array} domain.Review
// @Failure 404 {object} dto.ErrorResponse
// @Router /places/{placeId}/reviews [get]
func (h *ReviewHandler) GetByPlace(c *gin.Context) {
	reviews, err := h.reviewService.GetByPlace(c.Request.Context(), c.Param("placeId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// Update edits a review
// @Summary Update a review
// @Tags reviews
// @Accept json
// @Produce json
// @Param placeId path string true "Place id"
// @Param reviewId path string true "Review id"
// @Param request body dto.UpdateReviewRequest true "Changed fields"
// @Success 200 {object} domain.Review
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /places/{placeId}/reviews/{reviewId} [patch]
func (h *ReviewHandler) Update(c *gin.Context) {
	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), ClaimsFromContext(c), c.Param("placeId"), c.Param("reviewId"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Delete removes a review
// @Summary Delete a review
// @Tags reviews
// @Param placeId path string true "Place id"
// @Param reviewId path string true "Review id"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /places/{placeId}/reviews/{reviewId} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.reviewService.Delete(c.Request.Context(), ClaimsFromContext(c), c.Param("placeId"), c.Param("reviewId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
