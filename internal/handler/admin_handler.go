package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/placium/places-api/internal/service"
)

// AdminHandler handles maintenance endpoints
type AdminHandler struct {
	cleanupService service.CleanupService
	logger         *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(cleanupService service.CleanupService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{cleanupService: cleanupService, logger: logger}
}

// Cleanup purges sessions, action tokens and password history rows past
// their retention windows. Meant to be called by an external scheduler.
// @Summary Purge expired rows
// @Tags admin
// @Produce json
// @Success 200 {object} dto.CleanupResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/cleanup [post]
func (h *AdminHandler) Cleanup(c *gin.Context) {
	result, err := h.cleanupService.Run(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
