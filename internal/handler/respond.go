package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/placium/places-api/internal/apperr"
	"github.com/placium/places-api/internal/dto"
)

// respondError renders a typed service error with its mapped status. Anything
// untyped is a 500 whose detail goes to the log, never to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if e := apperr.From(err); e != nil {
		c.AbortWithStatusJSON(e.StatusCode(), dto.ErrorResponse{
			Error:   string(e.Kind),
			Message: e.Message,
		})
		return
	}

	logger.Error("unhandled error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   string(apperr.KindInternal),
		Message: "Something went wrong",
	})
}

// respondValidation renders a request-binding failure
func respondValidation(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   string(apperr.KindValidation),
		Message: err.Error(),
	})
}
