package observability

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinHandler adapts a stdlib metrics handler to a Gin route
func GinHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "metrics are not initialized",
			})
			return
		}
		handler.ServeHTTP(c.Writer, c.Request)
	}
}
