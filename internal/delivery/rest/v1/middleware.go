package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) adminAccessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.config.Private_key == "" || h.config.Private_key != c.Request.Header.Get("Access") {
			responseErr(c, http.StatusUnauthorized, "access denied", "")
			c.Abort()
			return
		}
		c.Next()
	}
}
