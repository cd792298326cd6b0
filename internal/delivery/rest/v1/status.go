package v1

import (
	"net/http"

	"paywatch/internal/domain"
	"paywatch/internal/logger"

	"github.com/gin-gonic/gin"
)

// GET /status
func (h *Handler) status(c *gin.Context) {
	var errid = logger.GenErrorId()

	status, err := h.services.Status.Get(c.Request.Context())
	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.TemplAPIErr("status error: "+err.Error(), errid, c.Request.RequestURI, c.ClientIP())
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseStatus{
		Error:              false,
		LastProcessedBlock: status.LastProcessedBlock,
		ChainHeight:        status.ChainHeight,
		Lag:                status.Lag,
	})
}

func (h *Handler) initStatusRoutes(g *gin.RouterGroup) {
	g.GET("/status", h.status)
}
