package v1

import (
	"paywatch/internal/config"
	"paywatch/internal/logger"
	"paywatch/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	services *service.Services
	db       *gorm.DB
	config   *config.Config
	log      logger.Logger
}

func (h *Handler) InitRoutes(g *gin.RouterGroup) {
	{
		h.initMerchantRoutes(g)
		h.initPaymentRoutes(g)
		h.initWebhookRoutes(g)
		h.initStatusRoutes(g)
	}
}

func NewHandler(services *service.Services, db *gorm.DB, config *config.Config, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		log:      log,
		services: services,
		db:       db,
	}
}
