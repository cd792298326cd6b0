package delivery

import (
	"paywatch/internal/config"
	v1 "paywatch/internal/delivery/rest/v1"
	"paywatch/internal/logger"
	"paywatch/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	Services *service.Services
	Db       *gorm.DB
	Config   *config.Config
	Log      logger.Logger
}

func (h *Handler) InitAPI(r *gin.Engine) {
	v1Group := r.Group("/v1")

	v1Handler := v1.NewHandler(h.Services, h.Db, h.Config, h.Log)

	{
		v1Handler.InitRoutes(v1Group)
	}
}

func InitHandler(services *service.Services, db *gorm.DB, config *config.Config, log logger.Logger) *Handler {
	return &Handler{
		Config:   config,
		Log:      log,
		Services: services,
		Db:       db,
	}
}
