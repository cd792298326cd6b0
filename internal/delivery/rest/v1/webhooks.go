package v1

import (
	"errors"
	"net/http"

	"paywatch/internal/config"
	"paywatch/internal/domain"
	"paywatch/internal/infra/postgres"
	"paywatch/internal/logger"
	"paywatch/internal/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// POST /webhook/create
func (h *Handler) webhookCreate(c *gin.Context) {
	var data struct {
		MerchantAddress string `json:"merchant_address" validate:"required"`
		Url             string `json:"url" validate:"required,max=2048"`
	}

	var errid = logger.GenErrorId()

	if err := c.ShouldBindJSON(&data); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		h.log.Debug("bind json error: " + err.Error())
		return
	}

	v := validator.New()

	if err := v.Struct(data); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	if !validAddress(data.MerchantAddress) {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgInvalidAddress, "")
		return
	}

	sub, err := h.services.Subscriptions.Create(common.HexToAddress(data.MerchantAddress).Hex(), data.Url)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownMerchant):
			responseErr(c, http.StatusNotFound, domain.ErrMsgMerchantNotFound, "")
		case errors.Is(err, service.ErrInvalidWebhookUrl):
			responseErr(c, http.StatusBadRequest, domain.ErrMsgInvalidWebhookUrl, "")
		default:
			responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
			h.log.TemplAPIErr("create subscription error: "+err.Error(), errid, c.Request.RequestURI, c.ClientIP())
		}
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseSubscriptionCreated{
		Error:          false,
		SubscriptionID: sub.ID,
		Secret:         sub.Secret,
	})
}

// POST /webhook/deactivate
func (h *Handler) webhookDeactivate(c *gin.Context) {
	var data struct {
		SubscriptionID string `json:"subscription_id" validate:"required,uuid4"`
	}

	var errid = logger.GenErrorId()

	if err := c.ShouldBindJSON(&data); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	v := validator.New()

	if err := v.Struct(data); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	if err := h.services.Subscriptions.Deactivate(data.SubscriptionID); err != nil {
		if postgres.IsNotFound(err) {
			responseErr(c, http.StatusNotFound, domain.ErrMsgSubscriptionNotFound, "")
		} else {
			responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
			h.log.TemplAPIErr("deactivate subscription error: "+err.Error(), errid, c.Request.RequestURI, c.ClientIP())
		}
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseSubscriptionDeactivated{Error: false})
}

// POST /webhook/updateProxyList
//
// reloads the SOCKS5 egress list from disk without a restart
func (h *Handler) updateProxyList(c *gin.Context) {
	if h.config.Webhook.ProxyPath == "" {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	proxies, err := config.GetProxyList(h.config.Webhook.ProxyPath)
	if err != nil {
		errid := logger.GenErrorId()
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.TemplAPIErr("read proxy list: "+err.Error(), errid, c.Request.RequestURI, c.ClientIP())
		return
	}

	h.services.Dispatcher.UpdateProxyList(proxies)

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"proxies": h.services.Dispatcher.ProxyCount(),
	})
}

func (h *Handler) getProxyCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"proxies": h.services.Dispatcher.ProxyCount(),
	})
}

func (h *Handler) initWebhookRoutes(g *gin.RouterGroup) {
	g.POST("/webhook/create", h.webhookCreate)
	g.POST("/webhook/deactivate", h.webhookDeactivate)

	g.POST("/webhook/updateProxyList", h.adminAccessMiddleware(), h.updateProxyList)
	g.POST("/webhook/getProxyCount", h.adminAccessMiddleware(), h.getProxyCount)
}
