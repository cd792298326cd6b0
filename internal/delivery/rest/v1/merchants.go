package v1

import (
	"net/http"

	"paywatch/internal/domain"
	"paywatch/internal/infra/postgres"
	"paywatch/internal/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// GET /merchant/:address
func (h *Handler) merchantInfo(c *gin.Context) {
	var errid = logger.GenErrorId()

	address := c.Param("address")
	if !validAddress(address) {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgInvalidAddress, "")
		return
	}

	merchant, err := h.services.Repos.Merchants.FindByAddress(h.db, common.HexToAddress(address).Hex())
	if err != nil {
		if postgres.IsNotFound(err) {
			responseErr(c, http.StatusNotFound, domain.ErrMsgMerchantNotFound, "")
		} else {
			responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
			h.log.TemplAPIErr("find merchant error: "+err.Error(), errid, c.Request.RequestURI, c.ClientIP())
		}
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseMerchant{
		Error:         false,
		Address:       merchant.Address,
		BusinessName:  merchant.BusinessName,
		IsActive:      merchant.IsActive,
		RegisteredAt:  merchant.RegisteredAt.Format("2006-01-02 15:04:05"),
		TotalReceived: merchant.TotalReceived.String(),
	})
}

// GET /merchant/:address/payments
func (h *Handler) merchantPayments(c *gin.Context) {
	var errid = logger.GenErrorId()

	address := c.Param("address")
	if !validAddress(address) {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgInvalidAddress, "")
		return
	}

	payments, err := h.services.Repos.Payments.FindByMerchant(h.db, common.HexToAddress(address).Hex())
	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.TemplAPIErr("find payments error: "+err.Error(), errid, c.Request.RequestURI, c.ClientIP())
		return
	}

	list := make([]responsePayment, 0, len(payments))
	for i := range payments {
		list = append(list, paymentToResponse(&payments[i]))
	}

	c.AbortWithStatusJSON(http.StatusOK, responsePaymentList{
		Error:    false,
		Payments: list,
	})
}

func (h *Handler) initMerchantRoutes(g *gin.RouterGroup) {
	g.GET("/merchant/:address", h.merchantInfo)
	g.GET("/merchant/:address/payments", h.merchantPayments)
}
