package v1

import (
	"net/http"

	"paywatch/internal/domain"
	"paywatch/internal/infra/postgres"
	"paywatch/internal/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

func paymentToResponse(p *domain.PaymentIntents) responsePayment {
	resp := responsePayment{
		PaymentID:       p.PaymentID,
		MerchantAddress: p.MerchantAddress,
		TokenAddress:    p.TokenAddress,
		Amount:          p.Amount.String(),
		Status:          p.Status.ToString(),
		Payer:           p.Payer,
		ExpiryTimestamp: p.ExpiryTimestamp,
		BlockNumber:     p.BlockNumber,
		TxHash:          p.TxHash,
	}

	if p.PaidAt != nil {
		resp.PaidAt = p.PaidAt.Format("2006-01-02 15:04:05")
		resp.PlatformFee = p.PlatformFee.String()
	}

	return resp
}

// GET /payment/:id
func (h *Handler) paymentInfo(c *gin.Context) {
	var errid = logger.GenErrorId()

	payment, ok := h.findPayment(c, errid)
	if !ok {
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responsePaymentInfo{
		Error:   false,
		Payment: paymentToResponse(payment),
	})
}

// GET /payment/:id/qr
//
// encodes the payment id so a wallet can pick it up by scan
func (h *Handler) paymentQr(c *gin.Context) {
	var errid = logger.GenErrorId()

	payment, ok := h.findPayment(c, errid)
	if !ok {
		return
	}

	qr, err := h.services.QrCodes.FindOrNew(payment.PaymentID)
	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.TemplAPIErr("qr code error: "+err.Error(), errid, c.Request.RequestURI, c.ClientIP())
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responsePaymentQr{
		Error:  false,
		QrCode: qr,
	})
}

// GET /payment/:id/deliveries
func (h *Handler) paymentDeliveries(c *gin.Context) {
	var errid = logger.GenErrorId()

	payment, ok := h.findPayment(c, errid)
	if !ok {
		return
	}

	deliveries, err := h.services.Repos.Webhooks.FindDeliveriesByPayment(h.db, payment.PaymentID)
	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.TemplAPIErr("find deliveries error: "+err.Error(), errid, c.Request.RequestURI, c.ClientIP())
		return
	}

	list := make([]responseDelivery, 0, len(deliveries))
	for i := range deliveries {
		d := &deliveries[i]

		item := responseDelivery{
			ID:        d.ID,
			EventType: d.EventType,
			Status:    d.Status,
			Attempts:  d.Attempts,
		}
		if d.LastAttemptAt != nil {
			item.LastAttempt = d.LastAttemptAt.Format("2006-01-02 15:04:05")
		}
		if d.NextRetryAt != nil {
			item.NextRetry = d.NextRetryAt.Format("2006-01-02 15:04:05")
		}

		list = append(list, item)
	}

	c.AbortWithStatusJSON(http.StatusOK, responseDeliveryList{
		Error:      false,
		Deliveries: list,
	})
}

func (h *Handler) findPayment(c *gin.Context, errid string) (*domain.PaymentIntents, bool) {
	id := c.Param("id")
	if !validPaymentId(id) {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgInvalidPaymentId, "")
		return nil, false
	}

	// stored ids are the decoder's lowercase hex form
	id = common.HexToHash(id).Hex()

	payment, err := h.services.Repos.Payments.FindByPaymentID(h.db, id)
	if err != nil {
		if postgres.IsNotFound(err) {
			responseErr(c, http.StatusNotFound, domain.ErrMsgPaymentNotFound, "")
		} else {
			responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
			h.log.TemplAPIErr("find payment error: "+err.Error(), errid, c.Request.RequestURI, c.ClientIP())
		}
		return nil, false
	}

	return payment, true
}

func (h *Handler) initPaymentRoutes(g *gin.RouterGroup) {
	g.GET("/payment/:id", h.paymentInfo)
	g.GET("/payment/:id/qr", h.paymentQr)
	g.GET("/payment/:id/deliveries", h.paymentDeliveries)
}
