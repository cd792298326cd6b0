package domain

// API error messages
const (
	ErrMsgInternalServerError = "internal server error"
	ErrMsgBadRequest          = "bad request"

	ErrMsgMerchantNotFound     = "merchant not found"
	ErrMsgPaymentNotFound      = "payment not found"
	ErrMsgSubscriptionNotFound = "subscription not found"

	ErrMsgInvalidAddress    = "invalid merchant address"
	ErrMsgInvalidPaymentId  = "invalid payment id"
	ErrMsgInvalidWebhookUrl = "invalid webhook url"
)
