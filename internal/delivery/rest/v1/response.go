package v1

import (
	"github.com/gin-gonic/gin"
)

type responseError struct {
	Error   bool   `json:"error"`
	ErrorID string `json:"error_id"`
	Msg     string `json:"msg"`
}

type responseMerchant struct {
	Error         bool   `json:"error"`
	Address       string `json:"address"`
	BusinessName  string `json:"business_name"`
	IsActive      bool   `json:"is_active"`
	RegisteredAt  string `json:"registered_at"`
	TotalReceived string `json:"total_received"`
}

type responsePayment struct {
	PaymentID       string `json:"payment_id"`
	MerchantAddress string `json:"merchant_address"`
	TokenAddress    string `json:"token_address"`
	Amount          string `json:"amount"`
	Status          string `json:"status"`
	Payer           string `json:"payer,omitempty"`
	PaidAt          string `json:"paid_at,omitempty"`
	PlatformFee     string `json:"platform_fee,omitempty"`
	ExpiryTimestamp int64  `json:"expiry_timestamp"`
	BlockNumber     uint64 `json:"block_number"`
	TxHash          string `json:"tx_hash"`
}

type responsePaymentInfo struct {
	Error   bool            `json:"error"`
	Payment responsePayment `json:"payment"`
}

type responsePaymentList struct {
	Error    bool              `json:"error"`
	Payments []responsePayment `json:"payments"`
}

type responsePaymentQr struct {
	Error  bool   `json:"error"`
	QrCode string `json:"qr_code"` // base64 png
}

type responseDelivery struct {
	ID          uint   `json:"id"`
	EventType   string `json:"event_type"`
	Status      string `json:"status"`
	Attempts    int    `json:"attempts"`
	LastAttempt string `json:"last_attempt_at,omitempty"`
	NextRetry   string `json:"next_retry_at,omitempty"`
}

type responseDeliveryList struct {
	Error      bool               `json:"error"`
	Deliveries []responseDelivery `json:"deliveries"`
}

type responseSubscriptionCreated struct {
	Error          bool   `json:"error"`
	SubscriptionID string `json:"subscription_id"`
	Secret         string `json:"secret"` // shown once, never returned again
}

type responseSubscriptionDeactivated struct {
	Error bool `json:"error"`
}

type responseStatus struct {
	Error              bool   `json:"error"`
	LastProcessedBlock uint64 `json:"last_processed_block"`
	ChainHeight        uint64 `json:"chain_height"`
	Lag                uint64 `json:"lag"`
}

func responseErr(c *gin.Context, statusCode int, msg, errorID string) {
	c.AbortWithStatusJSON(statusCode, responseError{true, errorID, msg})
}
