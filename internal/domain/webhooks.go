package domain

import (
	"encoding/json"
	"time"
)

type WebhookSubscriptions struct {
	ID              string `gorm:"primaryKey;size:36"`
	MerchantAddress string `gorm:"index;size:42;not null"`
	Url             string `gorm:"size:2048;not null"`
	// generated once at creation, never re-exposed by any read path
	Secret    string `gorm:"size:64;not null" json:"-"`
	IsActive  bool
	CreatedAt time.Time
}

// delivery status
const (
	DELIVERY_PENDING = "pending"
	DELIVERY_SUCCESS = "success"
	DELIVERY_FAILED  = "failed"
)

const WEBHOOK_MAX_ATTEMPTS = 5

// retry delays indexed by failed-attempt count, clamped to the last entry
var WebhookBackoff = [...]time.Duration{
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	time.Hour,
	2 * time.Hour,
}

// BackoffFor returns the delay after the given attempt number (1-based).
func BackoffFor(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	if attempts > len(WebhookBackoff) {
		attempts = len(WebhookBackoff)
	}
	return WebhookBackoff[attempts-1]
}

// WebhookDeliveries is one outbox row per (event, active subscription).
// success and failed are terminal.
type WebhookDeliveries struct {
	ID             uint   `gorm:"primaryKey"`
	SubscriptionID string `gorm:"index;size:36;not null"`
	PaymentID      string `gorm:"index;size:66;not null"`
	EventType      string `gorm:"size:64;not null"`
	Payload        string `gorm:"type:text"`
	Status         string `gorm:"size:16;index;default:pending"`
	Attempts       int
	LastAttemptAt  *time.Time
	NextRetryAt    *time.Time `gorm:"index"`
	CreatedAt      time.Time
}

// WebhookBody is the wire payload. Field order is fixed: the HMAC
// signature is computed over exactly these marshaled bytes.
type WebhookBody struct {
	ID        uint            `json:"id"`
	Event     string          `json:"event"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// PaymentEventData is the delivery payload stored in the outbox row.
type PaymentEventData struct {
	PaymentID       string `json:"payment_id"`
	MerchantAddress string `json:"merchant_address"`
	TokenAddress    string `json:"token_address"`
	Amount          string `json:"amount"`
	Status          string `json:"status"`
	Payer           string `json:"payer,omitempty"`
	PlatformFee     string `json:"platform_fee,omitempty"`
	BlockNumber     uint64 `json:"block_number"`
	TxHash          string `json:"tx_hash"`
}
