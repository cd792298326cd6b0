package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"

	"paywatch/pkg/utils"
)

// contract event names
const (
	EV_MERCHANT_REGISTERED    = "MerchantRegistered"
	EV_MERCHANT_DEACTIVATED   = "MerchantDeactivated"
	EV_MERCHANT_REACTIVATED   = "MerchantReactivated"
	EV_PAYMENT_INTENT_CREATED = "PaymentIntentCreated"
	EV_PAYMENT_COMPLETED      = "PaymentCompleted"
	EV_PAYMENT_REFUNDED       = "PaymentRefunded"
	EV_PAYMENT_EXPIRED        = "PaymentExpired"
	EV_PAYMENT_CANCELLED      = "PaymentCancelled"
)

// webhook event names for trigger-worthy contract events
var WebhookEvents = map[string]string{
	EV_PAYMENT_INTENT_CREATED: "payment.created",
	EV_PAYMENT_COMPLETED:      "payment.completed",
	EV_PAYMENT_REFUNDED:       "payment.refunded",
	EV_PAYMENT_EXPIRED:        "payment.expired",
	EV_PAYMENT_CANCELLED:      "payment.cancelled",
}

// RawEvents mirrors the decoded contract log exactly once. The unique
// index is the dedup key that makes re-polling after a crash safe.
type RawEvents struct {
	ID              uint   `gorm:"primaryKey"`
	BlockNumber     uint64 `gorm:"not null;uniqueIndex:uk_raw_event"`
	TxHash          string `gorm:"size:66;not null;uniqueIndex:uk_raw_event"`
	EventName       string `gorm:"size:64;not null;uniqueIndex:uk_raw_event"`
	ArgsFingerprint string `gorm:"size:64;not null;uniqueIndex:uk_raw_event"`
	Args            string `gorm:"type:text"`
	BlockTimestamp  int64
	CreatedAt       time.Time
}

// ChainEvent is the closed set of decoded contract events.
type ChainEvent interface {
	EventName() string
}

type MerchantRegistered struct {
	Merchant     string `json:"merchant"`
	BusinessName string `json:"business_name"`
	Timestamp    int64  `json:"timestamp"`
}

type MerchantDeactivated struct {
	Merchant string `json:"merchant"`
}

type MerchantReactivated struct {
	Merchant string `json:"merchant"`
}

type PaymentIntentCreated struct {
	PaymentID string          `json:"payment_id"`
	Merchant  string          `json:"merchant"`
	Token     string          `json:"token"`
	Amount    decimal.Decimal `json:"amount"`
	Expiry    int64           `json:"expiry"`
}

type PaymentCompleted struct {
	PaymentID   string          `json:"payment_id"`
	Payer       string          `json:"payer"`
	Amount      decimal.Decimal `json:"amount"`
	PlatformFee decimal.Decimal `json:"platform_fee"`
}

type PaymentRefunded struct {
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
}

type PaymentExpired struct {
	PaymentID string `json:"payment_id"`
}

type PaymentCancelled struct {
	PaymentID string `json:"payment_id"`
}

func (MerchantRegistered) EventName() string   { return EV_MERCHANT_REGISTERED }
func (MerchantDeactivated) EventName() string  { return EV_MERCHANT_DEACTIVATED }
func (MerchantReactivated) EventName() string  { return EV_MERCHANT_REACTIVATED }
func (PaymentIntentCreated) EventName() string { return EV_PAYMENT_INTENT_CREATED }
func (PaymentCompleted) EventName() string     { return EV_PAYMENT_COMPLETED }
func (PaymentRefunded) EventName() string      { return EV_PAYMENT_REFUNDED }
func (PaymentExpired) EventName() string       { return EV_PAYMENT_EXPIRED }
func (PaymentCancelled) EventName() string     { return EV_PAYMENT_CANCELLED }

// DecodedEvent is a typed contract event with its chain position.
type DecodedEvent struct {
	Event          ChainEvent
	BlockNumber    uint64
	TxHash         string
	BlockTimestamp int64
}

// Fingerprint hashes the typed args; struct field order makes the
// JSON form stable for identical events.
func (d DecodedEvent) Fingerprint() string {
	sum := sha256.Sum256(utils.MustMarshal(d.Event))
	return hex.EncodeToString(sum[:])
}

func (d DecodedEvent) ToRaw() *RawEvents {
	return &RawEvents{
		BlockNumber:     d.BlockNumber,
		TxHash:          d.TxHash,
		EventName:       d.Event.EventName(),
		ArgsFingerprint: d.Fingerprint(),
		Args:            string(utils.MustMarshal(d.Event)),
		BlockTimestamp:  d.BlockTimestamp,
	}
}
