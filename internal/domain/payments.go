package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentIntents struct {
	ID              uint   `gorm:"primaryKey"`
	PaymentID       string `gorm:"uniqueIndex;size:66;not null"` // bytes32 hex
	MerchantAddress string `gorm:"index;size:42;not null"`
	TokenAddress    string `gorm:"size:42"`
	Amount          decimal.Decimal `gorm:"type:numeric"`
	ExpiryTimestamp int64
	Status          PaymentStatus `gorm:"type:int8"`

	// set exactly once, on the pending->completed transition
	Payer       string          `gorm:"size:42"`
	PaidAt      *time.Time      ``
	PlatformFee decimal.Decimal `gorm:"type:numeric"`

	BlockNumber uint64
	TxHash      string `gorm:"size:66"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PaymentStatus uint8

const (
	STATUS_PENDING PaymentStatus = iota
	STATUS_COMPLETED
	STATUS_EXPIRED
	STATUS_REFUNDED
	STATUS_CANCELLED
)

var PaymentStatuses = [...]string{"pending", "completed", "expired", "refunded", "cancelled"}

func (s PaymentStatus) ToString() string {
	return PaymentStatuses[s]
}

func StrToPaymentStatus(str string) PaymentStatus {
	for i, statusName := range PaymentStatuses {
		if str == statusName {
			return PaymentStatus(i)
		}
	}
	return STATUS_PENDING
}

// expired, refunded and cancelled accept no further transitions
func (s PaymentStatus) IsTerminal() bool {
	return s == STATUS_EXPIRED || s == STATUS_REFUNDED || s == STATUS_CANCELLED
}

// CanTransition reports whether the status graph allows s -> to.
// Pending -> completed/expired/cancelled, completed -> refunded.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	switch s {
	case STATUS_PENDING:
		return to == STATUS_COMPLETED || to == STATUS_EXPIRED || to == STATUS_CANCELLED
	case STATUS_COMPLETED:
		return to == STATUS_REFUNDED
	}
	return false
}
