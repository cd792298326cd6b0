package repository

import (
	"time"

	"paywatch/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Checkpoints interface {
	Get(tx *gorm.DB) (*domain.Checkpoints, error)
	Set(tx *gorm.DB, blockNumber uint64) error
}

type RawEvents interface {
	// Insert reports false when the dedup key already exists.
	Insert(tx *gorm.DB, event *domain.RawEvents) (bool, error)
	CountByRange(tx *gorm.DB, fromBlock, toBlock uint64) (int64, error)
}

type Merchants interface {
	FindByAddress(tx *gorm.DB, address string) (*domain.Merchants, error)
	Create(tx *gorm.DB, merchant *domain.Merchants) error
	SetActive(tx *gorm.DB, address string, active bool) error
	AddReceived(tx *gorm.DB, address string, amount decimal.Decimal) error
}

type Payments interface {
	FindByPaymentID(tx *gorm.DB, paymentId string) (*domain.PaymentIntents, error)
	FindByMerchant(tx *gorm.DB, merchantAddress string) ([]domain.PaymentIntents, error)
	Create(tx *gorm.DB, payment *domain.PaymentIntents) error
	Update(tx *gorm.DB, payment *domain.PaymentIntents) error
}

type Webhooks interface {
	CreateSubscription(tx *gorm.DB, sub *domain.WebhookSubscriptions) error
	FindSubscription(tx *gorm.DB, id string) (*domain.WebhookSubscriptions, error)
	ActiveSubscriptions(tx *gorm.DB, merchantAddress string) ([]domain.WebhookSubscriptions, error)
	DeactivateSubscription(tx *gorm.DB, id string) error

	Enqueue(tx *gorm.DB, delivery *domain.WebhookDeliveries) error
	Due(tx *gorm.DB, now time.Time, limit int) ([]domain.WebhookDeliveries, error)
	MarkSuccess(tx *gorm.DB, id uint, now time.Time) error
	MarkFailure(tx *gorm.DB, id uint, now time.Time) error
	FindDeliveriesByPayment(tx *gorm.DB, paymentId string) ([]domain.WebhookDeliveries, error)
}

type Repositories struct {
	Checkpoints Checkpoints
	RawEvents   RawEvents
	Merchants   Merchants
	Payments    Payments
	Webhooks    Webhooks
}

func New() *Repositories {
	return &Repositories{
		Checkpoints: InitCheckpointsRepo(),
		RawEvents:   InitRawEventsRepo(),
		Merchants:   InitMerchantsRepo(),
		Payments:    InitPaymentsRepo(),
		Webhooks:    InitWebhooksRepo(),
	}
}
