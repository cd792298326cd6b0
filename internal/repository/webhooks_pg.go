package repository

import (
	"time"

	"paywatch/internal/domain"

	"gorm.io/gorm"
)

type WebhooksRepo struct {
}

func InitWebhooksRepo() *WebhooksRepo {
	return &WebhooksRepo{}
}

func (r *WebhooksRepo) CreateSubscription(tx *gorm.DB, sub *domain.WebhookSubscriptions) error {
	return tx.Create(sub).Error
}

func (r *WebhooksRepo) FindSubscription(tx *gorm.DB, id string) (*domain.WebhookSubscriptions, error) {
	var sub domain.WebhookSubscriptions
	return &sub, tx.Where(&domain.WebhookSubscriptions{ID: id}).First(&sub).Error
}

func (r *WebhooksRepo) ActiveSubscriptions(tx *gorm.DB, merchantAddress string) ([]domain.WebhookSubscriptions, error) {
	var subs []domain.WebhookSubscriptions
	err := tx.Where("merchant_address = ? AND is_active = ?", merchantAddress, true).
		Find(&subs).Error
	return subs, err
}

func (r *WebhooksRepo) DeactivateSubscription(tx *gorm.DB, id string) error {
	return tx.Model(&domain.WebhookSubscriptions{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *WebhooksRepo) Enqueue(tx *gorm.DB, delivery *domain.WebhookDeliveries) error {
	delivery.Status = domain.DELIVERY_PENDING
	return tx.Create(delivery).Error
}

// Due selects pending deliveries whose retry time has come.
// next_retry_at = NULL means due immediately.
func (r *WebhooksRepo) Due(tx *gorm.DB, now time.Time, limit int) ([]domain.WebhookDeliveries, error) {
	var deliveries []domain.WebhookDeliveries
	err := tx.Where("status = ? AND attempts < ? AND (next_retry_at IS NULL OR next_retry_at <= ?)",
		domain.DELIVERY_PENDING, domain.WEBHOOK_MAX_ATTEMPTS, now).
		Order("id").
		Limit(limit).
		Find(&deliveries).Error
	return deliveries, err
}

// MarkSuccess finalizes a delivery. The status guard keeps terminal
// rows immutable even if a second worker raced the send.
func (r *WebhooksRepo) MarkSuccess(tx *gorm.DB, id uint, now time.Time) error {
	return tx.Model(&domain.WebhookDeliveries{}).
		Where("id = ? AND status = ?", id, domain.DELIVERY_PENDING).
		Updates(map[string]any{
			"status":          domain.DELIVERY_SUCCESS,
			"attempts":        gorm.Expr("attempts + 1"),
			"last_attempt_at": now,
			"next_retry_at":   nil,
		}).Error
}

// MarkFailure charges one attempt and either schedules the next retry
// or finalizes the row as failed once attempts run out.
func (r *WebhooksRepo) MarkFailure(tx *gorm.DB, id uint, now time.Time) error {
	var delivery domain.WebhookDeliveries
	if err := tx.Where("id = ? AND status = ?", id, domain.DELIVERY_PENDING).
		First(&delivery).Error; err != nil {
		return err
	}

	delivery.Attempts++

	updates := map[string]any{
		"attempts":        delivery.Attempts,
		"last_attempt_at": now,
	}

	if delivery.Attempts >= domain.WEBHOOK_MAX_ATTEMPTS {
		updates["status"] = domain.DELIVERY_FAILED
		updates["next_retry_at"] = nil
	} else {
		updates["next_retry_at"] = now.Add(domain.BackoffFor(delivery.Attempts))
	}

	return tx.Model(&domain.WebhookDeliveries{}).
		Where("id = ? AND status = ?", id, domain.DELIVERY_PENDING).
		Updates(updates).Error
}

func (r *WebhooksRepo) FindDeliveriesByPayment(tx *gorm.DB, paymentId string) ([]domain.WebhookDeliveries, error) {
	var deliveries []domain.WebhookDeliveries
	err := tx.Where(&domain.WebhookDeliveries{PaymentID: paymentId}).
		Order("id").
		Find(&deliveries).Error
	return deliveries, err
}
