package repository

import (
	"paywatch/internal/domain"

	"gorm.io/gorm"
)

type PaymentsRepo struct {
}

func InitPaymentsRepo() *PaymentsRepo {
	return &PaymentsRepo{}
}

func (r *PaymentsRepo) FindByPaymentID(tx *gorm.DB, paymentId string) (*domain.PaymentIntents, error) {
	var payment domain.PaymentIntents
	return &payment, tx.Where(&domain.PaymentIntents{PaymentID: paymentId}).First(&payment).Error
}

func (r *PaymentsRepo) FindByMerchant(tx *gorm.DB, merchantAddress string) ([]domain.PaymentIntents, error) {
	var payments []domain.PaymentIntents
	err := tx.Where(&domain.PaymentIntents{MerchantAddress: merchantAddress}).
		Order("block_number desc").
		Find(&payments).Error
	return payments, err
}

func (r *PaymentsRepo) Create(tx *gorm.DB, payment *domain.PaymentIntents) error {
	return tx.Create(payment).Error
}

func (r *PaymentsRepo) Update(tx *gorm.DB, payment *domain.PaymentIntents) error {
	return tx.Save(payment).Error
}
