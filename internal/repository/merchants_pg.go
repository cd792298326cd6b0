package repository

import (
	"paywatch/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MerchantsRepo struct {
}

func InitMerchantsRepo() *MerchantsRepo {
	return &MerchantsRepo{}
}

func (r *MerchantsRepo) FindByAddress(tx *gorm.DB, address string) (*domain.Merchants, error) {
	var merchant domain.Merchants
	return &merchant, tx.Where(&domain.Merchants{Address: address}).First(&merchant).Error
}

func (r *MerchantsRepo) Create(tx *gorm.DB, merchant *domain.Merchants) error {
	return tx.Create(merchant).Error
}

func (r *MerchantsRepo) SetActive(tx *gorm.DB, address string, active bool) error {
	return tx.Model(&domain.Merchants{}).
		Where("address = ?", address).
		Update("is_active", active).Error
}

// AddReceived bumps the running total inside the caller's transaction.
// Read-modify-write keeps the numeric column portable across drivers.
func (r *MerchantsRepo) AddReceived(tx *gorm.DB, address string, amount decimal.Decimal) error {
	merchant, err := r.FindByAddress(tx, address)
	if err != nil {
		return err
	}

	merchant.TotalReceived = merchant.TotalReceived.Add(amount)
	return tx.Model(&domain.Merchants{}).
		Where("address = ?", address).
		Update("total_received", merchant.TotalReceived).Error
}
