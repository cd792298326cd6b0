package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Merchants struct {
	ID           uint   `gorm:"primaryKey"`
	Address      string `gorm:"uniqueIndex;size:42;not null"`
	BusinessName string `gorm:"size:128"`
	IsActive     bool
	RegisteredAt time.Time
	// only ever increases, by completed-payment amounts
	TotalReceived decimal.Decimal `gorm:"type:numeric"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
