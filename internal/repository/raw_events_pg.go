package repository

import (
	"paywatch/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RawEventsRepo struct {
}

func InitRawEventsRepo() *RawEventsRepo {
	return &RawEventsRepo{}
}

// Insert appends the event unless its dedup key already exists.
// Replays after a crash land here and report false.
func (r *RawEventsRepo) Insert(tx *gorm.DB, event *domain.RawEvents) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *RawEventsRepo) CountByRange(tx *gorm.DB, fromBlock, toBlock uint64) (int64, error) {
	var count int64
	err := tx.Model(&domain.RawEvents{}).
		Where("block_number >= ? AND block_number <= ?", fromBlock, toBlock).
		Count(&count).Error
	return count, err
}
