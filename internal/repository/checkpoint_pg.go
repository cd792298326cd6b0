package repository

import (
	"time"

	"paywatch/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckpointsRepo struct {
}

func InitCheckpointsRepo() *CheckpointsRepo {
	return &CheckpointsRepo{}
}

func (r *CheckpointsRepo) Get(tx *gorm.DB) (*domain.Checkpoints, error) {
	var checkpoint domain.Checkpoints
	return &checkpoint, tx.First(&checkpoint, domain.CHECKPOINT_ID).Error
}

// Set upserts the singleton cursor row.
func (r *CheckpointsRepo) Set(tx *gorm.DB, blockNumber uint64) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_processed_block", "updated_at"}),
	}).Create(&domain.Checkpoints{
		ID:                 domain.CHECKPOINT_ID,
		LastProcessedBlock: blockNumber,
		UpdatedAt:          time.Now(),
	}).Error
}
