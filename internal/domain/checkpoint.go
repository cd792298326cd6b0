package domain

import "time"

// Checkpoints holds the single sync cursor row (ID is always 1).
// It only moves forward, and only after a full poll pass commits.
type Checkpoints struct {
	ID                 uint   `gorm:"primaryKey"`
	LastProcessedBlock uint64 `gorm:"not null"`
	UpdatedAt          time.Time
}

const CHECKPOINT_ID uint = 1
