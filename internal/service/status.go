package service

import (
	"context"
	"time"

	"paywatch/internal/chain"
	"paywatch/internal/infra/cache"
	"paywatch/internal/infra/postgres"
	"paywatch/internal/repository"

	"gorm.io/gorm"
)

type SyncStatus struct {
	LastProcessedBlock uint64 `json:"last_processed_block"`
	ChainHeight        uint64 `json:"chain_height"`
	Lag                uint64 `json:"lag"`
}

type StatusService struct {
	ledger      chain.Ledger
	checkpoints repository.Checkpoints
	cache       *cache.Cache
	db          *gorm.DB
}

func NewStatusService(ledger chain.Ledger, checkpoints repository.Checkpoints, db *gorm.DB) *StatusService {
	return &StatusService{ledger: ledger, checkpoints: checkpoints, cache: cache.InitStorage(), db: db}
}

const heightCacheKey = "chain_height"

func (s *StatusService) Get(ctx context.Context) (*SyncStatus, error) {
	var status SyncStatus

	checkpoint, err := s.checkpoints.Get(s.db)
	if err != nil && !postgres.IsNotFound(err) {
		return nil, err
	}
	if err == nil {
		status.LastProcessedBlock = checkpoint.LastProcessedBlock
	}

	height, err := s.chainHeight(ctx)
	if err != nil {
		return nil, err
	}
	status.ChainHeight = height

	if height > status.LastProcessedBlock {
		status.Lag = height - status.LastProcessedBlock
	}

	return &status, nil
}

// the node is not asked for its height more than once per few seconds
func (s *StatusService) chainHeight(ctx context.Context) (uint64, error) {
	if cached := s.cache.Load(heightCacheKey); cached != nil {
		return cached.(uint64), nil
	}

	height, err := s.ledger.CurrentHeight(ctx)
	if err != nil {
		return 0, err
	}

	s.cache.Set(heightCacheKey, height, 5*time.Second)
	return height, nil
}
