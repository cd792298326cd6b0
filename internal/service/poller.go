package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"paywatch/internal/chain"
	"paywatch/internal/config"
	"paywatch/internal/domain"
	"paywatch/internal/infra/postgres"
	"paywatch/internal/logger"
	"paywatch/internal/repository"

	"gorm.io/gorm"
)

type ChainPollerService struct {
	ledger    chain.Ledger
	decoder   LogDecoder
	projector Projector

	checkpoints repository.Checkpoints
	broadcast   Broadcaster

	db *gorm.DB
	l  logger.Logger

	startBlock    uint64
	lookback      uint64
	batchSize     uint64
	confirmations uint64
	interval      time.Duration

	// single-flight guard: a tick while a pass runs is a no-op
	running atomic.Bool
}

func NewChainPollerService(ledger chain.Ledger, decoder LogDecoder, projector Projector, checkpoints repository.Checkpoints, broadcast Broadcaster, db *gorm.DB, l logger.Logger, config *config.Config) *ChainPollerService {
	return &ChainPollerService{
		ledger:        ledger,
		decoder:       decoder,
		projector:     projector,
		checkpoints:   checkpoints,
		broadcast:     broadcast,
		db:            db,
		l:             l,
		startBlock:    config.Chain.StartBlock,
		lookback:      config.Chain.LookbackWindow,
		batchSize:     config.Chain.BatchSize,
		confirmations: config.Chain.Confirmations,
		interval:      config.Chain.PollInterval,
	}
}

// Start runs the poll loop until the context is cancelled.
func (s *ChainPollerService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			if err := s.Poll(ctx); err != nil {
				s.l.Debug("poll pass aborted: " + err.Error())
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Poll runs one sync pass. The checkpoint advances only after every
// batch in the pass commits; a failed batch aborts the pass and the
// next tick retries from the same start, which is safe because raw
// event inserts are idempotent.
func (s *ChainPollerService) Poll(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	defer s.running.Store(false)

	head, err := s.ledger.CurrentHeight(ctx)
	if err != nil {
		return fmt.Errorf("current height: %w", err)
	}

	// finality assumed after `confirmations` blocks
	trail := s.confirmations
	if trail == 0 {
		trail = 1
	}
	if head < trail-1 {
		return nil
	}
	target := head - (trail - 1)

	start, err := s.scanStart(target)
	if err != nil {
		return err
	}
	if start > target {
		return nil
	}

	tsCache := map[uint64]int64{}

	for from := start; from <= target; from += s.batchSize {
		to := from + s.batchSize - 1
		if to > target {
			to = target
		}

		if err := s.processRange(ctx, from, to, tsCache); err != nil {
			s.l.TemplChainErr("batch failed, pass aborted", from, to, err)
			return err
		}
	}

	if err := s.checkpoints.Set(s.db, target); err != nil {
		return fmt.Errorf("set checkpoint: %w", err)
	}

	s.l.Debug("chain synced", "from", start, "to", target)

	return nil
}

func (s *ChainPollerService) scanStart(target uint64) (uint64, error) {
	checkpoint, err := s.checkpoints.Get(s.db)
	if err == nil {
		return checkpoint.LastProcessedBlock + 1, nil
	}
	if !postgres.IsNotFound(err) {
		return 0, fmt.Errorf("get checkpoint: %w", err)
	}

	// first ever pass
	if s.startBlock > 0 {
		return s.startBlock, nil
	}
	if target > s.lookback {
		return target - s.lookback, nil
	}
	return 0, nil
}

// processRange decodes and projects one bounded batch in a single
// transaction. A decode failure on one log is isolated; a storage
// failure aborts the whole batch.
func (s *ChainPollerService) processRange(ctx context.Context, fromBlock, toBlock uint64, tsCache map[uint64]int64) error {
	logs, err := s.ledger.Logs(ctx, fromBlock, toBlock)
	if err != nil {
		return fmt.Errorf("fetch logs: %w", err)
	}

	var events []domain.DecodedEvent
	for _, lg := range logs {
		event, ok := s.decoder.Decode(lg)
		if !ok {
			continue
		}

		ts, err := s.blockTime(ctx, lg.BlockNumber, tsCache)
		if err != nil {
			return err
		}

		events = append(events, domain.DecodedEvent{
			Event:          event,
			BlockNumber:    lg.BlockNumber,
			TxHash:         lg.TxHash.Hex(),
			BlockTimestamp: ts,
		})
	}

	if len(events) == 0 {
		return nil
	}

	var applied []*Applied

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, event := range events {
			a, err := s.projector.Apply(tx, event)
			if err != nil {
				return err
			}
			if a != nil {
				applied = append(applied, a)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// best-effort fanout, after the batch committed
	if s.broadcast != nil {
		for _, a := range applied {
			s.broadcast.PublishEvent(a.WebhookEvent, a.Payload)
		}
	}

	return nil
}

func (s *ChainPollerService) blockTime(ctx context.Context, blockNumber uint64, tsCache map[uint64]int64) (int64, error) {
	if ts, ok := tsCache[blockNumber]; ok {
		return ts, nil
	}

	ts, err := s.ledger.BlockTimestamp(ctx, blockNumber)
	if err != nil {
		return 0, fmt.Errorf("block timestamp %d: %w", blockNumber, err)
	}

	tsCache[blockNumber] = ts
	return ts, nil
}
