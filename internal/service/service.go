package service

import (
	"context"

	"paywatch/internal/chain"
	"paywatch/internal/config"
	"paywatch/internal/domain"
	"paywatch/internal/logger"
	"paywatch/internal/repository"

	"github.com/ethereum/go-ethereum/core/types"
	"gorm.io/gorm"
)

// LogDecoder turns one raw log into a typed event, or reports that the
// log is not part of the vocabulary.
type LogDecoder interface {
	Decode(lg types.Log) (domain.ChainEvent, bool)
}

type Projector interface {
	Apply(tx *gorm.DB, ev domain.DecodedEvent) (*Applied, error)
}

// Broadcaster is the optional post-commit fanout (NATS).
type Broadcaster interface {
	PublishEvent(event string, payload []byte)
}

type ChainPoller interface {
	Start(ctx context.Context)
	Poll(ctx context.Context) error
}

type WebhookDispatcher interface {
	Start(ctx context.Context)
	Tick(ctx context.Context)
	UpdateProxyList(proxies []string)
	ProxyCount() int
}

type Subscriptions interface {
	Create(merchantAddress, url string) (*domain.WebhookSubscriptions, error)
	Deactivate(id string) error
}

type QrCodes interface {
	New(content string) (string, error)
	FindOrNew(content string) (string, error)
}

type Status interface {
	Get(ctx context.Context) (*SyncStatus, error)
}

type Services struct {
	Poller        ChainPoller
	Dispatcher    WebhookDispatcher
	Subscriptions Subscriptions
	QrCodes       QrCodes
	Status        Status

	Repos *repository.Repositories
}

func NewServices(ledger chain.Ledger, broadcast Broadcaster, db *gorm.DB, l logger.Logger, config *config.Config) *Services {
	repos := repository.New()

	projector := NewProjectorService(repos, l)
	decoder := chain.NewDecoder(l)

	return &Services{
		Poller:        NewChainPollerService(ledger, decoder, projector, repos.Checkpoints, broadcast, db, l, config),
		Dispatcher:    NewWebhookDispatcherService(repos.Webhooks, db, l, config),
		Subscriptions: NewSubscriptionsService(repos.Webhooks, repos.Merchants, db, l),
		QrCodes:       NewQrCodesService(),
		Status:        NewStatusService(ledger, repos.Checkpoints, db),
		Repos:         repos,
	}
}
