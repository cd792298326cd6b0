package nats

import (
	"context"
	"strings"
	"time"

	"paywatch/internal/config"
	"paywatch/internal/logger"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "PAYWATCH_EVENTS"
	subjectPrefix = "paywatch.events."
)

// Broadcaster publishes committed payment events on JetStream.
// Best-effort only: delivery guarantees stay with the webhook outbox.
// A nil Broadcaster is valid and publishes nothing.
type Broadcaster struct {
	nc *nats.Conn
	js jetstream.JetStream
	l  logger.Logger
}

func Init(config *config.Config, log logger.Logger) *Broadcaster {
	if len(config.Nats.Servers) == 0 {
		log.Debug("nats: no servers configured, broadcast disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	nc, err := nats.Connect(strings.Join(config.Nats.Servers, ","),
		nats.MaxReconnects(100),
		nats.ReconnectWait(3*time.Second),
		nats.DisconnectHandler(func(nc *nats.Conn) {
			log.Info("nats: disconnected", "url", nc.ConnectedUrl())
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats: reconnected", "url", nc.ConnectedUrl())
		}))
	if err != nil {
		panic("NATS: connect failed: " + err.Error())
	}

	js, err := jetstream.New(nc)
	if err != nil {
		panic(err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{subjectPrefix + ">"},
	})
	if err != nil {
		panic("NATS: stream init failed: " + err.Error())
	}

	log.Info("nats: connected", "addr", nc.ConnectedAddr())

	return &Broadcaster{nc: nc, js: js, l: log}
}

// PublishEvent sends the payload on paywatch.events.<event>.
func (b *Broadcaster) PublishEvent(event string, payload []byte) {
	if b == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := b.js.Publish(ctx, subjectPrefix+event, payload); err != nil {
		b.l.Debug("nats: publish failed", "event", event, "error", err.Error())
	}
}

func (b *Broadcaster) Close() {
	if b == nil {
		return
	}
	b.nc.Drain()
}
