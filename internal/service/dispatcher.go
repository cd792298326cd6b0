package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"paywatch/internal/config"
	"paywatch/internal/domain"
	"paywatch/internal/logger"
	"paywatch/internal/repository"
	"paywatch/pkg/rr"
	"paywatch/pkg/utils"

	"golang.org/x/net/proxy"
	"gorm.io/gorm"
)

// WebhookDispatcherService claims due outbox rows and attempts them.
// It runs on its own interval, independent of the chain poller; a slow
// endpoint can only delay this loop, never the sync.
type WebhookDispatcherService struct {
	webhooks repository.Webhooks

	rr   rr.RoundRobin
	list *atomic.Pointer[[]string]

	db *gorm.DB
	l  logger.Logger

	interval  time.Duration
	timeout   time.Duration
	batchSize int
}

func NewWebhookDispatcherService(webhooks repository.Webhooks, db *gorm.DB, l logger.Logger, config *config.Config) *WebhookDispatcherService {
	var list atomic.Pointer[[]string]
	proxies := config.Webhook.ProxyList
	list.Store(&proxies)

	return &WebhookDispatcherService{
		webhooks:  webhooks,
		rr:        rr.New(&list),
		list:      &list,
		db:        db,
		l:         l,
		interval:  config.Webhook.Interval,
		timeout:   config.Webhook.Timeout,
		batchSize: config.Webhook.BatchSize,
	}
}

func (s *WebhookDispatcherService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
}

// Tick attempts every due delivery once. Delivery state is only
// mutated after the send outcome is known; a crash mid-send leaves the
// row pending for a future tick.
func (s *WebhookDispatcherService) Tick(ctx context.Context) {
	deliveries, err := s.webhooks.Due(s.db, time.Now(), s.batchSize)
	if err != nil {
		s.l.Debug("select due deliveries: " + err.Error())
		return
	}

	for i := range deliveries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.Attempt(ctx, &deliveries[i])
	}
}

func (s *WebhookDispatcherService) Attempt(ctx context.Context, delivery *domain.WebhookDeliveries) {
	sub, err := s.webhooks.FindSubscription(s.db, delivery.SubscriptionID)
	if err != nil {
		s.l.TemplWebhookErr("subscription lookup failed: "+err.Error(), logger.NA, delivery.ID, delivery.Attempts+1, []byte(delivery.Payload))
		if err := s.webhooks.MarkFailure(s.db, delivery.ID, time.Now()); err != nil {
			s.l.Debug("mark failure: " + err.Error())
		}
		return
	}

	body := domain.WebhookBody{
		ID:        delivery.ID,
		Event:     delivery.EventType,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(delivery.Payload),
	}
	payload := utils.MustMarshal(body)

	sendErr := s.send(ctx, sub.Url, payload, Sign(payload, sub.Secret), body.Timestamp, delivery.EventType)

	now := time.Now()
	if sendErr != nil {
		s.l.TemplWebhookErr("send error: "+sendErr.Error(), sub.Url, delivery.ID, delivery.Attempts+1, payload)
		if err := s.webhooks.MarkFailure(s.db, delivery.ID, now); err != nil {
			s.l.Debug("mark failure: " + err.Error())
		}
		return
	}

	s.l.TemplWebhookInfo("delivered", sub.Url, delivery.ID, delivery.Attempts+1)
	if err := s.webhooks.MarkSuccess(s.db, delivery.ID, now); err != nil {
		s.l.Debug("mark success: " + err.Error())
	}
}

func (s *WebhookDispatcherService) send(ctx context.Context, url string, payload []byte, signature string, timestamp int64, event string) error {
	client, err := s.httpClient()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "paywatch-webhook")
	req.Header.Set("X-Webhook-Signature", signature)
	req.Header.Set("X-Webhook-Timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("X-Webhook-Event", event)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("invalid status code: %d", resp.StatusCode)
	}

	return nil
}

// httpClient returns a direct client, or one dialing through the next
// SOCKS5 proxy when an egress list is configured.
func (s *WebhookDispatcherService) httpClient() (*http.Client, error) {
	stringProxy, ok := s.rr.Next()
	if !ok {
		return &http.Client{Timeout: s.timeout}, nil
	}

	socks, err := parseProxy(stringProxy)
	if err != nil {
		return nil, fmt.Errorf("can't parse proxy: %w", err)
	}

	auth := proxy.Auth{
		User:     socks.user,
		Password: socks.pass,
	}

	dialer, err := proxy.SOCKS5("tcp", socks.ip+":"+socks.port, &auth, proxy.Direct)
	if err != nil {
		return nil, err
	}

	dialContext := func(ctx context.Context, network, address string) (net.Conn, error) {
		return dialer.Dial(network, address)
	}

	transport := &http.Transport{
		DialContext:       dialContext,
		DisableKeepAlives: true,
	}

	return &http.Client{Transport: transport, Timeout: s.timeout}, nil
}

type parsedProxy struct {
	user string
	pass string
	ip   string
	port string
}

// login:password@ip:port
func parseProxy(str string) (parsedProxy, error) {
	splitA := strings.Split(str, ":") // to [user pass@ip port]
	if len(splitA) != 3 {
		return parsedProxy{}, fmt.Errorf("invalid proxy format: given: %s", str)
	}

	splitB := strings.Split(splitA[1], "@") // to [pass ip]
	if len(splitB) != 2 {
		return parsedProxy{}, fmt.Errorf("invalid proxy format: given: %s", str)
	}

	pp := parsedProxy{
		user: splitA[0],
		pass: splitB[0],
		ip:   splitB[1],
		port: splitA[2],
	}

	if pp.user == "" || pp.pass == "" || pp.ip == "" || pp.port == "" {
		return parsedProxy{}, fmt.Errorf("invalid proxy format: given: %s", str)
	}

	return pp, nil
}

func (s *WebhookDispatcherService) ProxyCount() int {
	return s.rr.Count()
}

func (s *WebhookDispatcherService) UpdateProxyList(proxies []string) {
	var validProxies []string

	for _, p := range proxies {
		if _, err := parseProxy(p); err != nil {
			s.l.Debug("invalid proxy: " + p)
			continue
		}
		validProxies = append(validProxies, p)
	}

	s.list.Store(&validProxies)
}
