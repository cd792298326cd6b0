package service

import (
	"fmt"
	"time"

	"paywatch/internal/domain"
	"paywatch/internal/infra/postgres"
	"paywatch/internal/logger"
	"paywatch/internal/repository"
	"paywatch/pkg/utils"

	"gorm.io/gorm"
)

type ProjectorService struct {
	rawEvents repository.RawEvents
	merchants repository.Merchants
	payments  repository.Payments
	webhooks  repository.Webhooks

	l logger.Logger
}

func NewProjectorService(repos *repository.Repositories, l logger.Logger) *ProjectorService {
	return &ProjectorService{
		rawEvents: repos.RawEvents,
		merchants: repos.Merchants,
		payments:  repos.Payments,
		webhooks:  repos.Webhooks,
		l:         l,
	}
}

// Applied describes a trigger-worthy event that changed projection state.
type Applied struct {
	WebhookEvent string
	PaymentID    string
	Payload      []byte
}

// Apply runs the atomic unit for one decoded event inside the caller's
// transaction: (1) idempotent raw insert, (2) projection, (3) outbox
// enqueue for trigger-worthy transitions. A dedup hit skips 2 and 3,
// which is what makes replaying a block range harmless.
func (s *ProjectorService) Apply(tx *gorm.DB, ev domain.DecodedEvent) (*Applied, error) {
	inserted, err := s.rawEvents.Insert(tx, ev.ToRaw())
	if err != nil {
		return nil, fmt.Errorf("insert raw event: %w", err)
	}
	if !inserted {
		s.l.Debug("replayed event skipped", "event", ev.Event.EventName(), "block", ev.BlockNumber, "tx", ev.TxHash)
		return nil, nil
	}

	switch e := ev.Event.(type) {
	case domain.MerchantRegistered:
		return nil, s.applyMerchantRegistered(tx, e)
	case domain.MerchantDeactivated:
		return nil, s.applyMerchantActive(tx, e.Merchant, false, ev)
	case domain.MerchantReactivated:
		return nil, s.applyMerchantActive(tx, e.Merchant, true, ev)
	case domain.PaymentIntentCreated:
		return s.applyPaymentCreated(tx, e, ev)
	case domain.PaymentCompleted:
		return s.applyPaymentCompleted(tx, e, ev)
	case domain.PaymentRefunded:
		return s.applyTransition(tx, e.PaymentID, domain.STATUS_REFUNDED, ev)
	case domain.PaymentExpired:
		return s.applyTransition(tx, e.PaymentID, domain.STATUS_EXPIRED, ev)
	case domain.PaymentCancelled:
		return s.applyTransition(tx, e.PaymentID, domain.STATUS_CANCELLED, ev)
	}

	return nil, fmt.Errorf("unhandled event variant: %s", ev.Event.EventName())
}

func (s *ProjectorService) applyMerchantRegistered(tx *gorm.DB, e domain.MerchantRegistered) error {
	_, err := s.merchants.FindByAddress(tx, e.Merchant)
	if err == nil {
		// duplicate registration for the same address is ignored
		s.l.Debug("merchant already registered", "address", e.Merchant)
		return nil
	}
	if !postgres.IsNotFound(err) {
		return err
	}

	return s.merchants.Create(tx, &domain.Merchants{
		Address:      e.Merchant,
		BusinessName: e.BusinessName,
		IsActive:     true,
		RegisteredAt: time.Unix(e.Timestamp, 0),
	})
}

func (s *ProjectorService) applyMerchantActive(tx *gorm.DB, address string, active bool, ev domain.DecodedEvent) error {
	_, err := s.merchants.FindByAddress(tx, address)
	if postgres.IsNotFound(err) {
		s.l.TemplAnomaly("merchant event for unknown address", ev.Event.EventName(), address, ev.BlockNumber)
		return nil
	}
	if err != nil {
		return err
	}

	return s.merchants.SetActive(tx, address, active)
}

func (s *ProjectorService) applyPaymentCreated(tx *gorm.DB, e domain.PaymentIntentCreated, ev domain.DecodedEvent) (*Applied, error) {
	_, err := s.payments.FindByPaymentID(tx, e.PaymentID)
	if err == nil {
		s.l.TemplAnomaly("payment id already exists", ev.Event.EventName(), e.PaymentID, ev.BlockNumber)
		return nil, nil
	}
	if !postgres.IsNotFound(err) {
		return nil, err
	}

	payment := &domain.PaymentIntents{
		PaymentID:       e.PaymentID,
		MerchantAddress: e.Merchant,
		TokenAddress:    e.Token,
		Amount:          e.Amount,
		ExpiryTimestamp: e.Expiry,
		Status:          domain.STATUS_PENDING,
		BlockNumber:     ev.BlockNumber,
		TxHash:          ev.TxHash,
		CreatedAt:       time.Unix(ev.BlockTimestamp, 0),
	}
	if err := s.payments.Create(tx, payment); err != nil {
		return nil, err
	}

	return s.enqueue(tx, payment, domain.WebhookEvents[ev.Event.EventName()])
}

func (s *ProjectorService) applyPaymentCompleted(tx *gorm.DB, e domain.PaymentCompleted, ev domain.DecodedEvent) (*Applied, error) {
	payment, err := s.payments.FindByPaymentID(tx, e.PaymentID)
	if postgres.IsNotFound(err) {
		s.l.TemplAnomaly("completion for unknown payment", ev.Event.EventName(), e.PaymentID, ev.BlockNumber)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !payment.Status.CanTransition(domain.STATUS_COMPLETED) {
		s.l.TemplAnomaly("transition rejected", ev.Event.EventName(), e.PaymentID, ev.BlockNumber)
		return nil, nil
	}

	paidAt := time.Unix(ev.BlockTimestamp, 0)
	payment.Status = domain.STATUS_COMPLETED
	payment.Payer = e.Payer
	payment.PaidAt = &paidAt
	payment.PlatformFee = e.PlatformFee

	if err := s.payments.Update(tx, payment); err != nil {
		return nil, err
	}

	if err := s.merchants.AddReceived(tx, payment.MerchantAddress, e.Amount); err != nil {
		return nil, fmt.Errorf("add received: %w", err)
	}

	return s.enqueue(tx, payment, domain.WebhookEvents[ev.Event.EventName()])
}

func (s *ProjectorService) applyTransition(tx *gorm.DB, paymentId string, to domain.PaymentStatus, ev domain.DecodedEvent) (*Applied, error) {
	payment, err := s.payments.FindByPaymentID(tx, paymentId)
	if postgres.IsNotFound(err) {
		s.l.TemplAnomaly("transition for unknown payment", ev.Event.EventName(), paymentId, ev.BlockNumber)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !payment.Status.CanTransition(to) {
		s.l.TemplAnomaly("transition rejected", ev.Event.EventName(), paymentId, ev.BlockNumber)
		return nil, nil
	}

	payment.Status = to
	if err := s.payments.Update(tx, payment); err != nil {
		return nil, err
	}

	return s.enqueue(tx, payment, domain.WebhookEvents[ev.Event.EventName()])
}

// enqueue writes one pending delivery per active subscription of the
// payment's merchant, in the same transaction as the projection.
func (s *ProjectorService) enqueue(tx *gorm.DB, payment *domain.PaymentIntents, webhookEvent string) (*Applied, error) {
	data := domain.PaymentEventData{
		PaymentID:       payment.PaymentID,
		MerchantAddress: payment.MerchantAddress,
		TokenAddress:    payment.TokenAddress,
		Amount:          payment.Amount.String(),
		Status:          payment.Status.ToString(),
		Payer:           payment.Payer,
		BlockNumber:     payment.BlockNumber,
		TxHash:          payment.TxHash,
	}
	if payment.PaidAt != nil {
		data.PlatformFee = payment.PlatformFee.String()
	}
	payload := utils.MustMarshal(data)

	subs, err := s.webhooks.ActiveSubscriptions(tx, payment.MerchantAddress)
	if err != nil {
		return nil, err
	}

	for _, sub := range subs {
		err := s.webhooks.Enqueue(tx, &domain.WebhookDeliveries{
			SubscriptionID: sub.ID,
			PaymentID:      payment.PaymentID,
			EventType:      webhookEvent,
			Payload:        string(payload),
		})
		if err != nil {
			return nil, err
		}
	}

	return &Applied{WebhookEvent: webhookEvent, PaymentID: payment.PaymentID, Payload: payload}, nil
}
