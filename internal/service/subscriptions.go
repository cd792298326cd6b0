package service

import (
	"fmt"
	"strings"

	"paywatch/internal/domain"
	"paywatch/internal/infra/postgres"
	"paywatch/internal/logger"
	"paywatch/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionsService struct {
	webhooks  repository.Webhooks
	merchants repository.Merchants

	db *gorm.DB
	l  logger.Logger
}

func NewSubscriptionsService(webhooks repository.Webhooks, merchants repository.Merchants, db *gorm.DB, l logger.Logger) *SubscriptionsService {
	return &SubscriptionsService{webhooks: webhooks, merchants: merchants, db: db, l: l}
}

var ErrUnknownMerchant = fmt.Errorf("unknown merchant")
var ErrInvalidWebhookUrl = fmt.Errorf("invalid webhook url")

// Create registers a webhook endpoint for a merchant. The returned
// subscription carries the secret. It is never exposed again.
func (s *SubscriptionsService) Create(merchantAddress, url string) (*domain.WebhookSubscriptions, error) {
	if err := validateWebhookUrl(url); err != nil {
		return nil, err
	}

	_, err := s.merchants.FindByAddress(s.db, merchantAddress)
	if postgres.IsNotFound(err) {
		return nil, ErrUnknownMerchant
	}
	if err != nil {
		return nil, err
	}

	secret, err := NewSecret()
	if err != nil {
		return nil, err
	}

	sub := &domain.WebhookSubscriptions{
		ID:              uuid.NewString(),
		MerchantAddress: merchantAddress,
		Url:             url,
		Secret:          secret,
		IsActive:        true,
	}

	if err := s.webhooks.CreateSubscription(s.db, sub); err != nil {
		return nil, err
	}

	s.l.Info("webhook subscription created", "merchant", merchantAddress, "id", sub.ID)

	return sub, nil
}

func (s *SubscriptionsService) Deactivate(id string) error {
	if _, err := s.webhooks.FindSubscription(s.db, id); err != nil {
		return err
	}
	return s.webhooks.DeactivateSubscription(s.db, id)
}

func validateWebhookUrl(url string) error {
	v := validator.New()

	if err := v.Var(url, "required,url,max=2048"); err != nil {
		return ErrInvalidWebhookUrl
	}
	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
		return ErrInvalidWebhookUrl
	}

	return nil
}
