package service

import (
	"errors"
	"testing"
	"time"

	"paywatch/internal/config"
	"paywatch/internal/domain"
	"paywatch/internal/infra/postgres"
	"paywatch/internal/logger"
	"paywatch/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newSubscriptionsEnv(t *testing.T) (*SubscriptionsService, *repository.Repositories, *gorm.DB) {
	t.Helper()

	db := postgres.InitTest()
	repos := repository.New()
	l := logger.Init(&config.Config{Prod_env: true})

	return NewSubscriptionsService(repos.Webhooks, repos.Merchants, db, l), repos, db
}

func registerMerchant(t *testing.T, repos *repository.Repositories, db *gorm.DB) {
	t.Helper()

	err := repos.Merchants.Create(db, &domain.Merchants{
		Address:       testMerchant,
		BusinessName:  "Coffee Corner",
		IsActive:      true,
		RegisteredAt:  time.Now(),
		TotalReceived: decimal.Zero,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCreateSubscription(t *testing.T) {
	s, repos, db := newSubscriptionsEnv(t)
	registerMerchant(t, repos, db)

	sub, err := s.Create(testMerchant, "https://shop.example.com/hooks")
	if err != nil {
		t.Fatal(err)
	}

	if sub.ID == "" || !sub.IsActive {
		t.Fatalf("bad subscription: %+v", sub)
	}
	if len(sub.Secret) != 64 {
		t.Fatalf("secret must be 256 bits hex, got %d chars", len(sub.Secret))
	}

	stored, err := repos.Webhooks.FindSubscription(db, sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Secret != sub.Secret || stored.Url != sub.Url {
		t.Fatal("stored subscription differs from the returned one")
	}
}

func TestCreateSubscriptionUnknownMerchant(t *testing.T) {
	s, _, _ := newSubscriptionsEnv(t)

	if _, err := s.Create(testMerchant, "https://shop.example.com/hooks"); !errors.Is(err, ErrUnknownMerchant) {
		t.Fatalf("err: %v", err)
	}
}

func TestCreateSubscriptionRejectsBadUrls(t *testing.T) {
	s, repos, db := newSubscriptionsEnv(t)
	registerMerchant(t, repos, db)

	for _, bad := range []string{"", "not a url", "ftp://shop.example.com/hooks", "shop.example.com/hooks"} {
		if _, err := s.Create(testMerchant, bad); !errors.Is(err, ErrInvalidWebhookUrl) {
			t.Fatalf("url %q: err %v", bad, err)
		}
	}
}

func TestDeactivateSubscription(t *testing.T) {
	s, repos, db := newSubscriptionsEnv(t)
	registerMerchant(t, repos, db)

	sub, err := s.Create(testMerchant, "https://shop.example.com/hooks")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Deactivate(sub.ID); err != nil {
		t.Fatal(err)
	}

	active, err := repos.Webhooks.ActiveSubscriptions(db, testMerchant)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("deactivated subscription still active: %d", len(active))
	}

	if err := s.Deactivate("no-such-id"); !postgres.IsNotFound(err) {
		t.Fatalf("err: %v", err)
	}
}
