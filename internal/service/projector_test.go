package service

import (
	"testing"

	"paywatch/internal/config"
	"paywatch/internal/domain"
	"paywatch/internal/infra/postgres"
	"paywatch/internal/logger"
	"paywatch/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	testMerchant = "0x1111111111111111111111111111111111111111"
	testPayer    = "0x2222222222222222222222222222222222222222"
	testToken    = "0x3333333333333333333333333333333333333333"
	testPayment  = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

func newProjectorEnv(t *testing.T) (*ProjectorService, *repository.Repositories, *gorm.DB) {
	t.Helper()

	db := postgres.InitTest()
	repos := repository.New()
	l := logger.Init(&config.Config{Prod_env: true})

	return NewProjectorService(repos, l), repos, db
}

func seedMerchant(t *testing.T, p *ProjectorService, db *gorm.DB, subscriptions int) {
	t.Helper()

	_, err := p.Apply(db, decoded(domain.MerchantRegistered{
		Merchant:     testMerchant,
		BusinessName: "Coffee Corner",
		Timestamp:    1700000000,
	}, 90, "0xreg"))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < subscriptions; i++ {
		err := p.webhooks.CreateSubscription(db, &domain.WebhookSubscriptions{
			ID:              "sub-" + string(rune('a'+i)),
			MerchantAddress: testMerchant,
			Url:             "https://merchant.example/hook",
			Secret:          "secret",
			IsActive:        true,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func decoded(ev domain.ChainEvent, block uint64, txHash string) domain.DecodedEvent {
	return domain.DecodedEvent{
		Event:          ev,
		BlockNumber:    block,
		TxHash:         txHash,
		BlockTimestamp: 1700000000 + int64(block),
	}
}

func createdEvent() domain.DecodedEvent {
	return decoded(domain.PaymentIntentCreated{
		PaymentID: testPayment,
		Merchant:  testMerchant,
		Token:     testToken,
		Amount:    decimal.NewFromInt(100),
		Expiry:    1800000000,
	}, 100, "0xcreate")
}

func completedEvent() domain.DecodedEvent {
	return decoded(domain.PaymentCompleted{
		PaymentID:   testPayment,
		Payer:       testPayer,
		Amount:      decimal.NewFromInt(100),
		PlatformFee: decimal.NewFromInt(1),
	}, 105, "0xcomplete")
}

func TestPaymentCreatedProjection(t *testing.T) {
	p, repos, db := newProjectorEnv(t)
	seedMerchant(t, p, db, 2)

	applied, err := p.Apply(db, createdEvent())
	if err != nil {
		t.Fatal(err)
	}
	if applied == nil || applied.WebhookEvent != "payment.created" {
		t.Fatalf("expected payment.created, got %+v", applied)
	}

	payment, err := repos.Payments.FindByPaymentID(db, testPayment)
	if err != nil {
		t.Fatal(err)
	}
	if payment.Status != domain.STATUS_PENDING {
		t.Fatalf("status: got %s", payment.Status.ToString())
	}
	if payment.Amount.String() != "100" || payment.MerchantAddress != testMerchant {
		t.Fatalf("bad projection: %+v", payment)
	}

	// one delivery per active subscription
	deliveries, err := repos.Webhooks.FindDeliveriesByPayment(db, testPayment)
	if err != nil {
		t.Fatal(err)
	}
	if len(deliveries) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(deliveries))
	}
	for _, d := range deliveries {
		if d.Status != domain.DELIVERY_PENDING || d.EventType != "payment.created" || d.Attempts != 0 || d.NextRetryAt != nil {
			t.Fatalf("bad delivery row: %+v", d)
		}
	}
}

func TestPaymentCompletedProjection(t *testing.T) {
	p, repos, db := newProjectorEnv(t)
	seedMerchant(t, p, db, 1)

	if _, err := p.Apply(db, createdEvent()); err != nil {
		t.Fatal(err)
	}

	applied, err := p.Apply(db, completedEvent())
	if err != nil {
		t.Fatal(err)
	}
	if applied == nil || applied.WebhookEvent != "payment.completed" {
		t.Fatalf("expected payment.completed, got %+v", applied)
	}

	payment, _ := repos.Payments.FindByPaymentID(db, testPayment)
	if payment.Status != domain.STATUS_COMPLETED {
		t.Fatalf("status: got %s", payment.Status.ToString())
	}
	if payment.Payer != testPayer || payment.PaidAt == nil || payment.PlatformFee.String() != "1" {
		t.Fatalf("completion fields not set: %+v", payment)
	}

	merchant, _ := repos.Merchants.FindByAddress(db, testMerchant)
	if merchant.TotalReceived.String() != "100" {
		t.Fatalf("total received: got %s", merchant.TotalReceived.String())
	}
}

func TestReplayIsIdempotent(t *testing.T) {
	p, repos, db := newProjectorEnv(t)
	seedMerchant(t, p, db, 1)

	events := []domain.DecodedEvent{createdEvent(), completedEvent()}

	// run the same range twice, as a restarted poller would
	for pass := 0; pass < 2; pass++ {
		for _, ev := range events {
			if _, err := p.Apply(db, ev); err != nil {
				t.Fatal(err)
			}
		}
	}

	merchant, _ := repos.Merchants.FindByAddress(db, testMerchant)
	if merchant.TotalReceived.String() != "100" {
		t.Fatalf("replay must not double-count: got %s", merchant.TotalReceived.String())
	}

	deliveries, _ := repos.Webhooks.FindDeliveriesByPayment(db, testPayment)
	if len(deliveries) != 2 { // created + completed, once each
		t.Fatalf("replay must not re-enqueue: got %d deliveries", len(deliveries))
	}

	count, _ := repos.RawEvents.CountByRange(db, 0, 1000)
	if count != 3 { // registration + created + completed
		t.Fatalf("expected 3 raw events, got %d", count)
	}
}

func TestLateExpiryIsAnomalyNoop(t *testing.T) {
	p, repos, db := newProjectorEnv(t)
	seedMerchant(t, p, db, 1)

	if _, err := p.Apply(db, createdEvent()); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Apply(db, completedEvent()); err != nil {
		t.Fatal(err)
	}

	before, _ := repos.Webhooks.FindDeliveriesByPayment(db, testPayment)

	applied, err := p.Apply(db, decoded(domain.PaymentExpired{PaymentID: testPayment}, 110, "0xexpire"))
	if err != nil {
		t.Fatal(err)
	}
	if applied != nil {
		t.Fatal("rejected transition must not enqueue a delivery")
	}

	payment, _ := repos.Payments.FindByPaymentID(db, testPayment)
	if payment.Status != domain.STATUS_COMPLETED {
		t.Fatalf("status must stay completed, got %s", payment.Status.ToString())
	}

	after, _ := repos.Webhooks.FindDeliveriesByPayment(db, testPayment)
	if len(after) != len(before) {
		t.Fatal("no payment.expired delivery may be enqueued")
	}
}

func TestRefundRequiresCompleted(t *testing.T) {
	p, repos, db := newProjectorEnv(t)
	seedMerchant(t, p, db, 1)

	if _, err := p.Apply(db, createdEvent()); err != nil {
		t.Fatal(err)
	}

	// pending -> refunded is not in the graph
	applied, err := p.Apply(db, decoded(domain.PaymentRefunded{PaymentID: testPayment, Amount: decimal.NewFromInt(100)}, 106, "0xrefund"))
	if err != nil {
		t.Fatal(err)
	}
	if applied != nil {
		t.Fatal("pending -> refunded must be rejected")
	}

	if _, err := p.Apply(db, completedEvent()); err != nil {
		t.Fatal(err)
	}

	applied, err = p.Apply(db, decoded(domain.PaymentRefunded{PaymentID: testPayment, Amount: decimal.NewFromInt(100)}, 107, "0xrefund2"))
	if err != nil {
		t.Fatal(err)
	}
	if applied == nil || applied.WebhookEvent != "payment.refunded" {
		t.Fatalf("completed -> refunded must apply, got %+v", applied)
	}

	payment, _ := repos.Payments.FindByPaymentID(db, testPayment)
	if payment.Status != domain.STATUS_REFUNDED {
		t.Fatalf("status: got %s", payment.Status.ToString())
	}
}

func TestMerchantLifecycle(t *testing.T) {
	p, repos, db := newProjectorEnv(t)
	seedMerchant(t, p, db, 0)

	// duplicate registration is ignored
	if _, err := p.Apply(db, decoded(domain.MerchantRegistered{Merchant: testMerchant, BusinessName: "Other", Timestamp: 1}, 91, "0xreg2")); err != nil {
		t.Fatal(err)
	}
	merchant, _ := repos.Merchants.FindByAddress(db, testMerchant)
	if merchant.BusinessName != "Coffee Corner" {
		t.Fatal("duplicate registration must not overwrite")
	}

	if _, err := p.Apply(db, decoded(domain.MerchantDeactivated{Merchant: testMerchant}, 92, "0xoff")); err != nil {
		t.Fatal(err)
	}
	merchant, _ = repos.Merchants.FindByAddress(db, testMerchant)
	if merchant.IsActive {
		t.Fatal("merchant must be inactive")
	}

	if _, err := p.Apply(db, decoded(domain.MerchantReactivated{Merchant: testMerchant}, 93, "0xon")); err != nil {
		t.Fatal(err)
	}
	merchant, _ = repos.Merchants.FindByAddress(db, testMerchant)
	if !merchant.IsActive {
		t.Fatal("merchant must be active again")
	}
}
