package repository

import (
	"testing"
	"time"

	"paywatch/internal/domain"
	"paywatch/internal/infra/postgres"

	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/gorm"
)

func enqueueOne(t *testing.T, r *WebhooksRepo, db *gorm.DB) *domain.WebhookDeliveries {
	t.Helper()

	delivery := &domain.WebhookDeliveries{
		SubscriptionID: gofakeit.UUID(),
		PaymentID:      "0x" + gofakeit.HexUint(256)[2:],
		EventType:      "payment.created",
		Payload:        `{"payment_id":"0x01"}`,
	}
	if err := r.Enqueue(db, delivery); err != nil {
		t.Fatal(err)
	}
	return delivery
}

func TestDueSelection(t *testing.T) {
	r := InitWebhooksRepo()
	db := postgres.InitTest()
	now := time.Now()

	fresh := enqueueOne(t, r, db) // next_retry_at null, due immediately

	future := enqueueOne(t, r, db)
	later := now.Add(time.Hour)
	db.Model(future).Update("next_retry_at", later)

	done := enqueueOne(t, r, db)
	if err := r.MarkSuccess(db, done.ID, now); err != nil {
		t.Fatal(err)
	}

	exhausted := enqueueOne(t, r, db)
	db.Model(exhausted).Updates(map[string]any{"attempts": domain.WEBHOOK_MAX_ATTEMPTS, "status": domain.DELIVERY_FAILED})

	due, err := r.Due(db, now, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].ID != fresh.ID {
		t.Fatalf("expected only the fresh delivery, got %+v", due)
	}

	// the future one becomes due once its time passes
	due, err = r.Due(db, later.Add(time.Second), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due deliveries, got %d", len(due))
	}
}

func TestMarkFailureSchedulesBackoff(t *testing.T) {
	r := InitWebhooksRepo()
	db := postgres.InitTest()
	now := time.Now().Truncate(time.Second)

	delivery := enqueueOne(t, r, db)

	if err := r.MarkFailure(db, delivery.ID, now); err != nil {
		t.Fatal(err)
	}

	var got domain.WebhookDeliveries
	db.First(&got, delivery.ID)

	if got.Attempts != 1 || got.Status != domain.DELIVERY_PENDING {
		t.Fatalf("after first failure: %+v", got)
	}
	if got.NextRetryAt == nil || !got.NextRetryAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("first retry must be +60s, got %v", got.NextRetryAt)
	}
	if got.LastAttemptAt == nil {
		t.Fatal("last_attempt_at must be set")
	}
}

func TestMarkFailureTerminatesAtMaxAttempts(t *testing.T) {
	r := InitWebhooksRepo()
	db := postgres.InitTest()
	now := time.Now()

	delivery := enqueueOne(t, r, db)

	for i := 0; i < domain.WEBHOOK_MAX_ATTEMPTS; i++ {
		if err := r.MarkFailure(db, delivery.ID, now); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}

	var got domain.WebhookDeliveries
	db.First(&got, delivery.ID)

	if got.Status != domain.DELIVERY_FAILED {
		t.Fatalf("expected failed, got %s", got.Status)
	}
	if got.Attempts != domain.WEBHOOK_MAX_ATTEMPTS {
		t.Fatalf("attempts: got %d", got.Attempts)
	}
	if got.NextRetryAt != nil {
		t.Fatal("failed delivery must not be rescheduled")
	}

	// terminal: a further failure mark must not touch the row
	if err := r.MarkFailure(db, delivery.ID, now); !postgres.IsNotFound(err) {
		t.Fatalf("expected not found for terminal delivery, got %v", err)
	}

	due, _ := r.Due(db, now.Add(100*time.Hour), 10)
	if len(due) != 0 {
		t.Fatal("failed delivery must never be selected again")
	}
}

func TestMarkSuccessIsTerminal(t *testing.T) {
	r := InitWebhooksRepo()
	db := postgres.InitTest()
	now := time.Now()

	delivery := enqueueOne(t, r, db)

	if err := r.MarkSuccess(db, delivery.ID, now); err != nil {
		t.Fatal(err)
	}

	var got domain.WebhookDeliveries
	db.First(&got, delivery.ID)
	if got.Status != domain.DELIVERY_SUCCESS || got.Attempts != 1 {
		t.Fatalf("after success: %+v", got)
	}

	// status guard: terminal rows are immutable
	if err := r.MarkFailure(db, delivery.ID, now); !postgres.IsNotFound(err) {
		t.Fatalf("expected not found for terminal delivery, got %v", err)
	}
	db.First(&got, delivery.ID)
	if got.Status != domain.DELIVERY_SUCCESS {
		t.Fatal("terminal status must not change")
	}
}

func TestActiveSubscriptions(t *testing.T) {
	r := InitWebhooksRepo()
	db := postgres.InitTest()

	merchant := "0x1111111111111111111111111111111111111111"

	active := &domain.WebhookSubscriptions{ID: gofakeit.UUID(), MerchantAddress: merchant, Url: "https://a.example/hook", Secret: "s1", IsActive: true}
	inactive := &domain.WebhookSubscriptions{ID: gofakeit.UUID(), MerchantAddress: merchant, Url: "https://b.example/hook", Secret: "s2", IsActive: true}
	other := &domain.WebhookSubscriptions{ID: gofakeit.UUID(), MerchantAddress: "0x2222222222222222222222222222222222222222", Url: "https://c.example/hook", Secret: "s3", IsActive: true}

	for _, s := range []*domain.WebhookSubscriptions{active, inactive, other} {
		if err := r.CreateSubscription(db, s); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.DeactivateSubscription(db, inactive.ID); err != nil {
		t.Fatal(err)
	}

	subs, err := r.ActiveSubscriptions(db, merchant)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].ID != active.ID {
		t.Fatalf("expected only the active subscription of the merchant, got %+v", subs)
	}
}
