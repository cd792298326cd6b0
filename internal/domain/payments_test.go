package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{STATUS_PENDING, STATUS_COMPLETED, true},
		{STATUS_PENDING, STATUS_EXPIRED, true},
		{STATUS_PENDING, STATUS_CANCELLED, true},
		{STATUS_PENDING, STATUS_REFUNDED, false},
		{STATUS_COMPLETED, STATUS_REFUNDED, true},
		{STATUS_COMPLETED, STATUS_COMPLETED, false},
		{STATUS_COMPLETED, STATUS_EXPIRED, false},
		{STATUS_EXPIRED, STATUS_COMPLETED, false},
		{STATUS_REFUNDED, STATUS_PENDING, false},
		{STATUS_CANCELLED, STATUS_COMPLETED, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.allowed {
			t.Fatalf("%s -> %s: got %v, want %v", c.from.ToString(), c.to.ToString(), got, c.allowed)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []PaymentStatus{STATUS_EXPIRED, STATUS_REFUNDED, STATUS_CANCELLED} {
		if !s.IsTerminal() {
			t.Fatalf("%s must be terminal", s.ToString())
		}
		for to := STATUS_PENDING; to <= STATUS_CANCELLED; to++ {
			if s.CanTransition(to) {
				t.Fatalf("terminal %s must not transition to %s", s.ToString(), to.ToString())
			}
		}
	}

	if STATUS_PENDING.IsTerminal() || STATUS_COMPLETED.IsTerminal() {
		t.Fatal("pending and completed are not terminal")
	}
}

func TestBackoffFor(t *testing.T) {
	want := []string{"1m0s", "5m0s", "15m0s", "1h0m0s", "2h0m0s"}
	for i := 1; i <= 5; i++ {
		if got := BackoffFor(i).String(); got != want[i-1] {
			t.Fatalf("attempt %d: got %s, want %s", i, got, want[i-1])
		}
	}

	// clamped past the table end
	if BackoffFor(6) != WebhookBackoff[len(WebhookBackoff)-1] {
		t.Fatal("backoff past table length must clamp to last entry")
	}
}

func TestEventFingerprint(t *testing.T) {
	a := DecodedEvent{Event: PaymentExpired{PaymentID: "0x01"}, BlockNumber: 5, TxHash: "0xaa"}
	b := DecodedEvent{Event: PaymentExpired{PaymentID: "0x01"}, BlockNumber: 5, TxHash: "0xaa"}
	c := DecodedEvent{Event: PaymentExpired{PaymentID: "0x02"}, BlockNumber: 5, TxHash: "0xaa"}

	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("identical events must share a fingerprint")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatal("different args must produce different fingerprints")
	}
	if len(a.Fingerprint()) != 64 {
		t.Fatalf("expected sha256 hex, got %d chars", len(a.Fingerprint()))
	}
}
