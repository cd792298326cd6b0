package service

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	for range 20 {
		payload := []byte(gofakeit.Sentence(10))
		secret, err := NewSecret()
		if err != nil {
			t.Fatal(err)
		}

		sig := Sign(payload, secret)
		if len(sig) != 64 {
			t.Fatalf("expected hex sha256 mac, got %d chars", len(sig))
		}

		if !Verify(payload, sig, secret) {
			t.Fatal("valid signature must verify")
		}
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	payload := []byte(`{"id":1,"event":"payment.completed","timestamp":1700000000,"data":{}}`)
	secret, _ := NewSecret()
	sig := Sign(payload, secret)

	if Verify([]byte(`{"id":2}`), sig, secret) {
		t.Fatal("altered payload must not verify")
	}

	otherSecret, _ := NewSecret()
	if Verify(payload, sig, otherSecret) {
		t.Fatal("wrong secret must not verify")
	}

	if Verify(payload, "zz-not-hex", secret) {
		t.Fatal("malformed signature must not verify")
	}
}

func TestNewSecret(t *testing.T) {
	a, err := NewSecret()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewSecret()

	if len(a) != 64 {
		t.Fatalf("expected 256 bits hex, got %d chars", len(a))
	}
	if a == b {
		t.Fatal("secrets must be unique")
	}
}
