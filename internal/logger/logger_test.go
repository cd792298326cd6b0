package logger

import (
	"testing"

	"paywatch/internal/config"
)

func TestLogger(t *testing.T) {
	l := Init(&config.Config{Prod_env: false})

	l.Debug("debug message", "key", "value")
	l.Info("info message", "block", 100)
	l.Error("error message", "error", "boom")

	l.TemplChainErr("filter logs failed", 100, 1099, errTest)
	l.TemplAnomaly("transition rejected", "PaymentExpired", "0xabc", 105)
	l.TemplWebhookErr("send failed", "https://example.com/hook", 1, 2, []byte(`{}`))
}

func TestGenErrorId(t *testing.T) {
	id := GenErrorId()
	if id == "" || id == NA {
		t.Fatalf("expected uuid, got %q", id)
	}
	if id == GenErrorId() {
		t.Fatal("error ids must be unique")
	}
}

var errTest = errBoom{}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
