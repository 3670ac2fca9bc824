package stripe

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

const testSecret = "whsec_test_secret"

func signedHeader(t *testing.T, payload []byte, secret string, at time.Time) string {
	t.Helper()

	signature := webhook.ComputeSignature(at, payload, secret)

	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(signature))
}

func TestVerifyWebhook(t *testing.T) {
	gateway := &Gateway{webhookSecret: testSecret}
	// ConstructEvent rejects events whose api_version does not match the
	// one the SDK is pinned to.
	payload := []byte(fmt.Sprintf(
		`{"id": "evt_1", "api_version": %q, "type": "payment_intent.succeeded"}`,
		stripe.APIVersion,
	))

	t.Run("accepts a correctly signed payload", func(t *testing.T) {
		header := signedHeader(t, payload, testSecret, time.Now())

		event, err := gateway.VerifyWebhook(payload, header)
		if err != nil {
			t.Fatalf("VerifyWebhook() error = %v", err)
		}
		if event.Type != stripe.EventType("payment_intent.succeeded") {
			t.Errorf("event type = %q", event.Type)
		}
	})

	t.Run("rejects a payload signed with the wrong secret", func(t *testing.T) {
		header := signedHeader(t, payload, "whsec_other", time.Now())

		if _, err := gateway.VerifyWebhook(payload, header); err == nil {
			t.Error("VerifyWebhook() = nil, want signature error")
		}
	})

	t.Run("rejects a tampered payload", func(t *testing.T) {
		header := signedHeader(t, payload, testSecret, time.Now())
		tampered := []byte(`{"id": "evt_1", "type": "payment_intent.payment_failed"}`)

		if _, err := gateway.VerifyWebhook(tampered, header); err == nil {
			t.Error("VerifyWebhook() = nil, want signature error")
		}
	})

	t.Run("rejects a stale timestamp", func(t *testing.T) {
		header := signedHeader(t, payload, testSecret, time.Now().Add(-time.Hour))

		if _, err := gateway.VerifyWebhook(payload, header); err == nil {
			t.Error("VerifyWebhook() = nil, want tolerance error")
		}
	})

	t.Run("rejects a mismatched api_version", func(t *testing.T) {
		stale := []byte(`{"id": "evt_1", "api_version": "2020-08-27", "type": "payment_intent.succeeded"}`)
		header := signedHeader(t, stale, testSecret, time.Now())

		if _, err := gateway.VerifyWebhook(stale, header); err == nil {
			t.Error("VerifyWebhook() = nil, want api version error")
		}
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		if _, err := gateway.VerifyWebhook(payload, ""); err == nil {
			t.Error("VerifyWebhook() = nil, want signature error")
		}
	})
}
