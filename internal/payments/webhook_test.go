package payments

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var webhookSecret = []byte("whsec_test")

func TestVerifySignature(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	t.Run("valid signature passes", func(t *testing.T) {
		header := SignPayload(webhookSecret, payload, now)
		err := VerifySignature(webhookSecret, payload, header, DefaultTolerance, now)
		assert.NoError(t, err)
	})

	t.Run("tampered body fails", func(t *testing.T) {
		header := SignPayload(webhookSecret, payload, now)
		tampered := []byte(`{"id":"evt_1","type":"checkout.session.completed","extra":1}`)
		err := VerifySignature(webhookSecret, tampered, header, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		header := SignPayload([]byte("other"), payload, now)
		err := VerifySignature(webhookSecret, payload, header, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("missing header fails", func(t *testing.T) {
		err := VerifySignature(webhookSecret, payload, "", DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("malformed header fails", func(t *testing.T) {
		for _, header := range []string{
			"garbage",
			"t=,v1=",
			"t=abc,v1=deadbeef",
			"v1=deadbeef",
			fmt.Sprintf("t=%d", now.Unix()),
		} {
			err := VerifySignature(webhookSecret, payload, header, DefaultTolerance, now)
			assert.ErrorIs(t, err, ErrInvalidSignature, "header %q", header)
		}
	})

	t.Run("stale timestamp fails", func(t *testing.T) {
		header := SignPayload(webhookSecret, payload, now.Add(-10*time.Minute))
		err := VerifySignature(webhookSecret, payload, header, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("future timestamp beyond tolerance fails", func(t *testing.T) {
		header := SignPayload(webhookSecret, payload, now.Add(10*time.Minute))
		err := VerifySignature(webhookSecret, payload, header, DefaultTolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("any matching v1 entry passes", func(t *testing.T) {
		header := SignPayload(webhookSecret, payload, now) + ",v1=deadbeef"
		err := VerifySignature(webhookSecret, payload, header, DefaultTolerance, now)
		assert.NoError(t, err)
	})
}
