package mercadopago

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignatureVerifier(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	ts := strconv.FormatInt(now.Unix(), 10)
	v := NewSignatureVerifier("secret", 5*time.Minute)
	valid := "ts=" + ts + ",v1=" + v.Sign("123", "req-1", ts)

	t.Run("accepts a valid signature", func(t *testing.T) {
		assert.NoError(t, v.Verify(valid, "req-1", "123", now))
	})

	t.Run("rejects a tampered data id", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify(valid, "req-1", "124", now), ErrSignatureMismatch)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify("", "req-1", "123", now), ErrSignatureMissing)
	})

	t.Run("rejects a stale timestamp", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify(valid, "req-1", "123", now.Add(time.Hour)), ErrSignatureExpired)
	})

	t.Run("another secret does not verify", func(t *testing.T) {
		other := NewSignatureVerifier("other", 0)
		assert.ErrorIs(t, other.Verify(valid, "req-1", "123", now), ErrSignatureMismatch)
	})
}

func TestNotification_IsPayment(t *testing.T) {
	assert.True(t, Notification{Type: "payment"}.IsPayment())
	assert.True(t, Notification{Action: "payment.updated"}.IsPayment())
	assert.False(t, Notification{Type: "merchant_order"}.IsPayment())
}
