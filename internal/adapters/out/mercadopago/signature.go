package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrSignatureMissing  = errors.New("webhook signature missing")
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
	ErrSignatureExpired  = errors.New("webhook signature expired")
)

// Notification is the body Mercado Pago posts to the notification URL.
type Notification struct {
	ID     any    `json:"id"`
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// IsPayment reports whether the notification concerns a payment resource.
func (n Notification) IsPayment() bool {
	return n.Type == "payment" || strings.HasPrefix(n.Action, "payment.")
}

// SignatureVerifier checks the x-signature header. The signed manifest is
// "id:<data.id>;request-id:<x-request-id>;ts:<ts>;" under HMAC-SHA256.
type SignatureVerifier struct {
	secret    []byte
	tolerance time.Duration
}

// NewSignatureVerifier returns a verifier; a zero tolerance disables the timestamp check.
func NewSignatureVerifier(secret string, tolerance time.Duration) *SignatureVerifier {
	return &SignatureVerifier{secret: []byte(secret), tolerance: tolerance}
}

func (v *SignatureVerifier) Verify(header, requestID, dataID string, now time.Time) error {
	ts, v1 := parseSignatureHeader(header)
	if ts == "" || v1 == "" {
		return ErrSignatureMissing
	}

	expected := v.Sign(dataID, requestID, ts)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		return ErrSignatureMismatch
	}

	if v.tolerance > 0 {
		sent, err := parseTimestamp(ts)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSignatureMismatch, err)
		}
		if d := now.Sub(sent); d > v.tolerance || d < -v.tolerance {
			return ErrSignatureExpired
		}
	}
	return nil
}

// Sign computes the hex v1 value for a manifest. Exposed for tests and local tooling.
func (v *SignatureVerifier) Sign(dataID, requestID, ts string) string {
	var manifest strings.Builder
	if dataID != "" {
		manifest.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	if requestID != "" {
		manifest.WriteString("request-id:" + requestID + ";")
	}
	manifest.WriteString("ts:" + ts + ";")

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(manifest.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignatureHeader(header string) (ts, v1 string) {
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			v1 = strings.TrimSpace(value)
		}
	}
	return ts, v1
}

// ts is sent in seconds by the API and in milliseconds by some dashboards.
func parseTimestamp(ts string) (time.Time, error) {
	n, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	if n > 1e12 {
		return time.UnixMilli(n), nil
	}
	return time.Unix(n, 0), nil
}
