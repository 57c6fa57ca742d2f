// Package payoutclient sends payout transfers to the payout provider's HTTP API.
package payoutclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"booking/internal/core/ports"
	"booking/internal/pkg/errs"

	"go.uber.org/zap"
)

const (
	ProviderName  = "payouts-api"
	transfersPath = "/v1/transfers"
)

var ErrMissingBaseURL = errors.New("missing PAYOUT_API_URL")

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// Mock accepts every transfer locally. Account refs starting with
	// "reject" are refused so failures can be exercised.
	Mock bool
}

type transferRequest struct {
	PayoutID    string `json:"payoutId"`
	ProID       string `json:"proProfileId"`
	AccountRef  string `json:"accountRef"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}

type transferResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger

	mock      bool
	mu        sync.Mutex
	mockSent  map[string]string
	mockCount int
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	logger = logger.With(zap.String("component", "payoutclient"))

	if cfg.Mock {
		logger.Info("payout gateway mock mode enabled")
		return &Client{mock: true, mockSent: make(map[string]string), logger: logger}, nil
	}
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

func (c *Client) Name() string {
	return ProviderName
}

// Send posts one transfer. The idempotency key makes a resend of the same
// payout attempt safe on the provider side.
func (c *Client) Send(ctx context.Context, t ports.PayoutTransfer) (string, error) {
	if c.mock {
		return c.mockSend(t)
	}

	body, err := json.Marshal(transferRequest{
		PayoutID:    t.PayoutID.String(),
		ProID:       t.ProProfileID.String(),
		AccountRef:  t.AccountRef,
		AmountCents: t.Amount.Cents(),
		Currency:    t.Amount.Currency(),
	})
	if err != nil {
		return "", errs.NewPermanentProviderError(ProviderName, "send", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transfersPath, bytes.NewReader(body))
	if err != nil {
		return "", errs.NewPermanentProviderError(ProviderName, "send", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", t.IdempotencyKey)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("transfer request failed", zap.String("payoutId", t.PayoutID.String()), zap.Error(err))
		return "", errs.NewRetryableProviderError(ProviderName, "send", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", errs.NewRetryableProviderError(ProviderName, "send", err)
	}

	var decoded transferResponse
	_ = json.Unmarshal(raw, &decoded)

	switch {
	case res.StatusCode >= 500 || res.StatusCode == http.StatusTooManyRequests:
		return "", errs.NewRetryableProviderError(ProviderName, "send", statusError(res.StatusCode, decoded.Message))
	case res.StatusCode >= 400:
		return "", errs.NewPermanentProviderError(ProviderName, "send", statusError(res.StatusCode, decoded.Message))
	}

	if decoded.ID == "" {
		return "", errs.NewRetryableProviderError(ProviderName, "send", errors.New("response without transfer id"))
	}
	c.logger.Info("transfer accepted",
		zap.String("payoutId", t.PayoutID.String()),
		zap.String("transferId", decoded.ID),
		zap.String("status", decoded.Status))
	return decoded.ID, nil
}

func (c *Client) mockSend(t ports.PayoutTransfer) (string, error) {
	if strings.HasPrefix(t.AccountRef, "reject") {
		return "", errs.NewPermanentProviderError(ProviderName, "send", fmt.Errorf("account %s refused", t.AccountRef))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ref, ok := c.mockSent[t.IdempotencyKey]; ok {
		return ref, nil
	}
	c.mockCount++
	ref := fmt.Sprintf("mock-tr-%d", c.mockCount)
	c.mockSent[t.IdempotencyKey] = ref
	c.logger.Info("mock transfer accepted", zap.String("payoutId", t.PayoutID.String()), zap.String("transferId", ref))
	return ref, nil
}

func statusError(code int, message string) error {
	if message == "" {
		message = http.StatusText(code)
	}
	return fmt.Errorf("status %d: %s", code, message)
}
