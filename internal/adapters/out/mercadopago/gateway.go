// Package mercadopago implements ports.PaymentGateway on top of the Mercado Pago
// SDK. Holds are opened as card payments with capture=false; our payment id is
// sent as external_reference so a retried OpenHold finds the payment it already
// created instead of charging twice.
package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"booking/internal/core/domain/model/kernel"
	domain "booking/internal/core/domain/model/payment"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/mperror"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/refund"
	"go.uber.org/zap"
)

// ProviderName is stored on every payment created through this gateway.
const ProviderName = "mercadopago"

var ErrMissingAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")

// Config configures the gateway.
type Config struct {
	AccessToken string

	// CheckoutBaseURL is where a payer without a card token is sent to finish paying.
	CheckoutBaseURL string

	// NotificationURL is passed to the provider for webhook delivery. Optional.
	NotificationURL string

	// Currency is assumed when the provider omits currency_id.
	Currency string

	// Mock keeps all provider state in memory. Used in local runs and demos.
	Mock bool
}

type paymentsAPI interface {
	Create(ctx context.Context, request payment.Request) (*payment.Response, error)
	Get(ctx context.Context, id int) (*payment.Response, error)
	Search(ctx context.Context, request payment.SearchRequest) (*payment.SearchResponse, error)
	Cancel(ctx context.Context, id int) (*payment.Response, error)
	CaptureAmount(ctx context.Context, id int, amount float64) (*payment.Response, error)
}

type refundsAPI interface {
	Create(ctx context.Context, paymentID int) (*refund.Response, error)
}

// Gateway is the Mercado Pago payment gateway.
type Gateway struct {
	payments        paymentsAPI
	refunds         refundsAPI
	checkoutBaseURL string
	notificationURL string
	currency        string
	logger          *zap.Logger
}

// NewGateway builds a gateway backed by the real API, or by an in-memory fake
// when cfg.Mock is set.
func NewGateway(cfg Config, logger *zap.Logger) (*Gateway, error) {
	logger = logger.With(zap.String("component", "mercadopago"))

	if cfg.Mock {
		logger.Info("payment gateway mock mode enabled")
		fake := newFakeAPI(cfg.Currency)
		return newGateway(cfg, fake, fakeRefunds{api: fake}, logger), nil
	}

	if cfg.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}
	sdkConfig, err := config.New(cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("mercado pago sdk config: %w", err)
	}
	logger.Info("mercado pago client initialized")

	return newGateway(cfg, payment.NewClient(sdkConfig), refund.NewClient(sdkConfig), logger), nil
}

func newGateway(cfg Config, payments paymentsAPI, refunds refundsAPI, logger *zap.Logger) *Gateway {
	currency := cfg.Currency
	if currency == "" {
		currency = "BRL"
	}
	return &Gateway{
		payments:        payments,
		refunds:         refunds,
		checkoutBaseURL: cfg.CheckoutBaseURL,
		notificationURL: cfg.NotificationURL,
		currency:        currency,
		logger:          logger,
	}
}

func (g *Gateway) Name() string {
	return ProviderName
}

// OpenHold looks for a provider payment already tagged with req.PaymentID before
// creating one. Without a card token the payer is sent to checkout and no provider
// payment exists yet; the webhook will bring the reference later.
func (g *Gateway) OpenHold(ctx context.Context, req ports.HoldRequest) (ports.ProviderPayment, error) {
	if req.Reference != "" {
		return g.Fetch(ctx, req.Reference)
	}

	existing, err := g.payments.Search(ctx, payment.SearchRequest{
		Filters: map[string]string{"external_reference": req.PaymentID.String()},
		Limit:   1,
	})
	if err != nil {
		return ports.ProviderPayment{}, g.classify("search", err)
	}
	if existing != nil && len(existing.Results) > 0 {
		g.logger.Info("reusing provider payment",
			zap.String("paymentId", req.PaymentID.String()),
			zap.Int("providerId", existing.Results[0].ID))
		return g.toProviderPayment(&existing.Results[0])
	}

	if req.CardToken == "" {
		return ports.ProviderPayment{
			LocalID:     req.PaymentID.String(),
			Status:      domain.RequiresAction,
			CheckoutURL: g.checkoutURL(req.PaymentID),
		}, nil
	}

	request := payment.Request{
		TransactionAmount: req.Amount.Float64(),
		Capture:           false,
		Description:       req.Description,
		ExternalReference: req.PaymentID.String(),
		PaymentMethodID:   req.PaymentMethodID,
		Token:             req.CardToken,
		Installments:      1,
		NotificationURL:   g.notificationURL,
	}
	if req.PayerEmail != "" {
		request.Payer = &payment.PayerRequest{Email: req.PayerEmail}
	}

	resp, err := g.payments.Create(ctx, request)
	if err != nil {
		return ports.ProviderPayment{}, g.classify("create", err)
	}
	g.logger.Info("hold opened",
		zap.String("paymentId", req.PaymentID.String()),
		zap.Int("providerId", resp.ID),
		zap.String("status", resp.Status))

	pp, err := g.toProviderPayment(resp)
	if err != nil {
		return pp, err
	}
	if pp.Status == domain.RequiresAction && pp.CheckoutURL == "" {
		pp.CheckoutURL = g.checkoutURL(req.PaymentID)
	}
	return pp, nil
}

func (g *Gateway) Capture(ctx context.Context, reference string, amount kernel.Money) (ports.ProviderPayment, error) {
	id, err := parseReference(reference)
	if err != nil {
		return ports.ProviderPayment{}, err
	}
	resp, err := g.payments.CaptureAmount(ctx, id, amount.Float64())
	if err != nil {
		return ports.ProviderPayment{}, g.classify("capture", err)
	}
	return g.toProviderPayment(resp)
}

func (g *Gateway) Cancel(ctx context.Context, reference string) (ports.ProviderPayment, error) {
	id, err := parseReference(reference)
	if err != nil {
		return ports.ProviderPayment{}, err
	}
	resp, err := g.payments.Cancel(ctx, id)
	if err != nil {
		return ports.ProviderPayment{}, g.classify("cancel", err)
	}
	return g.toProviderPayment(resp)
}

// Refund issues a full refund and returns the payment as the provider now reports it.
func (g *Gateway) Refund(ctx context.Context, reference string) (ports.ProviderPayment, error) {
	id, err := parseReference(reference)
	if err != nil {
		return ports.ProviderPayment{}, err
	}
	if _, err := g.refunds.Create(ctx, id); err != nil {
		return ports.ProviderPayment{}, g.classify("refund", err)
	}
	return g.Fetch(ctx, reference)
}

func (g *Gateway) Fetch(ctx context.Context, reference string) (ports.ProviderPayment, error) {
	id, err := parseReference(reference)
	if err != nil {
		return ports.ProviderPayment{}, err
	}
	resp, err := g.payments.Get(ctx, id)
	if err != nil {
		return ports.ProviderPayment{}, g.classify("get", err)
	}
	return g.toProviderPayment(resp)
}

func (g *Gateway) checkoutURL(paymentID kernel.UUID) string {
	if g.checkoutBaseURL == "" {
		return ""
	}
	return g.checkoutBaseURL + "?payment_id=" + url.QueryEscape(paymentID.String())
}

func (g *Gateway) toProviderPayment(resp *payment.Response) (ports.ProviderPayment, error) {
	if resp == nil {
		return ports.ProviderPayment{}, errs.NewRetryableProviderError(ProviderName, "decode", errors.New("empty response"))
	}

	status, ok := MapStatus(resp.Status)
	if !ok {
		return ports.ProviderPayment{}, errs.NewPermanentProviderError(
			ProviderName, "decode", fmt.Errorf("unknown status %q", resp.Status),
		)
	}

	currency := strings.ToUpper(resp.CurrencyID)
	if currency == "" {
		currency = g.currency
	}
	amount, err := kernel.MoneyFromFloat(resp.TransactionAmount, currency)
	if err != nil {
		return ports.ProviderPayment{}, errs.NewPermanentProviderError(ProviderName, "decode", err)
	}

	pp := ports.ProviderPayment{
		Reference: strconv.Itoa(resp.ID),
		LocalID:   resp.ExternalReference,
		Status:    status,
		UpdatedAt: resp.DateLastUpdated,
	}
	switch status {
	case domain.Authorized:
		pp.Authorized = &amount
	case domain.Captured:
		pp.Captured = &amount
	case domain.Refunded:
		pp.Captured = &amount
		if resp.TransactionAmountRefunded > 0 {
			refunded, err := kernel.MoneyFromFloat(resp.TransactionAmountRefunded, currency)
			if err != nil {
				return ports.ProviderPayment{}, errs.NewPermanentProviderError(ProviderName, "decode", err)
			}
			pp.Refunded = &refunded
		}
	case domain.Failed:
		pp.FailureReason = resp.StatusDetail
	}
	return pp, nil
}

// MapStatus translates a Mercado Pago payment status.
func MapStatus(status string) (domain.Status, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "authorized":
		return domain.Authorized, true
	case "approved":
		return domain.Captured, true
	case "pending", "in_process", "in_mediation":
		return domain.RequiresAction, true
	case "rejected":
		return domain.Failed, true
	case "cancelled":
		return domain.Cancelled, true
	case "refunded", "charged_back":
		return domain.Refunded, true
	default:
		return domain.Unknown, false
	}
}

// classify sorts SDK failures into retryable (5xx, 429, transport) and permanent (other 4xx).
func (g *Gateway) classify(op string, err error) error {
	var apiErr *mperror.ResponseError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 500 || apiErr.StatusCode == 429 {
			g.logger.Warn("provider unavailable", zap.String("op", op), zap.Int("status", apiErr.StatusCode))
			return errs.NewRetryableProviderError(ProviderName, op, err)
		}
		g.logger.Warn("provider rejected request", zap.String("op", op), zap.Int("status", apiErr.StatusCode))
		return errs.NewPermanentProviderError(ProviderName, op, err)
	}
	g.logger.Warn("provider call failed", zap.String("op", op), zap.Error(err))
	return errs.NewRetryableProviderError(ProviderName, op, err)
}

func parseReference(reference string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(reference))
	if err != nil || id <= 0 {
		return 0, errs.NewValueIsInvalidErrorWithCause("providerReference", fmt.Errorf("%q is not a Mercado Pago id", reference))
	}
	return id, nil
}
