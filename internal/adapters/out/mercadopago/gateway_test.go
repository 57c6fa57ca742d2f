package mercadopago

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"booking/internal/core/domain/model/kernel"
	domain "booking/internal/core/domain/model/payment"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"

	"github.com/mercadopago/sdk-go/pkg/mperror"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type paymentsMock struct {
	mock.Mock
}

func (m *paymentsMock) Create(ctx context.Context, request payment.Request) (*payment.Response, error) {
	args := m.Called(ctx, request)
	resp, _ := args.Get(0).(*payment.Response)
	return resp, args.Error(1)
}

func (m *paymentsMock) Get(ctx context.Context, id int) (*payment.Response, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*payment.Response)
	return resp, args.Error(1)
}

func (m *paymentsMock) Search(ctx context.Context, request payment.SearchRequest) (*payment.SearchResponse, error) {
	args := m.Called(ctx, request)
	resp, _ := args.Get(0).(*payment.SearchResponse)
	return resp, args.Error(1)
}

func (m *paymentsMock) Cancel(ctx context.Context, id int) (*payment.Response, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*payment.Response)
	return resp, args.Error(1)
}

func (m *paymentsMock) CaptureAmount(ctx context.Context, id int, amount float64) (*payment.Response, error) {
	args := m.Called(ctx, id, amount)
	resp, _ := args.Get(0).(*payment.Response)
	return resp, args.Error(1)
}

func brl(t *testing.T, cents int64) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoney(cents, "BRL")
	require.NoError(t, err)
	return m
}

func mockGateway(t *testing.T) *Gateway {
	t.Helper()
	g, err := NewGateway(Config{Mock: true, CheckoutBaseURL: "https://pay.example/checkout"}, zap.NewNop())
	require.NoError(t, err)
	return g
}

func TestNewGateway_RequiresTokenOutsideMockMode(t *testing.T) {
	_, err := NewGateway(Config{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingAccessToken)
}

func TestGateway_MockLifecycle(t *testing.T) {
	ctx := context.Background()
	g := mockGateway(t)
	paymentID := kernel.NewUUID()

	held, err := g.OpenHold(ctx, ports.HoldRequest{
		PaymentID: paymentID, Amount: brl(t, 24000), CardToken: "tok", PaymentMethodID: "visa",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Authorized, held.Status)
	assert.Equal(t, paymentID.String(), held.LocalID)
	require.NotNil(t, held.Authorized)
	assert.Equal(t, int64(24000), held.Authorized.Cents())

	again, err := g.OpenHold(ctx, ports.HoldRequest{PaymentID: paymentID, Amount: brl(t, 24000), CardToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, held.Reference, again.Reference, "retried hold must reuse the provider payment")

	captured, err := g.Capture(ctx, held.Reference, brl(t, 20000))
	require.NoError(t, err)
	assert.Equal(t, domain.Captured, captured.Status)
	assert.Equal(t, int64(20000), captured.Captured.Cents())

	refunded, err := g.Refund(ctx, held.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.Refunded, refunded.Status)
	require.NotNil(t, refunded.Refunded)
	assert.Equal(t, int64(20000), refunded.Refunded.Cents())
}

func TestGateway_MockCaptureAboveHoldIsPermanent(t *testing.T) {
	ctx := context.Background()
	g := mockGateway(t)

	held, err := g.OpenHold(ctx, ports.HoldRequest{PaymentID: kernel.NewUUID(), Amount: brl(t, 1000), CardToken: "tok"})
	require.NoError(t, err)

	_, err = g.Capture(ctx, held.Reference, brl(t, 1001))

	var providerErr *errs.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.False(t, providerErr.Retryable)
}

func TestGateway_MockRejectedCard(t *testing.T) {
	g := mockGateway(t)

	held, err := g.OpenHold(context.Background(), ports.HoldRequest{
		PaymentID: kernel.NewUUID(), Amount: brl(t, 1000), CardToken: RejectedCardToken,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.Failed, held.Status)
	assert.NotEmpty(t, held.FailureReason)
}

func TestGateway_OpenHoldWithoutCardToken(t *testing.T) {
	g := mockGateway(t)
	paymentID := kernel.NewUUID()

	held, err := g.OpenHold(context.Background(), ports.HoldRequest{PaymentID: paymentID, Amount: brl(t, 1000)})

	require.NoError(t, err)
	assert.Equal(t, domain.RequiresAction, held.Status)
	assert.Empty(t, held.Reference)
	assert.Equal(t, "https://pay.example/checkout?payment_id="+paymentID.String(), held.CheckoutURL)
}

func TestGateway_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "server error", err: &mperror.ResponseError{StatusCode: http.StatusBadGateway}, retryable: true},
		{name: "rate limited", err: &mperror.ResponseError{StatusCode: http.StatusTooManyRequests}, retryable: true},
		{name: "bad request", err: &mperror.ResponseError{StatusCode: http.StatusBadRequest}, retryable: false},
		{name: "transport", err: errors.New("connection reset"), retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &paymentsMock{}
			api.On("Get", mock.Anything, 42).Return(nil, tt.err)
			g := newGateway(Config{}, api, nil, zap.NewNop())

			_, err := g.Fetch(context.Background(), "42")

			var providerErr *errs.ProviderError
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, tt.retryable, providerErr.Retryable)
			assert.Equal(t, "get", providerErr.Operation)
			api.AssertExpectations(t)
		})
	}
}

func TestGateway_FetchMapsResponse(t *testing.T) {
	updated := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	api := &paymentsMock{}
	api.On("Get", mock.Anything, 7).Return(&payment.Response{
		ID: 7, Status: "approved", TransactionAmount: 199.9, CurrencyID: "brl",
		ExternalReference: "local-id", DateLastUpdated: updated,
	}, nil)
	g := newGateway(Config{}, api, nil, zap.NewNop())

	pp, err := g.Fetch(context.Background(), "7")

	require.NoError(t, err)
	assert.Equal(t, "7", pp.Reference)
	assert.Equal(t, "local-id", pp.LocalID)
	assert.Equal(t, domain.Captured, pp.Status)
	assert.Equal(t, int64(19990), pp.Captured.Cents())
	assert.Equal(t, "BRL", pp.Captured.Currency())
	assert.Equal(t, updated, pp.UpdatedAt)
}

func TestGateway_RejectsMalformedReference(t *testing.T) {
	g := newGateway(Config{}, &paymentsMock{}, nil, zap.NewNop())

	_, err := g.Fetch(context.Background(), "mp-abc")

	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestMapStatus(t *testing.T) {
	cases := map[string]domain.Status{
		"authorized":   domain.Authorized,
		"approved":     domain.Captured,
		"in_process":   domain.RequiresAction,
		"pending":      domain.RequiresAction,
		"rejected":     domain.Failed,
		"cancelled":    domain.Cancelled,
		"refunded":     domain.Refunded,
		"charged_back": domain.Refunded,
	}
	for raw, want := range cases {
		got, ok := MapStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := MapStatus("mystery")
	assert.False(t, ok)
}
