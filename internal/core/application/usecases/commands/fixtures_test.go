package commands_test

import (
	"context"
	"testing"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/model/proprofile"
	"booking/internal/core/domain/services"
	"booking/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func brl(t *testing.T, cents int64) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoney(cents, "BRL")
	require.NoError(t, err)
	return m
}

func actor(t *testing.T, role order.Role) order.Actor {
	t.Helper()
	a, err := order.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

func calculator(t *testing.T) services.EarningCalculator {
	t.Helper()
	c, err := services.NewEarningCalculator(1500)
	require.NoError(t, err)
	return c
}

// world is a seeded store with one approved pro and one client.
type world struct {
	store  *memStore
	client order.Actor
	proUsr order.Actor
	admin  order.Actor
	proID  kernel.UUID
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		store:  newMemStore(),
		client: actor(t, order.RoleClient),
		proUsr: actor(t, order.RolePro),
		admin:  actor(t, order.RoleAdmin),
		proID:  kernel.NewUUID(),
	}
	w.store.seed(t, func(uow ports.UnitOfWork) {
		pro, err := proprofile.NewProProfile(w.proID, w.proUsr.ID(), "Ana Diarista", brl(t, 8000), "acct-1", now)
		require.NoError(t, err)
		require.NoError(t, pro.Approve(now))
		require.NoError(t, uow.ProProfileRepository().Add(context.Background(), pro))
	})
	return w
}

// seedOrder stores a fixed-price order of quote cents forced into status.
func (w *world) seedOrder(t *testing.T, status order.Status, quote int64) *order.Order {
	t.Helper()
	window, err := kernel.NewTimeWindow(now.Add(24*time.Hour), now.Add(27*time.Hour))
	require.NoError(t, err)
	q := brl(t, quote)
	o, err := order.NewOrder(kernel.NewUUID(), w.client.ID(), w.proID, kernel.NewUUID(), window,
		order.Terms{Mode: order.PricingFixed, QuotedAmount: &q}, now)
	require.NoError(t, err)
	if status != order.Draft {
		_, _, err = o.Force(status, now)
		require.NoError(t, err)
	}
	w.store.seed(t, func(uow ports.UnitOfWork) {
		require.NoError(t, uow.OrderRepository().Add(context.Background(), o))
	})
	return o
}

// seedPayment stores a payment for the order, optionally authorized for amount cents.
func (w *world) seedPayment(t *testing.T, orderID kernel.UUID, estimated, authorized int64) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(kernel.NewUUID(), orderID, "mercadopago", brl(t, estimated), now)
	require.NoError(t, err)
	if authorized > 0 {
		require.NoError(t, p.ApplyHold(payment.Hold{
			Reference: "mp-" + p.ID().String()[:8], Status: payment.Authorized, Authorized: brl(t, authorized),
		}, now))
	}
	w.store.seed(t, func(uow ports.UnitOfWork) {
		require.NoError(t, uow.PaymentRepository().Add(context.Background(), p))
	})
	return p
}

type paymentGatewayMock struct{ mock.Mock }

func (m *paymentGatewayMock) Name() string { return "mercadopago" }

func (m *paymentGatewayMock) OpenHold(ctx context.Context, req ports.HoldRequest) (ports.ProviderPayment, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.ProviderPayment), args.Error(1)
}

func (m *paymentGatewayMock) Capture(ctx context.Context, reference string, amount kernel.Money) (ports.ProviderPayment, error) {
	args := m.Called(ctx, reference, amount)
	return args.Get(0).(ports.ProviderPayment), args.Error(1)
}

func (m *paymentGatewayMock) Cancel(ctx context.Context, reference string) (ports.ProviderPayment, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(ports.ProviderPayment), args.Error(1)
}

func (m *paymentGatewayMock) Refund(ctx context.Context, reference string) (ports.ProviderPayment, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(ports.ProviderPayment), args.Error(1)
}

func (m *paymentGatewayMock) Fetch(ctx context.Context, reference string) (ports.ProviderPayment, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(ports.ProviderPayment), args.Error(1)
}

type payoutGatewayMock struct{ mock.Mock }

func (m *payoutGatewayMock) Name() string { return "payouts-api" }

func (m *payoutGatewayMock) Send(ctx context.Context, transfer ports.PayoutTransfer) (string, error) {
	args := m.Called(ctx, transfer)
	return args.String(0), args.Error(1)
}

type notifierMock struct{ mock.Mock }

func (m *notifierMock) OrderStatusChanged(ctx context.Context, change ports.OrderStatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}
