package jobs_test

import (
	"context"
	"testing"
	"time"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/model/payout"
	"booking/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

type useCaseMock[In, Out any] struct{ mock.Mock }

func (m *useCaseMock[In, Out]) Handle(ctx context.Context, in In) (Out, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(Out)
	return out, args.Error(1)
}

// uowStub serves the repositories a job reads; any other call panics on the nil embedded interface.
type uowStub struct {
	ports.UnitOfWork
	payouts  *payoutRepositoryMock
	earnings *earningRepositoryMock
	payments *paymentRepositoryMock
	audit    *auditRepositoryMock
}

func (u *uowStub) Create() ports.UnitOfWork                         { return u }
func (u *uowStub) PayoutRepository() ports.PayoutRepository         { return u.payouts }
func (u *uowStub) EarningRepository() ports.EarningRepository       { return u.earnings }
func (u *uowStub) PaymentRepository() ports.PaymentRepository       { return u.payments }
func (u *uowStub) AuditRepository() ports.AuditRepository           { return u.audit }
func (u *uowStub) ProProfileRepository() ports.ProProfileRepository { return nil }

func newUOW() *uowStub {
	return &uowStub{
		payouts:  new(payoutRepositoryMock),
		earnings: new(earningRepositoryMock),
		payments: new(paymentRepositoryMock),
		audit:    new(auditRepositoryMock),
	}
}

type payoutRepositoryMock struct {
	ports.PayoutRepository
	mock.Mock
}

func (m *payoutRepositoryMock) ListByStatus(ctx context.Context, status payout.Status, limit int) ([]*payout.Payout, error) {
	args := m.Called(ctx, status, limit)
	out, _ := args.Get(0).([]*payout.Payout)
	return out, args.Error(1)
}

type earningRepositoryMock struct {
	ports.EarningRepository
	mock.Mock
}

func (m *earningRepositoryMock) ListProsWithUnclaimed(ctx context.Context, limit int) ([]kernel.UUID, error) {
	args := m.Called(ctx, limit)
	out, _ := args.Get(0).([]kernel.UUID)
	return out, args.Error(1)
}

type paymentRepositoryMock struct {
	ports.PaymentRepository
	mock.Mock
}

func (m *paymentRepositoryMock) ListByStatus(ctx context.Context, statuses []payment.Status, limit int) ([]*payment.Payment, error) {
	args := m.Called(ctx, statuses, limit)
	out, _ := args.Get(0).([]*payment.Payment)
	return out, args.Error(1)
}

type auditRepositoryMock struct {
	ports.AuditRepository
	mock.Mock
}

func (m *auditRepositoryMock) ListUnexported(ctx context.Context, limit int) ([]*audit.Entry, error) {
	args := m.Called(ctx, limit)
	out, _ := args.Get(0).([]*audit.Entry)
	return out, args.Error(1)
}

func (m *auditRepositoryMock) MarkExported(ctx context.Context, ids []kernel.UUID, at time.Time) error {
	return m.Called(ctx, ids, at).Error(0)
}

type gatewayMock struct {
	ports.PaymentGateway
	mock.Mock
}

func (m *gatewayMock) Name() string { return "mercadopago" }

func (m *gatewayMock) Fetch(ctx context.Context, reference string) (ports.ProviderPayment, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(ports.ProviderPayment), args.Error(1)
}

type archiveMock struct{ mock.Mock }

func (m *archiveMock) Put(ctx context.Context, entry *audit.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func brl(t *testing.T, cents int64) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoney(cents, "BRL")
	require.NoError(t, err)
	return m
}

func newPayout(t *testing.T) *payout.Payout {
	t.Helper()
	proID := kernel.NewUUID()
	e, err := payout.NewEarning(kernel.NewUUID(), proID, kernel.NewUUID(), kernel.NewUUID(), brl(t, 10000), 1500, now)
	require.NoError(t, err)
	p, err := payout.NewPayout(kernel.NewUUID(), proID, "payouts-api", []*payout.Earning{e}, now)
	require.NoError(t, err)
	return p
}

func authorizedPayment(t *testing.T, provider, reference string) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(kernel.NewUUID(), kernel.NewUUID(), provider, brl(t, 24000), now)
	require.NoError(t, err)
	require.NoError(t, p.ApplyHold(payment.Hold{Reference: reference, Status: payment.Authorized, Authorized: brl(t, 24000)}, now))
	return p
}

func auditEntry(t *testing.T) *audit.Entry {
	t.Helper()
	e, err := audit.NewEntry(kernel.NewOrderedUUID(), audit.Record{
		EventType:  audit.OrderCreated,
		ActorID:    kernel.NewUUID().String(),
		ActorRole:  "CLIENT",
		Action:     "create",
		EntityType: "order",
		EntityID:   kernel.NewUUID().String(),
	}, now)
	require.NoError(t, err)
	return e
}
