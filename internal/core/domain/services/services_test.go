package services_test

import (
	"testing"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/model/proprofile"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func brl(t *testing.T, cents int64) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoney(cents, "BRL")
	require.NoError(t, err)
	return m
}

func orderIn(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	rate := brl(t, 8000)
	h := kernel.MustHours("3")
	w, err := kernel.NewTimeWindow(now, now.Add(3*time.Hour))
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), w,
		order.Terms{Mode: order.PricingHourly, HourlyRate: &rate, EstimatedHours: &h}, now)
	require.NoError(t, err)

	s := o.Snapshot()
	s.Status = status
	o, err = order.RestoreOrder(s)
	require.NoError(t, err)
	return o
}

func capturedPayment(t *testing.T, o *order.Order, cents int64) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(kernel.NewUUID(), o.ID(), "mercadopago", brl(t, 24000), now)
	require.NoError(t, err)
	require.NoError(t, p.ApplyHold(payment.Hold{Reference: "mp-1", Status: payment.Authorized, Authorized: brl(t, 24000)}, now))
	require.NoError(t, p.Capture(brl(t, cents), now))
	return p
}

func approvedPro(t *testing.T, id kernel.UUID, account string) *proprofile.ProProfile {
	t.Helper()
	p, err := proprofile.RestoreProProfile(proprofile.Snapshot{
		ID: id, UserID: kernel.NewUUID(), DisplayName: "Ana", Status: proprofile.Approved,
		HourlyRate: brl(t, 8000), PayoutAccountRef: account,
	})
	require.NoError(t, err)
	return p
}
