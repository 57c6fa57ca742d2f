package services_test

import (
	"testing"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/services"
	"booking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEarningCalculator_EarningFor(t *testing.T) {
	calc, err := services.NewEarningCalculator(1500)
	require.NoError(t, err)

	t.Run("applies the platform fee to the captured amount", func(t *testing.T) {
		o := orderIn(t, order.Completed)
		p := capturedPayment(t, o, 20000)

		e, err := calc.EarningFor(o, p, now)

		require.NoError(t, err)
		assert.True(t, e.ProProfileID().IsEqual(o.ProProfileID()))
		assert.True(t, e.PaymentID().IsEqual(p.ID()))
		assert.Equal(t, int64(20000), e.Gross().Cents())
		assert.Equal(t, int64(3000), e.Fee().Cents())
		assert.Equal(t, int64(17000), e.Net().Cents())
	})

	t.Run("requires a captured payment", func(t *testing.T) {
		o := orderIn(t, order.Completed)
		p, _ := payment.NewPayment(kernel.NewUUID(), o.ID(), "mercadopago", brl(t, 100), now)

		_, err := calc.EarningFor(o, p, now)

		assert.ErrorIs(t, err, services.ErrPaymentNotCaptured)
	})

	t.Run("requires the payment of the same order", func(t *testing.T) {
		p := capturedPayment(t, orderIn(t, order.Completed), 100)

		_, err := calc.EarningFor(orderIn(t, order.Completed), p, now)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects a fee above 100%", func(t *testing.T) {
		_, err := services.NewEarningCalculator(10001)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}
