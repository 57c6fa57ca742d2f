package kernel_test

import (
	"errors"
	"testing"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("should create money with valid parameters", func(t *testing.T) {
		m, err := kernel.NewMoney(12550, "BRL")

		require.NoError(t, err)
		assert.Equal(t, int64(12550), m.Cents())
		assert.Equal(t, "BRL", m.Currency())
		assert.NoError(t, m.Validate())
		assert.Equal(t, "125.50 BRL", m.String())
	})

	t.Run("should allow zero", func(t *testing.T) {
		m, err := kernel.ZeroMoney("USD")

		require.NoError(t, err)
		assert.True(t, m.IsZero())
	})

	t.Run("should reject negative amounts", func(t *testing.T) {
		_, err := kernel.NewMoney(-1, "BRL")

		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrValueIsOutOfRange))
	})

	t.Run("should reject malformed currency", func(t *testing.T) {
		for _, c := range []string{"", "br", "brl", "BRLX"} {
			_, err := kernel.NewMoney(100, c)
			assert.True(t, errors.Is(err, errs.ErrValueIsInvalid), c)
		}
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var m kernel.Money
		assert.ErrorIs(t, m.Validate(), kernel.ErrMoneyIsNotConstructed)
	})
}

func TestMoneyFromFloat(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected int64
	}{
		{"whole", 100, 10000},
		{"one decimal", 125.5, 12550},
		{"two decimals", 19.99, 1999},
		{"rounds to cents", 10.005, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := kernel.MoneyFromFloat(tt.amount, "BRL")

			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.Cents())
		})
	}

	t.Run("round trips through Float64", func(t *testing.T) {
		m, _ := kernel.NewMoney(4999, "BRL")
		assert.InDelta(t, 49.99, m.Float64(), 0.0001)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a, _ := kernel.NewMoney(1000, "BRL")
	b, _ := kernel.NewMoney(250, "BRL")
	usd, _ := kernel.NewMoney(250, "USD")

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, int64(1250), sum.Cents())
	})

	t.Run("sub", func(t *testing.T) {
		diff, err := a.Sub(b)
		require.NoError(t, err)
		assert.Equal(t, int64(750), diff.Cents())
	})

	t.Run("sub below zero fails", func(t *testing.T) {
		_, err := b.Sub(a)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("min", func(t *testing.T) {
		m, err := a.Min(b)
		require.NoError(t, err)
		assert.True(t, m.IsEqual(b))
	})

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := a.Add(usd)
		assert.ErrorIs(t, err, kernel.ErrCurrencyMismatch)

		_, err = a.Cmp(usd)
		assert.ErrorIs(t, err, kernel.ErrCurrencyMismatch)
	})
}

func TestMoney_MulHoursCeil(t *testing.T) {
	tests := []struct {
		name     string
		rate     int64
		hours    string
		expected int64
	}{
		{"exact", 4000, "2.5", 10000},
		{"rounds up fractional cent", 3333, "1.5", 5000},
		{"single hour", 7550, "1", 7550},
		{"quarter hours", 101, "0.25", 26},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, _ := kernel.NewMoney(tt.rate, "BRL")

			total, err := rate.MulHoursCeil(kernel.MustHours(tt.hours))

			require.NoError(t, err)
			assert.Equal(t, tt.expected, total.Cents())
		})
	}

	t.Run("rejects zero-value hours", func(t *testing.T) {
		rate, _ := kernel.NewMoney(100, "BRL")

		_, err := rate.MulHoursCeil(kernel.Hours{})
		assert.ErrorIs(t, err, kernel.ErrHoursIsNotConstructed)
	})
}

func TestMoney_BasisPoints(t *testing.T) {
	gross, _ := kernel.NewMoney(10000, "BRL")

	fee, err := gross.BasisPoints(1500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), fee.Cents())

	odd, _ := kernel.NewMoney(333, "BRL")
	fee, err = odd.BasisPoints(1500)
	require.NoError(t, err)
	assert.Equal(t, int64(50), fee.Cents())

	_, err = gross.BasisPoints(10001)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}
