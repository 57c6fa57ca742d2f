package kernel_test

import (
	"testing"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeWindow(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("should create a window", func(t *testing.T) {
		w, err := kernel.NewTimeWindow(start, start.Add(3*time.Hour))

		require.NoError(t, err)
		assert.Equal(t, start, w.Start())
		assert.Equal(t, 3*time.Hour, w.Duration())
		assert.NoError(t, w.Validate())
	})

	t.Run("should normalize to UTC", func(t *testing.T) {
		loc := time.FixedZone("BRT", -3*60*60)
		local := time.Date(2026, 3, 10, 6, 0, 0, 0, loc)

		w, err := kernel.NewTimeWindow(local, local.Add(time.Hour))

		require.NoError(t, err)
		assert.Equal(t, time.UTC, w.Start().Location())
		assert.True(t, w.Start().Equal(start))
	})

	t.Run("should reject end before start", func(t *testing.T) {
		_, err := kernel.NewTimeWindow(start, start)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should require both bounds", func(t *testing.T) {
		_, err := kernel.NewTimeWindow(time.Time{}, start)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
