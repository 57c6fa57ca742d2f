package services_test

import (
	"testing"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/services"
	"booking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusEntry(t *testing.T, eventType audit.EventType, from, to string) *audit.Entry {
	t.Helper()
	e, err := audit.NewEntry(kernel.NewUUID(), audit.Record{
		EventType: eventType, ActorID: "a", ActorRole: "CLIENT", EntityType: audit.EntityOrder, EntityID: "o",
		Metadata: map[string]any{audit.KeyPreviousStatus: from, audit.KeyNewStatus: to},
	}, now)
	require.NoError(t, err)
	return e
}

func TestCheckOrderHistory(t *testing.T) {
	t.Run("accepts a legal path with a forced jump", func(t *testing.T) {
		entries := []*audit.Entry{
			statusEntry(t, audit.OrderStatusChanged, "DRAFT", "PENDING_PRO_CONFIRMATION"),
			statusEntry(t, audit.OrderStatusChanged, "PENDING_PRO_CONFIRMATION", "ACCEPTED"),
			statusEntry(t, audit.OrderStatusForced, "ACCEPTED", "DISPUTED"),
			statusEntry(t, audit.OrderStatusChanged, "DISPUTED", "COMPLETED"),
		}

		assert.NoError(t, services.CheckOrderHistory(entries))
	})

	t.Run("rejects an illegal normal step", func(t *testing.T) {
		entries := []*audit.Entry{
			statusEntry(t, audit.OrderStatusChanged, "IN_PROGRESS", "CANCELED"),
		}

		assert.ErrorIs(t, services.CheckOrderHistory(entries), errs.ErrInvalidTransition)
	})

	t.Run("rejects a gap between entries", func(t *testing.T) {
		entries := []*audit.Entry{
			statusEntry(t, audit.OrderStatusChanged, "DRAFT", "PENDING_PRO_CONFIRMATION"),
			statusEntry(t, audit.OrderStatusChanged, "ACCEPTED", "CONFIRMED"),
		}

		assert.ErrorIs(t, services.CheckOrderHistory(entries), errs.ErrInvalidTransition)
	})
}
