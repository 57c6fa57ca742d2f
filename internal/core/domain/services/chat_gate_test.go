package services_test

import (
	"testing"

	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
)

func TestChatGate_IsOpen(t *testing.T) {
	open := map[order.Status]bool{
		order.Accepted:               true,
		order.Confirmed:              true,
		order.InProgress:             true,
		order.AwaitingClientApproval: true,
	}
	gate := services.NewChatGate()

	for _, s := range order.AllStatuses() {
		t.Run(s.String(), func(t *testing.T) {
			assert.Equal(t, open[s], gate.IsOpen(orderIn(t, s)))
		})
	}

	t.Run("closed for a nil order", func(t *testing.T) {
		assert.False(t, gate.IsOpen(nil))
	})

	t.Run("follows the order after a transition", func(t *testing.T) {
		o := orderIn(t, order.AwaitingClientApproval)
		assert.True(t, gate.IsOpen(o))

		_, err := o.Transition(order.TransitionRequest{
			Target: order.Disputed, Expected: order.AwaitingClientApproval,
			Actor: order.SystemActor(), Reason: "x",
		}, now)
		assert.Error(t, err)

		_, _, err = o.Force(order.Disputed, now)
		assert.NoError(t, err)
		assert.False(t, gate.IsOpen(o))
	})
}
