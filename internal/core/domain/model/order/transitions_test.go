package order_test

import (
	"testing"

	"booking/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_ClientCancellation(t *testing.T) {
	for _, s := range order.AllStatuses() {
		allowed := order.CanTransition(order.RoleClient, s, order.Canceled)
		assert.Equal(t, s.IsPreWork(), allowed, "client cancel from %s", s)
	}
}

func TestCanTransition_Table(t *testing.T) {
	tests := []struct {
		role     order.Role
		from, to order.Status
		allowed  bool
	}{
		{order.RoleClient, order.Draft, order.PendingProConfirmation, true},
		{order.RolePro, order.Draft, order.PendingProConfirmation, false},
		{order.RolePro, order.PendingProConfirmation, order.Accepted, true},
		{order.RoleClient, order.PendingProConfirmation, order.Accepted, false},
		{order.RolePro, order.PendingProConfirmation, order.Rejected, true},
		{order.RoleSystem, order.Accepted, order.Confirmed, true},
		{order.RolePro, order.Accepted, order.Confirmed, false},
		{order.RoleAdmin, order.Accepted, order.Confirmed, false},
		{order.RolePro, order.Confirmed, order.InProgress, true},
		{order.RolePro, order.InProgress, order.AwaitingClientApproval, true},
		{order.RoleClient, order.InProgress, order.Canceled, false},
		{order.RolePro, order.InProgress, order.Canceled, false},
		{order.RoleClient, order.AwaitingClientApproval, order.Completed, true},
		{order.RolePro, order.AwaitingClientApproval, order.Completed, false},
		{order.RoleClient, order.AwaitingClientApproval, order.Disputed, true},
		{order.RolePro, order.AwaitingClientApproval, order.Disputed, true},
		{order.RoleClient, order.Completed, order.Disputed, true},
		{order.RoleSystem, order.Completed, order.Paid, true},
		{order.RoleClient, order.Completed, order.Paid, false},
		{order.RoleAdmin, order.Disputed, order.Completed, true},
		{order.RoleAdmin, order.Disputed, order.Canceled, true},
		{order.RoleClient, order.Disputed, order.Completed, false},
		{order.RoleAdmin, order.Draft, order.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.role.String()+" "+tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, order.CanTransition(tt.role, tt.from, tt.to))
		})
	}
}

func TestAllowedTargets(t *testing.T) {
	assert.ElementsMatch(t,
		[]order.Status{order.Accepted, order.Rejected},
		order.AllowedTargets(order.RolePro, order.PendingProConfirmation),
	)
	assert.ElementsMatch(t,
		[]order.Status{order.Completed, order.Disputed},
		order.AllowedTargets(order.RoleClient, order.AwaitingClientApproval),
	)
	assert.Empty(t, order.AllowedTargets(order.RoleUnknown, order.Draft))
}

func TestIsLegalStep(t *testing.T) {
	assert.True(t, order.IsLegalStep(order.Accepted, order.Confirmed))
	assert.True(t, order.IsLegalStep(order.Disputed, order.Completed))
	assert.False(t, order.IsLegalStep(order.Draft, order.Paid))
	assert.False(t, order.IsLegalStep(order.InProgress, order.Canceled))
}
