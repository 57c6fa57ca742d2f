package services

import (
	"fmt"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
)

// CheckOrderHistory verifies that the status entries of one order, oldest first,
// follow the transition graph. Forced entries may jump anywhere; a later normal
// entry must start from wherever the force left the order.
func CheckOrderHistory(entries []*audit.Entry) error {
	var current order.Status
	for _, e := range entries {
		switch e.EventType() {
		case audit.OrderStatusChanged, audit.OrderStatusForced:
		default:
			continue
		}

		previous, err := order.ParseStatus(e.MetadataString(audit.KeyPreviousStatus))
		if err != nil {
			return err
		}
		next, err := order.ParseStatus(e.MetadataString(audit.KeyNewStatus))
		if err != nil {
			return err
		}

		if current != order.Unknown && previous != current {
			return errs.NewInvalidTransitionError("order history",
				current.String(), previous.String(), fmt.Sprintf("entry %s", e.ID()))
		}
		if e.EventType() == audit.OrderStatusChanged && !order.IsLegalStep(previous, next) {
			return errs.NewInvalidTransitionError("order history", previous.String(), next.String(), e.ActorRole())
		}
		current = next
	}
	return nil
}
