package services

import "booking/internal/core/domain/model/order"

// ChatGate derives chat availability from order status alone.
//
// Business rules:
//   - Open for ACCEPTED, CONFIRMED, IN_PROGRESS and AWAITING_CLIENT_APPROVAL
//   - Closed for everything else, DISPUTED included, so contact during a dispute
//     goes through moderation
//
// Callers must pass a freshly loaded order on every call.
type ChatGate struct{}

func NewChatGate() ChatGate {
	return ChatGate{}
}

// IsOpen reports whether the order's chat accepts new messages.
func (ChatGate) IsOpen(o *order.Order) bool {
	if o == nil || o.Validate() != nil {
		return false
	}
	return IsChatOpenStatus(o.Status())
}

// IsChatOpenStatus is the status-level rule behind ChatGate.
func IsChatOpenStatus(s order.Status) bool {
	switch s {
	case order.Accepted, order.Confirmed, order.InProgress, order.AwaitingClientApproval:
		return true
	default:
		return false
	}
}
