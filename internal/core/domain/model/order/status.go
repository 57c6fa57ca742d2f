package order

import (
	"fmt"
	"strings"

	"booking/internal/pkg/errs"
)

// Status represents the lifecycle state of a booking.
//
// Normal flow:
//
//	DRAFT ──> PENDING_PRO_CONFIRMATION ──> ACCEPTED ──> CONFIRMED ──> IN_PROGRESS
//	                  │                       │             │              │
//	                  └──> REJECTED           │             │              v
//	                                          │             │   AWAITING_CLIENT_APPROVAL ──> COMPLETED ──> PAID
//	   (client cancel from DRAFT..CONFIRMED) ─┴─────────────┴──> CANCELED        │               │
//	                                                                             └──> DISPUTED <─┘
//
// DISPUTED is resolved by an admin into COMPLETED or CANCELED.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota

	// Draft is the initial status while the client is still editing the booking.
	Draft

	// PendingProConfirmation means the client submitted the booking and waits for the pro.
	PendingProConfirmation

	// Accepted means the pro took the job; a payment hold can now be opened.
	Accepted

	// Confirmed means the payment hold is authorized.
	Confirmed

	// InProgress means the pro started the work.
	InProgress

	// AwaitingClientApproval means the pro submitted the work (and final hours for hourly bookings).
	AwaitingClientApproval

	// Completed means the client approved the work; the payment can be captured.
	Completed

	// Paid means the payment was captured. Terminal.
	Paid

	// Disputed means either party contested the work; only an admin can resolve it.
	Disputed

	// Canceled is terminal.
	Canceled

	// Rejected means the pro declined the booking. Terminal.
	Rejected
)

var statusNames = map[Status]string{
	Draft:                  "DRAFT",
	PendingProConfirmation: "PENDING_PRO_CONFIRMATION",
	Accepted:               "ACCEPTED",
	Confirmed:              "CONFIRMED",
	InProgress:             "IN_PROGRESS",
	AwaitingClientApproval: "AWAITING_CLIENT_APPROVAL",
	Completed:              "COMPLETED",
	Paid:                   "PAID",
	Disputed:               "DISPUTED",
	Canceled:               "CANCELED",
	Rejected:               "REJECTED",
}

// AllStatuses returns every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		Draft,
		PendingProConfirmation,
		Accepted,
		Confirmed,
		InProgress,
		AwaitingClientApproval,
		Completed,
		Paid,
		Disputed,
		Canceled,
		Rejected,
	}
}

// ParseStatus accepts only members of the closed enum. Input is trimmed and
// matched case-insensitively so admin dropdown values like "in_progress" work.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for status, name := range statusNames {
		if name == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid order status", s))
}

// Validate checks that s is a member of the closed enum. Unknown (0) is invalid.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status, or "UNKNOWN".
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no normal transition leaves s.
func (s Status) IsTerminal() bool {
	return s == Paid || s == Canceled || s == Rejected
}

// IsPreWork reports whether the pro has not started working yet.
// Clients can cancel only from these states.
func (s Status) IsPreWork() bool {
	switch s {
	case Draft, PendingProConfirmation, Accepted, Confirmed:
		return true
	default:
		return false
	}
}
