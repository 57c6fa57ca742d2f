package payment

import (
	"fmt"
	"strings"

	"booking/internal/pkg/errs"
)

// Status is the payment lifecycle state.
type Status int

const (
	Unknown Status = iota
	Created
	RequiresAction
	Authorized
	Captured
	Failed
	Cancelled
	Refunded
)

var statusNames = map[Status]string{
	Created:        "CREATED",
	RequiresAction: "REQUIRES_ACTION",
	Authorized:     "AUTHORIZED",
	Captured:       "CAPTURED",
	Failed:         "FAILED",
	Cancelled:      "CANCELLED",
	Refunded:       "REFUNDED",
}

// next lists the statuses reachable in one step.
var next = map[Status][]Status{
	Created:        {RequiresAction, Authorized, Captured, Failed, Cancelled},
	RequiresAction: {Authorized, Captured, Failed, Cancelled},
	Authorized:     {Captured, Failed, Cancelled},
	Captured:       {Refunded},
}

func ParseStatus(s string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for status, name := range statusNames {
		if name == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("paymentStatus", fmt.Errorf("%q is not a valid payment status", s))
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("paymentStatus", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// CanMoveTo reports whether to is reachable from s in one step.
func (s Status) CanMoveTo(to Status) bool {
	for _, candidate := range next[s] {
		if candidate == to {
			return true
		}
	}
	return false
}

// IsActive reports whether the payment still counts as the order's active payment.
func (s Status) IsActive() bool {
	return s != Failed && s != Cancelled && s != Unknown
}

// IsTerminal reports whether no further status change is possible.
func (s Status) IsTerminal() bool {
	return len(next[s]) == 0
}
