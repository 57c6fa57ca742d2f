package payout

import (
	"fmt"
	"strings"

	"booking/internal/pkg/errs"
)

// Status is the payout lifecycle state.
type Status int

const (
	Unknown Status = iota
	Created
	Sent
	Settled
	Failed
)

var statusNames = map[Status]string{
	Created: "CREATED",
	Sent:    "SENT",
	Settled: "SETTLED",
	Failed:  "FAILED",
}

var next = map[Status][]Status{
	Created: {Sent, Failed},
	Sent:    {Settled, Failed},
	Failed:  {Sent},
}

func ParseStatus(s string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for status, name := range statusNames {
		if name == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("payoutStatus", fmt.Errorf("%q is not a valid payout status", s))
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("payoutStatus", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) CanMoveTo(to Status) bool {
	for _, candidate := range next[s] {
		if candidate == to {
			return true
		}
	}
	return false
}

// CanSend reports whether the payout may be handed to the provider.
func (s Status) CanSend() bool {
	return s == Created || s == Failed
}
