package kernel

import (
	"errors"
	"fmt"
	"time"

	"booking/internal/pkg/errs"
)

// ErrTimeWindowIsNotConstructed is returned for a zero-value TimeWindow.
var ErrTimeWindowIsNotConstructed = errors.New("TimeWindow must be created via NewTimeWindow")

// TimeWindow is the period in which the client wants the service performed.
type TimeWindow struct {
	start time.Time
	end   time.Time
}

// NewTimeWindow requires end to be strictly after start. Both are kept in UTC.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if start.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("scheduledStart")
	}
	if end.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("scheduledEnd")
	}
	if !end.After(start) {
		return TimeWindow{}, errs.NewValueIsInvalidErrorWithCause(
			"scheduledEnd",
			fmt.Errorf("%s is not after %s", end.Format(time.RFC3339), start.Format(time.RFC3339)),
		)
	}
	return TimeWindow{start: start.UTC(), end: end.UTC()}, nil
}

func (w TimeWindow) Start() time.Time {
	return w.start
}

func (w TimeWindow) End() time.Time {
	return w.end
}

func (w TimeWindow) Duration() time.Duration {
	return w.end.Sub(w.start)
}

func (w TimeWindow) Validate() error {
	if w.start.IsZero() || w.end.IsZero() {
		return ErrTimeWindowIsNotConstructed
	}
	return nil
}
