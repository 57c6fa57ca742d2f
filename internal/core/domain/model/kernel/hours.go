package kernel

import (
	"errors"
	"fmt"

	"booking/internal/pkg/errs"

	"github.com/govalues/decimal"
)

// MaxHours caps a single booking; anything above is treated as a typo.
const MaxHours = 240

// ErrHoursIsNotConstructed is returned for a zero-value Hours.
var ErrHoursIsNotConstructed = errors.New("Hours must be created via NewHours or HoursFromString")

// Hours is a positive number of hours with at most two decimal places.
type Hours struct {
	value decimal.Decimal
	set   bool
}

// NewHours validates 0 < h <= MaxHours and that h has no more than two decimals.
func NewHours(h decimal.Decimal) (Hours, error) {
	if !h.IsPos() || h.Cmp(decimal.MustNew(MaxHours, 0)) > 0 {
		return Hours{}, errs.NewValueIsOutOfRangeError("hours", h.String(), "0 (exclusive)", MaxHours)
	}
	if h.Scale() > 2 && !h.Equal(h.Round(2)) {
		return Hours{}, errs.NewValueIsInvalidErrorWithCause("hours", fmt.Errorf("%s has more than two decimals", h))
	}
	return Hours{value: h.Trim(0), set: true}, nil
}

// HoursFromString parses a decimal string such as "3.5".
func HoursFromString(s string) (Hours, error) {
	d, err := decimal.Parse(s)
	if err != nil {
		return Hours{}, errs.NewValueIsInvalidErrorWithCause("hours", err)
	}
	return NewHours(d)
}

// MustHours is HoursFromString for literals known to be valid.
func MustHours(s string) Hours {
	h, err := HoursFromString(s)
	if err != nil {
		panic(err)
	}
	return h
}

func (h Hours) Decimal() decimal.Decimal {
	return h.value
}

func (h Hours) String() string {
	return h.value.String()
}

func (h Hours) IsEqual(other Hours) bool {
	return h.set == other.set && h.value.Equal(other.value)
}

func (h Hours) Validate() error {
	if !h.set {
		return ErrHoursIsNotConstructed
	}
	return nil
}
