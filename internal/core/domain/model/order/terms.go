package order

import (
	"errors"
	"fmt"
	"strings"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/pkg/errs"
)

// PricingMode tells how the booking is charged.
type PricingMode int

const (
	PricingUnknown PricingMode = iota
	PricingHourly
	PricingFixed
)

func ParsePricingMode(s string) (PricingMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HOURLY":
		return PricingHourly, nil
	case "FIXED":
		return PricingFixed, nil
	default:
		return PricingUnknown, errs.NewValueIsInvalidErrorWithCause("pricingMode", fmt.Errorf("%q is not HOURLY or FIXED", s))
	}
}

func (m PricingMode) String() string {
	switch m {
	case PricingHourly:
		return "HOURLY"
	case PricingFixed:
		return "FIXED"
	default:
		return "UNKNOWN"
	}
}

// Terms is the pricing snapshot taken when the booking is created.
//
// An hourly booking needs HourlyRate and EstimatedHours. A fixed booking needs
// QuotedAmount. When a quote is present it always wins over the hourly estimate,
// whatever the mode says.
type Terms struct {
	Mode           PricingMode
	HourlyRate     *kernel.Money
	QuotedAmount   *kernel.Money
	EstimatedHours *kernel.Hours
}

// Currency returns the currency shared by the priced amounts.
func (t Terms) Currency() string {
	if t.QuotedAmount != nil {
		return t.QuotedAmount.Currency()
	}
	if t.HourlyRate != nil {
		return t.HourlyRate.Currency()
	}
	return ""
}

// Validate checks the terms are complete for their mode.
func (t Terms) Validate() error {
	var err error
	switch t.Mode {
	case PricingHourly:
		if t.HourlyRate == nil || t.HourlyRate.IsZero() {
			err = errors.Join(err, errs.NewValueIsRequiredError("hourlyRateCents"))
		}
		if t.EstimatedHours == nil {
			err = errors.Join(err, errs.NewValueIsRequiredError("estimatedHours"))
		}
	case PricingFixed:
		if t.QuotedAmount == nil || t.QuotedAmount.IsZero() {
			err = errors.Join(err, errs.NewValueIsRequiredError("quotedAmountCents"))
		}
	default:
		return errs.NewValueIsInvalidErrorWithCause("pricingMode", fmt.Errorf("%s is not a valid pricing mode", t.Mode))
	}
	if err != nil {
		return err
	}

	if t.HourlyRate != nil && t.QuotedAmount != nil && t.HourlyRate.Currency() != t.QuotedAmount.Currency() {
		return errs.NewValueIsInvalidErrorWithCause("currency", kernel.ErrCurrencyMismatch)
	}
	return nil
}

// Estimate is the amount a payment hold is opened for.
func (t Terms) Estimate() (kernel.Money, error) {
	if t.QuotedAmount != nil {
		return *t.QuotedAmount, nil
	}
	if t.HourlyRate == nil || t.EstimatedHours == nil {
		return kernel.Money{}, errs.NewValueIsRequiredError("hourlyRateCents")
	}
	return t.HourlyRate.MulHoursCeil(*t.EstimatedHours)
}

// Final is the amount owed for the given approved hours. Quoted bookings ignore hours.
func (t Terms) Final(approved *kernel.Hours) (kernel.Money, error) {
	if t.QuotedAmount != nil {
		return *t.QuotedAmount, nil
	}
	if t.HourlyRate == nil {
		return kernel.Money{}, errs.NewValueIsRequiredError("hourlyRateCents")
	}
	if approved == nil {
		return kernel.Money{}, errs.NewValueIsRequiredError("approvedHours")
	}
	return t.HourlyRate.MulHoursCeil(*approved)
}
