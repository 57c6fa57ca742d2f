package kernel

import (
	"errors"
	"fmt"
	"regexp"

	"booking/internal/pkg/errs"

	"github.com/govalues/decimal"
)

var (
	// ErrMoneyIsNotConstructed is returned for a zero-value Money.
	ErrMoneyIsNotConstructed = errors.New("Money must be created via NewMoney")

	// ErrCurrencyMismatch is returned when combining amounts in different currencies.
	ErrCurrencyMismatch = errors.New("currencies do not match")

	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Money is a non-negative amount in minor units (cents) with its ISO 4217 currency.
// Arithmetic never mixes currencies and never goes below zero.
type Money struct {
	cents    int64
	currency string
}

// NewMoney validates and builds a Money value.
func NewMoney(cents int64, currency string) (Money, error) {
	if cents < 0 {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", cents, 0, "unbounded")
	}
	if !currencyPattern.MatchString(currency) {
		return Money{}, errs.NewValueIsInvalidErrorWithCause(
			"currency",
			fmt.Errorf("%q is not an ISO 4217 code", currency),
		)
	}
	return Money{cents: cents, currency: currency}, nil
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currency string) (Money, error) {
	return NewMoney(0, currency)
}

// MoneyFromFloat converts a provider amount expressed in major units
// (e.g. 125.5 BRL) into cents, rounding half to even at the second decimal.
func MoneyFromFloat(amount float64, currency string) (Money, error) {
	d, err := decimal.NewFromFloat64(amount)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	cents, err := d.Round(2).Mul(decimal.Hundred)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	whole, _, ok := cents.Int64(0)
	if !ok {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%s overflows int64", cents))
	}
	return NewMoney(whole, currency)
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) IsZero() bool {
	return m.cents == 0
}

// Validate rejects zero-value Money.
func (m Money) Validate() error {
	if m.currency == "" {
		return ErrMoneyIsNotConstructed
	}
	return nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	d, err := decimal.New(m.cents, 2)
	if err != nil {
		// cents is int64 and scale 2 is always in range
		panic(err)
	}
	return d
}

// Float64 returns the amount in major units, as expected by provider SDKs.
func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

func (m Money) IsEqual(other Money) bool {
	return m.cents == other.cents && m.currency == other.currency
}

// Cmp compares two amounts of the same currency.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	switch {
	case m.cents < other.cents:
		return -1, nil
	case m.cents > other.cents:
		return 1, nil
	default:
		return 0, nil
	}
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.cents+other.cents, m.currency)
}

// Sub returns m - other; the result may not be negative.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.cents-other.cents, m.currency)
}

// Min returns the smaller of the two amounts.
func (m Money) Min(other Money) (Money, error) {
	c, err := m.Cmp(other)
	if err != nil {
		return Money{}, err
	}
	if c <= 0 {
		return m, nil
	}
	return other, nil
}

// MulHoursCeil multiplies an hourly rate by a number of hours and rounds the
// result up to the next cent.
func (m Money) MulHoursCeil(hours Hours) (Money, error) {
	if err := hours.Validate(); err != nil {
		return Money{}, err
	}
	rate, err := decimal.New(m.cents, 0)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("rate", err)
	}
	product, err := rate.Mul(hours.Decimal())
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("rate", err)
	}
	whole, _, ok := product.Ceil(0).Int64(0)
	if !ok {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("rate", fmt.Errorf("%s overflows int64", product))
	}
	return NewMoney(whole, m.currency)
}

// BasisPoints returns m * bps / 10000 rounded half up to the cent, the share
// used for platform fees.
func (m Money) BasisPoints(bps int64) (Money, error) {
	if bps < 0 || bps > 10000 {
		return Money{}, errs.NewValueIsOutOfRangeError("basisPoints", bps, 0, 10000)
	}
	share := (m.cents*bps + 5000) / 10000
	return NewMoney(share, m.currency)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().String(), m.currency)
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return nil
}
