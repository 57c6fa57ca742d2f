package services

import (
	"errors"
	"fmt"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payout"
	"booking/internal/core/domain/model/proprofile"
	"booking/internal/pkg/errs"
)

var (
	// ErrNoUnclaimedEarnings is returned when a pro has nothing to pay out.
	ErrNoUnclaimedEarnings = errs.NewValueIsRequiredErrorWithCause("earnings", errors.New("no unclaimed earnings"))

	// ErrProCannotReceivePayouts is returned for suspended or unapproved pros, or pros without an account.
	ErrProCannotReceivePayouts = errs.NewValueIsInvalidErrorWithCause(
		"proProfileId", errors.New("pro cannot receive payouts"),
	)
)

// PayoutAssembler groups a professional's unclaimed earnings into a new payout.
//
// Business rules:
//   - The pro must be approved and have a payout account
//   - Earnings already claimed or belonging to other pros are skipped
//   - At least one earning must remain
//
// Example usage:
//
//	assembler := NewPayoutAssembler("payouts-api")
//	p, err := assembler.Assemble(pro, unclaimed, time.Now())
//	if errors.Is(err, ErrNoUnclaimedEarnings) {
//	    // nothing to pay
//	}
type PayoutAssembler struct {
	provider string
}

func NewPayoutAssembler(provider string) PayoutAssembler {
	return PayoutAssembler{provider: provider}
}

// Assemble builds the payout and claims the selected earnings in memory. The
// repository must persist the claim with a compare-and-swap.
func (a PayoutAssembler) Assemble(
	pro *proprofile.ProProfile,
	earnings []*payout.Earning,
	now time.Time,
) (*payout.Payout, error) {
	if err := pro.Validate(); err != nil {
		return nil, err
	}
	if !pro.CanReceivePayouts() {
		return nil, fmt.Errorf("%w: %s is %s", ErrProCannotReceivePayouts, pro.ID(), pro.Status())
	}

	selected := make([]*payout.Earning, 0, len(earnings))
	for _, e := range earnings {
		if e == nil || e.Validate() != nil || e.IsClaimed() || !e.ProProfileID().IsEqual(pro.ID()) {
			continue
		}
		selected = append(selected, e)
	}
	if len(selected) == 0 {
		return nil, ErrNoUnclaimedEarnings
	}

	return payout.NewPayout(kernel.NewUUID(), pro.ID(), a.provider, selected, now)
}
