package commands

import (
	"errors"
	"strings"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrRegisterProCommandIsNotConstructed = errors.New(
	"RegisterProCommand must be created via NewRegisterProCommand constructor",
)

// RegisterProCommand creates a professional profile awaiting approval.
type RegisterProCommand struct { //nolint:recvcheck //using for validation
	proProfileID     kernel.UUID
	actor            order.Actor
	userID           kernel.UUID
	displayName      string
	hourlyRate       kernel.Money
	payoutAccountRef string

	guard guard.ConstructorGuard
}

// NewRegisterProCommand builds the command. A PRO registers themselves; an admin
// may register on behalf of userID.
func NewRegisterProCommand(
	proProfileID kernel.UUID,
	actor order.Actor,
	userID kernel.UUID,
	displayName string,
	hourlyRate kernel.Money,
	payoutAccountRef string,
) (RegisterProCommand, error) {
	if proProfileID.Validate() != nil {
		return RegisterProCommand{}, errs.NewValueIsRequiredError("proProfileId")
	}
	switch actor.Role() {
	case order.RoleAdmin:
		if userID.Validate() != nil {
			return RegisterProCommand{}, errs.NewValueIsRequiredError("userId")
		}
	case order.RolePro:
		if userID.Validate() == nil && !userID.IsEqual(actor.ID()) {
			return RegisterProCommand{}, errs.NewForbiddenError(actor.IDString(), "proProfile", proProfileID.String())
		}
		userID = actor.ID()
	default:
		return RegisterProCommand{}, errs.NewForbiddenError(actor.IDString(), "proProfile", proProfileID.String())
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return RegisterProCommand{}, errs.NewValueIsRequiredError("displayName")
	}

	return RegisterProCommand{
		proProfileID:     proProfileID,
		actor:            actor,
		userID:           userID,
		displayName:      displayName,
		hourlyRate:       hourlyRate,
		payoutAccountRef: strings.TrimSpace(payoutAccountRef),
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterProCommand) Validate() error {
	return c.guard.Validate(ErrRegisterProCommandIsNotConstructed)
}

func (c RegisterProCommand) ProProfileID() kernel.UUID { return c.proProfileID }
func (c RegisterProCommand) Actor() order.Actor        { return c.actor }
func (c RegisterProCommand) UserID() kernel.UUID       { return c.userID }
func (c RegisterProCommand) DisplayName() string       { return c.displayName }
func (c RegisterProCommand) HourlyRate() kernel.Money  { return c.hourlyRate }
func (c RegisterProCommand) PayoutAccountRef() string  { return c.payoutAccountRef }
