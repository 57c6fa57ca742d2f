package commands

import (
	"errors"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrCreatePayoutCommandIsNotConstructed = errors.New(
	"CreatePayoutCommand must be created via NewCreatePayoutCommand constructor",
)

// CreatePayoutCommand groups a pro's unclaimed earnings into a payout.
type CreatePayoutCommand struct { //nolint:recvcheck //using for validation
	proProfileID kernel.UUID
	actor        order.Actor

	guard guard.ConstructorGuard
}

func NewCreatePayoutCommand(proProfileID kernel.UUID, actor order.Actor) (CreatePayoutCommand, error) {
	if proProfileID.Validate() != nil {
		return CreatePayoutCommand{}, errs.NewValueIsRequiredError("proProfileId")
	}
	if actor.Role() != order.RoleAdmin && actor.Role() != order.RoleSystem {
		return CreatePayoutCommand{}, errs.NewForbiddenError(actor.IDString(), "payout", proProfileID.String())
	}
	return CreatePayoutCommand{proProfileID: proProfileID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (c CreatePayoutCommand) Validate() error {
	return c.guard.Validate(ErrCreatePayoutCommandIsNotConstructed)
}

func (c CreatePayoutCommand) ProProfileID() kernel.UUID { return c.proProfileID }
func (c CreatePayoutCommand) Actor() order.Actor        { return c.actor }
