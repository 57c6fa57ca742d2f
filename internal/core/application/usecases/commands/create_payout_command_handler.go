package commands

import (
	"context"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/payout"
	"booking/internal/core/domain/services"
	"booking/internal/core/ports"
)

// CreatePayoutCommandHandler claims every unclaimed earning of a pro into a new
// CREATED payout. The claim is a compare-and-swap on payout_id IS NULL in the
// repository, so two concurrent calls cannot both take the same earning: the
// loser gets a ConflictError and nothing is written.
type CreatePayoutCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	assembler  services.PayoutAssembler
	clock      Clock
}

func NewCreatePayoutCommandHandler(
	uowFactory ports.UnitOfWorkFactory,
	assembler services.PayoutAssembler,
	clock Clock,
) CreatePayoutCommandHandler {
	return CreatePayoutCommandHandler{uowFactory: uowFactory, assembler: assembler, clock: clock}
}

func (h CreatePayoutCommandHandler) Handle(ctx context.Context, cmd CreatePayoutCommand) (*payout.Payout, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	pro, err := uow.ProProfileRepository().Get(ctx, cmd.ProProfileID())
	if err != nil {
		return nil, err
	}
	unclaimed, err := uow.EarningRepository().ListUnclaimed(ctx, pro.ID())
	if err != nil {
		return nil, err
	}

	now := h.clock()
	p, err := h.assembler.Assemble(pro, unclaimed, now)
	if err != nil {
		return nil, err
	}

	if err = uow.PayoutRepository().Add(ctx, p); err != nil {
		return nil, err
	}

	record := actorRecord(cmd.Actor(), audit.PayoutCreated, audit.EntityPayout, p.ID().String())
	record.Metadata["proProfileId"] = pro.ID().String()
	record.Metadata["amountCents"] = p.Amount().Cents()
	record.Metadata["earnings"] = len(p.Earnings())
	record.Metadata[audit.KeyNewStatus] = p.Status().String()
	if err = appendAudit(ctx, uow, record, now); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}
