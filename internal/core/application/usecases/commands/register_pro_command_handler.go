package commands

import (
	"context"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/proprofile"
	"booking/internal/core/ports"
)

// RegisterProCommandHandler stores a new PENDING_APPROVAL profile.
type RegisterProCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	clock      Clock
}

func NewRegisterProCommandHandler(uowFactory ports.UnitOfWorkFactory, clock Clock) RegisterProCommandHandler {
	return RegisterProCommandHandler{uowFactory: uowFactory, clock: clock}
}

func (h RegisterProCommandHandler) Handle(ctx context.Context, cmd RegisterProCommand) (*proprofile.ProProfile, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.clock()
	pro, err := proprofile.NewProProfile(
		cmd.ProProfileID(), cmd.UserID(), cmd.DisplayName(), cmd.HourlyRate(), cmd.PayoutAccountRef(), now,
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.ProProfileRepository().Add(ctx, pro); err != nil {
		return nil, err
	}

	record := actorRecord(cmd.Actor(), audit.ProRegistered, audit.EntityProProfile, pro.ID().String())
	record.Metadata["userId"] = pro.UserID().String()
	record.Metadata["hourlyRateCents"] = pro.HourlyRate().Cents()
	record.Metadata[audit.KeyNewStatus] = pro.Status().String()
	if err = appendAudit(ctx, uow, record, now); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return pro, nil
}
