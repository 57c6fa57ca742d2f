package commands

import (
	"context"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/proprofile"
	"booking/internal/core/ports"
)

// ModerateProCommandHandler applies an admin moderation action and records one
// PRO_APPROVED, PRO_SUSPENDED or PRO_UNSUSPENDED entry.
type ModerateProCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	clock      Clock
}

func NewModerateProCommandHandler(uowFactory ports.UnitOfWorkFactory, clock Clock) ModerateProCommandHandler {
	return ModerateProCommandHandler{uowFactory: uowFactory, clock: clock}
}

func (h ModerateProCommandHandler) Handle(ctx context.Context, cmd ModerateProCommand) (*proprofile.ProProfile, error) {
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

	now := h.clock()
	previous := pro.Status()
	var eventType audit.EventType
	switch cmd.Action() {
	case ModerationApprove:
		eventType, err = audit.ProApproved, pro.Approve(now)
	case ModerationSuspend:
		eventType, err = audit.ProSuspended, pro.Suspend(cmd.Reason(), now)
	case ModerationUnsuspend:
		eventType, err = audit.ProUnsuspended, pro.Unsuspend(now)
	}
	if err != nil {
		return nil, err
	}

	if err = uow.ProProfileRepository().Update(ctx, pro); err != nil {
		return nil, err
	}

	record := statusRecord(cmd.Admin(), eventType, audit.EntityProProfile, pro.ID().String(),
		previous.String(), pro.Status().String())
	record.Action = cmd.Action().String()
	if cmd.Reason() != "" {
		record.Metadata["reason"] = cmd.Reason()
	}
	if err = appendAudit(ctx, uow, record, now); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return pro, nil
}
