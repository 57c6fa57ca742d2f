package commands

import (
	"context"
	"errors"
	"fmt"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payout"
	"booking/internal/core/domain/services"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"
)

// SendPayoutCommandHandler sends a payout through the payout gateway.
//
// Outcomes:
//   - success: SENT with the provider reference, one PAYOUT_SENT entry
//   - retryable error: returned, payout untouched
//   - permanent error: FAILED with one PAYOUT_FAILED entry; earnings stay on the payout
type SendPayoutCommandHandler struct {
	sender payoutSender
}

func NewSendPayoutCommandHandler(
	uowFactory ports.UnitOfWorkFactory,
	gateway ports.PayoutGateway,
	clock Clock,
) SendPayoutCommandHandler {
	return SendPayoutCommandHandler{sender: payoutSender{uowFactory: uowFactory, gateway: gateway, clock: clock}}
}

func (h SendPayoutCommandHandler) Handle(ctx context.Context, cmd SendPayoutCommand) (*payout.Payout, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.sender.send(ctx, cmd.PayoutID(), cmd.Actor(), nil)
}

// ResendPayoutCommandHandler retries a FAILED payout on an admin's behalf.
// PAYOUT_RESENT is committed before the gateway is called, so the admin action
// stays on record whatever the provider answers.
type ResendPayoutCommandHandler struct {
	sender payoutSender
}

func NewResendPayoutCommandHandler(
	uowFactory ports.UnitOfWorkFactory,
	gateway ports.PayoutGateway,
	clock Clock,
) ResendPayoutCommandHandler {
	return ResendPayoutCommandHandler{sender: payoutSender{uowFactory: uowFactory, gateway: gateway, clock: clock}}
}

func (h ResendPayoutCommandHandler) Handle(ctx context.Context, cmd ResendPayoutCommand) (*payout.Payout, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.sender.send(ctx, cmd.PayoutID(), cmd.Admin(), &cmd)
}

type payoutSender struct {
	uowFactory ports.UnitOfWorkFactory
	gateway    ports.PayoutGateway
	clock      Clock
}

func (s payoutSender) send(
	ctx context.Context,
	payoutID kernel.UUID,
	actor order.Actor,
	resend *ResendPayoutCommand,
) (*payout.Payout, error) {
	p, transfer, err := s.prepare(ctx, payoutID, resend != nil)
	if err != nil {
		return nil, err
	}
	if resend != nil {
		if err = s.recordResend(ctx, p, *resend); err != nil {
			return nil, err
		}
	}

	reference, err := s.gateway.Send(ctx, transfer)
	if err != nil {
		var providerErr *errs.ProviderError
		if !errors.As(err, &providerErr) || providerErr.Retryable {
			return nil, err
		}
		if recordErr := s.recordFailure(ctx, p.ID(), actor, providerErr); recordErr != nil {
			return nil, errors.Join(err, recordErr)
		}
		return nil, err
	}

	return s.recordSent(ctx, p.ID(), actor, reference)
}

func (s payoutSender) prepare(ctx context.Context, payoutID kernel.UUID, resend bool) (*payout.Payout, ports.PayoutTransfer, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, ports.PayoutTransfer{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	p, err := uow.PayoutRepository().Get(ctx, payoutID)
	if err != nil {
		return nil, ports.PayoutTransfer{}, err
	}
	if !p.Status().CanSend() || (resend && p.Status() != payout.Failed) {
		return nil, ports.PayoutTransfer{}, errs.NewInvalidTransitionError(
			"payout", p.Status().String(), payout.Sent.String(), "",
		)
	}

	pro, err := uow.ProProfileRepository().Get(ctx, p.ProProfileID())
	if err != nil {
		return nil, ports.PayoutTransfer{}, err
	}
	if !pro.CanReceivePayouts() {
		return nil, ports.PayoutTransfer{}, fmt.Errorf("%w: %s is %s", services.ErrProCannotReceivePayouts, pro.ID(), pro.Status())
	}

	return p, ports.PayoutTransfer{
		PayoutID:       p.ID(),
		ProProfileID:   pro.ID(),
		AccountRef:     pro.PayoutAccountRef(),
		Amount:         p.Amount(),
		IdempotencyKey: fmt.Sprintf("%s:%d", p.ID(), p.Attempts()+1),
	}, nil
}

func (s payoutSender) recordSent(
	ctx context.Context,
	payoutID kernel.UUID,
	actor order.Actor,
	reference string,
) (*payout.Payout, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	p, err := uow.PayoutRepository().Get(ctx, payoutID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	previous := p.Status()
	if err = p.MarkSent(reference, now); err != nil {
		return nil, err
	}
	if err = uow.PayoutRepository().Update(ctx, p); err != nil {
		return nil, err
	}

	record := statusRecord(actor, audit.PayoutSent, audit.EntityPayout, p.ID().String(), previous.String(), p.Status().String())
	record.Metadata["providerReference"] = reference
	record.Metadata["attempt"] = p.Attempts()
	if err = appendAudit(ctx, uow, record, now); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (s payoutSender) recordResend(ctx context.Context, p *payout.Payout, cmd ResendPayoutCommand) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	record := actorRecord(cmd.Admin(), audit.PayoutResent, audit.EntityPayout, p.ID().String())
	record.Action = "resend"
	record.Metadata[audit.KeyPreviousStatus] = p.Status().String()
	record.Metadata["attempt"] = p.Attempts() + 1
	if cmd.Reason() != "" {
		record.Metadata["reason"] = cmd.Reason()
	}
	if err := appendAudit(ctx, uow, record, s.clock()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (s payoutSender) recordFailure(ctx context.Context, payoutID kernel.UUID, actor order.Actor, cause *errs.ProviderError) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	p, err := uow.PayoutRepository().Get(ctx, payoutID)
	if err != nil {
		return err
	}

	reason := cause.Operation
	if cause.Cause != nil {
		reason = cause.Cause.Error()
	}

	now := s.clock()
	previous := p.Status()
	if err = p.FailSend(reason, now); err != nil {
		return err
	}
	if err = uow.PayoutRepository().Update(ctx, p); err != nil {
		return err
	}

	record := statusRecord(actor, audit.PayoutFailed, audit.EntityPayout, p.ID().String(), previous.String(), p.Status().String())
	record.Metadata["reason"] = reason
	record.Metadata["attempt"] = p.Attempts()
	if err = appendAudit(ctx, uow, record, now); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
