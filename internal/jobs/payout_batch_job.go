package jobs

import (
	"context"
	"errors"

	"booking/internal/core/application/usecases/commands"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payout"
	"booking/internal/core/domain/services"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"

	"go.uber.org/zap"
)

type useCase[In, Out any] interface {
	Handle(ctx context.Context, in In) (Out, error)
}

// PayoutBatchJob pays out every pro with unclaimed earnings.
//
// Each run first retries payouts left in CREATED by an earlier run (provider
// unavailable, process stopped between create and send), then creates and sends
// one payout per pro. Failures are isolated per pro.
type PayoutBatchJob struct {
	uowFactory ports.UnitOfWorkFactory
	create     useCase[commands.CreatePayoutCommand, *payout.Payout]
	send       useCase[commands.SendPayoutCommand, *payout.Payout]
	batchSize  int
	logger     *zap.Logger
}

func NewPayoutBatchJob(
	uowFactory ports.UnitOfWorkFactory,
	create useCase[commands.CreatePayoutCommand, *payout.Payout],
	send useCase[commands.SendPayoutCommand, *payout.Payout],
	batchSize int,
	logger *zap.Logger,
) *PayoutBatchJob {
	return &PayoutBatchJob{
		uowFactory: uowFactory,
		create:     create,
		send:       send,
		batchSize:  batchSize,
		logger:     logger.With(zap.String("component", "payout_batch_job")),
	}
}

func (j *PayoutBatchJob) Name() string { return "payout_batch" }

func (j *PayoutBatchJob) Run(ctx context.Context) error {
	uow := j.uowFactory.Create()

	pending, err := uow.PayoutRepository().ListByStatus(ctx, payout.Created, j.batchSize)
	if err != nil {
		return err
	}
	var failures []error
	for _, p := range pending {
		if err := j.sendPayout(ctx, p.ID()); err != nil {
			failures = append(failures, err)
		}
	}

	proIDs, err := uow.EarningRepository().ListProsWithUnclaimed(ctx, j.batchSize)
	if err != nil {
		return errors.Join(append(failures, err)...)
	}
	for _, proID := range proIDs {
		if err := j.payOut(ctx, proID); err != nil {
			failures = append(failures, err)
		}
	}

	if len(pending) > 0 || len(proIDs) > 0 {
		j.logger.Info("payout batch done",
			zap.Int("resent", len(pending)),
			zap.Int("pros", len(proIDs)),
			zap.Int("failed", len(failures)),
		)
	}
	return errors.Join(failures...)
}

func (j *PayoutBatchJob) payOut(ctx context.Context, proID kernel.UUID) error {
	cmd, err := commands.NewCreatePayoutCommand(proID, order.SystemActor())
	if err != nil {
		return err
	}
	p, err := j.create.Handle(ctx, cmd)
	switch {
	case errors.Is(err, services.ErrNoUnclaimedEarnings):
		return nil
	case errors.Is(err, services.ErrProCannotReceivePayouts):
		j.logger.Info("pro skipped", zap.Stringer("proProfileId", proID), zap.Error(err))
		return nil
	case err != nil:
		return err
	}
	return j.sendPayout(ctx, p.ID())
}

// sendPayout reports only unexpected errors. Provider refusals are already
// recorded on the payout and retryable errors are picked up by the next run.
func (j *PayoutBatchJob) sendPayout(ctx context.Context, payoutID kernel.UUID) error {
	cmd, err := commands.NewSendPayoutCommand(payoutID, order.SystemActor())
	if err != nil {
		return err
	}
	_, err = j.send.Handle(ctx, cmd)
	if err == nil {
		return nil
	}

	fields := []zap.Field{zap.Stringer("payoutId", payoutID), zap.Error(err)}
	switch {
	case errors.Is(err, errs.ErrProviderRetryable):
		j.logger.Warn("payout send deferred", fields...)
		return nil
	case errors.Is(err, errs.ErrProvider), errors.Is(err, services.ErrProCannotReceivePayouts):
		j.logger.Warn("payout send refused", fields...)
		return nil
	}
	return err
}
