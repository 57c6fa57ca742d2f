package jobs

import (
	"context"
	"errors"

	"booking/internal/core/application/usecases/commands"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"

	"go.uber.org/zap"
)

// reconciledStatuses are the payments whose provider state may still move on its own.
var reconciledStatuses = []payment.Status{payment.Created, payment.RequiresAction, payment.Authorized}

// PaymentReconcileJob re-reads open payments from the gateway and syncs any that
// moved without a webhook reaching us.
type PaymentReconcileJob struct {
	uowFactory ports.UnitOfWorkFactory
	gateway    ports.PaymentGateway
	sync       useCase[commands.SyncPaymentStatusCommand, *payment.Payment]
	batchSize  int
	logger     *zap.Logger
}

func NewPaymentReconcileJob(
	uowFactory ports.UnitOfWorkFactory,
	gateway ports.PaymentGateway,
	sync useCase[commands.SyncPaymentStatusCommand, *payment.Payment],
	batchSize int,
	logger *zap.Logger,
) *PaymentReconcileJob {
	return &PaymentReconcileJob{
		uowFactory: uowFactory,
		gateway:    gateway,
		sync:       sync,
		batchSize:  batchSize,
		logger:     logger.With(zap.String("component", "payment_reconcile_job")),
	}
}

func (j *PaymentReconcileJob) Name() string { return "payment_reconcile" }

func (j *PaymentReconcileJob) Run(ctx context.Context) error {
	payments, err := j.uowFactory.Create().PaymentRepository().ListByStatus(ctx, reconciledStatuses, j.batchSize)
	if err != nil {
		return err
	}

	var (
		failures []error
		synced   int
	)
	for _, p := range payments {
		changed, err := j.reconcile(ctx, p)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if changed {
			synced++
		}
	}
	if synced > 0 || len(failures) > 0 {
		j.logger.Info("payments reconciled",
			zap.Int("checked", len(payments)),
			zap.Int("synced", synced),
			zap.Int("failed", len(failures)),
		)
	}
	return errors.Join(failures...)
}

func (j *PaymentReconcileJob) reconcile(ctx context.Context, p *payment.Payment) (bool, error) {
	if p.Provider() != j.gateway.Name() || p.ProviderReference() == "" {
		return false, nil
	}

	pp, err := j.gateway.Fetch(ctx, p.ProviderReference())
	if errors.Is(err, errs.ErrProviderRetryable) {
		j.logger.Warn("provider unavailable", zap.Stringer("paymentId", p.ID()), zap.Error(err))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if pp.Status == p.Status() {
		return false, nil
	}

	cmd, err := commands.NewSyncPaymentStatusCommandFromProvider(j.gateway.Name(), pp)
	if err != nil {
		return false, err
	}
	if _, err := j.sync.Handle(ctx, cmd); err != nil {
		return false, err
	}
	return true, nil
}
