package jobs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"booking/internal/core/application/usecases/commands"
	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/model/payout"
	"booking/internal/core/domain/services"
	"booking/internal/core/ports"
	"booking/internal/jobs"
	"booking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPayoutBatchJob(t *testing.T) {
	newJob := func(uow *uowStub) (*jobs.PayoutBatchJob,
		*useCaseMock[commands.CreatePayoutCommand, *payout.Payout],
		*useCaseMock[commands.SendPayoutCommand, *payout.Payout],
	) {
		create := new(useCaseMock[commands.CreatePayoutCommand, *payout.Payout])
		send := new(useCaseMock[commands.SendPayoutCommand, *payout.Payout])
		return jobs.NewPayoutBatchJob(uow, create, send, 50, zap.NewNop()), create, send
	}
	forPayout := func(id kernel.UUID) any {
		return mock.MatchedBy(func(cmd commands.SendPayoutCommand) bool { return cmd.PayoutID().IsEqual(id) })
	}

	t.Run("creates and sends one payout per pro", func(t *testing.T) {
		uow := newUOW()
		first, second := newPayout(t), newPayout(t)
		uow.payouts.On("ListByStatus", mock.Anything, payout.Created, 50).Return(nil, nil)
		uow.earnings.On("ListProsWithUnclaimed", mock.Anything, 50).
			Return([]kernel.UUID{first.ProProfileID(), second.ProProfileID()}, nil)
		job, create, send := newJob(uow)
		create.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreatePayoutCommand) bool {
			return cmd.ProProfileID().IsEqual(first.ProProfileID())
		})).Return(first, nil).Once()
		create.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreatePayoutCommand) bool {
			return cmd.ProProfileID().IsEqual(second.ProProfileID())
		})).Return(second, nil).Once()
		send.On("Handle", mock.Anything, forPayout(first.ID())).Return(first, nil).Once()
		send.On("Handle", mock.Anything, forPayout(second.ID())).Return(second, nil).Once()

		require.NoError(t, job.Run(t.Context()))

		create.AssertExpectations(t)
		send.AssertExpectations(t)
	})

	t.Run("retries payouts left in CREATED first", func(t *testing.T) {
		uow := newUOW()
		stuck := newPayout(t)
		uow.payouts.On("ListByStatus", mock.Anything, payout.Created, 50).Return([]*payout.Payout{stuck}, nil)
		uow.earnings.On("ListProsWithUnclaimed", mock.Anything, 50).Return(nil, nil)
		job, create, send := newJob(uow)
		send.On("Handle", mock.Anything, forPayout(stuck.ID())).Return(stuck, nil).Once()

		require.NoError(t, job.Run(t.Context()))

		send.AssertExpectations(t)
		create.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("expected refusals do not fail the run", func(t *testing.T) {
		uow := newUOW()
		suspended, raced, refused := kernel.NewUUID(), kernel.NewUUID(), newPayout(t)
		uow.payouts.On("ListByStatus", mock.Anything, payout.Created, 50).Return(nil, nil)
		uow.earnings.On("ListProsWithUnclaimed", mock.Anything, 50).
			Return([]kernel.UUID{suspended, raced, refused.ProProfileID()}, nil)
		job, create, send := newJob(uow)
		create.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreatePayoutCommand) bool {
			return cmd.ProProfileID().IsEqual(suspended)
		})).Return(nil, services.ErrProCannotReceivePayouts)
		create.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreatePayoutCommand) bool {
			return cmd.ProProfileID().IsEqual(raced)
		})).Return(nil, services.ErrNoUnclaimedEarnings)
		create.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreatePayoutCommand) bool {
			return cmd.ProProfileID().IsEqual(refused.ProProfileID())
		})).Return(refused, nil)
		send.On("Handle", mock.Anything, forPayout(refused.ID())).
			Return(nil, errs.NewPermanentProviderError("payouts-api", "send", errors.New("account closed")))

		assert.NoError(t, job.Run(t.Context()))
	})

	t.Run("unexpected failures are isolated and reported", func(t *testing.T) {
		uow := newUOW()
		broken, healthy := kernel.NewUUID(), newPayout(t)
		uow.payouts.On("ListByStatus", mock.Anything, payout.Created, 50).Return(nil, nil)
		uow.earnings.On("ListProsWithUnclaimed", mock.Anything, 50).
			Return([]kernel.UUID{broken, healthy.ProProfileID()}, nil)
		job, create, send := newJob(uow)
		dbDown := errors.New("connection reset")
		create.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreatePayoutCommand) bool {
			return cmd.ProProfileID().IsEqual(broken)
		})).Return(nil, dbDown)
		create.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreatePayoutCommand) bool {
			return cmd.ProProfileID().IsEqual(healthy.ProProfileID())
		})).Return(healthy, nil)
		send.On("Handle", mock.Anything, forPayout(healthy.ID())).Return(healthy, nil).Once()

		err := job.Run(t.Context())

		assert.ErrorIs(t, err, dbDown)
		send.AssertExpectations(t)
	})
}

func TestPaymentReconcileJob(t *testing.T) {
	statuses := []payment.Status{payment.Created, payment.RequiresAction, payment.Authorized}

	t.Run("syncs payments whose provider status moved", func(t *testing.T) {
		uow := newUOW()
		moved := authorizedPayment(t, "mercadopago", "111")
		unchanged := authorizedPayment(t, "mercadopago", "222")
		otherProvider := authorizedPayment(t, "stripe", "333")
		uow.payments.On("ListByStatus", mock.Anything, statuses, 100).
			Return([]*payment.Payment{moved, unchanged, otherProvider}, nil)
		gateway := new(gatewayMock)
		captured := brl(t, 24000)
		gateway.On("Fetch", mock.Anything, "111").Return(ports.ProviderPayment{
			Reference: "111", LocalID: moved.ID().String(), Status: payment.Captured,
			Authorized: &captured, Captured: &captured, UpdatedAt: now,
		}, nil)
		gateway.On("Fetch", mock.Anything, "222").Return(ports.ProviderPayment{
			Reference: "222", LocalID: unchanged.ID().String(), Status: payment.Authorized, UpdatedAt: now,
		}, nil)
		sync := new(useCaseMock[commands.SyncPaymentStatusCommand, *payment.Payment])
		sync.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.SyncPaymentStatusCommand) bool {
			return cmd.PaymentID().IsEqual(moved.ID()) && cmd.Event().Status == payment.Captured
		})).Return(moved, nil).Once()

		job := jobs.NewPaymentReconcileJob(uow, gateway, sync, 100, zap.NewNop())
		require.NoError(t, job.Run(t.Context()))

		sync.AssertExpectations(t)
		gateway.AssertNotCalled(t, "Fetch", mock.Anything, "333")
	})

	t.Run("provider outage is skipped until the next run", func(t *testing.T) {
		uow := newUOW()
		p := authorizedPayment(t, "mercadopago", "111")
		uow.payments.On("ListByStatus", mock.Anything, statuses, 100).Return([]*payment.Payment{p}, nil)
		gateway := new(gatewayMock)
		gateway.On("Fetch", mock.Anything, "111").
			Return(ports.ProviderPayment{}, errs.NewRetryableProviderError("mercadopago", "fetch", errors.New("503")))
		sync := new(useCaseMock[commands.SyncPaymentStatusCommand, *payment.Payment])

		job := jobs.NewPaymentReconcileJob(uow, gateway, sync, 100, zap.NewNop())

		assert.NoError(t, job.Run(t.Context()))
		sync.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("sync failures are reported", func(t *testing.T) {
		uow := newUOW()
		p := authorizedPayment(t, "mercadopago", "111")
		uow.payments.On("ListByStatus", mock.Anything, statuses, 100).Return([]*payment.Payment{p}, nil)
		gateway := new(gatewayMock)
		gateway.On("Fetch", mock.Anything, "111").Return(ports.ProviderPayment{
			Reference: "111", LocalID: p.ID().String(), Status: payment.Cancelled, UpdatedAt: now,
		}, nil)
		sync := new(useCaseMock[commands.SyncPaymentStatusCommand, *payment.Payment])
		sync.On("Handle", mock.Anything, mock.Anything).Return(nil, errs.NewConflictError("payment", p.ID().String()))

		job := jobs.NewPaymentReconcileJob(uow, gateway, sync, 100, zap.NewNop())

		assert.ErrorIs(t, job.Run(t.Context()), errs.ErrConflict)
	})
}

func TestAuditExportJob(t *testing.T) {
	t.Run("archives and stamps the batch", func(t *testing.T) {
		uow := newUOW()
		entries := []*audit.Entry{auditEntry(t), auditEntry(t)}
		uow.audit.On("ListUnexported", mock.Anything, 500).Return(entries, nil)
		uow.audit.On("MarkExported", mock.Anything, []kernel.UUID{entries[0].ID(), entries[1].ID()}, mock.Anything).
			Return(nil).Once()
		archive := new(archiveMock)
		archive.On("Put", mock.Anything, mock.Anything).Return(nil).Twice()

		job := jobs.NewAuditExportJob(uow, archive, 500, zap.NewNop())
		require.NoError(t, job.Run(t.Context()))

		uow.audit.AssertExpectations(t)
		archive.AssertExpectations(t)
	})

	t.Run("stops at the first archive failure and stamps what was written", func(t *testing.T) {
		uow := newUOW()
		entries := []*audit.Entry{auditEntry(t), auditEntry(t), auditEntry(t)}
		uow.audit.On("ListUnexported", mock.Anything, 500).Return(entries, nil)
		uow.audit.On("MarkExported", mock.Anything, []kernel.UUID{entries[0].ID()}, mock.Anything).Return(nil).Once()
		archive := new(archiveMock)
		throttled := errors.New("ProvisionedThroughputExceededException")
		archive.On("Put", mock.Anything, entries[0]).Return(nil).Once()
		archive.On("Put", mock.Anything, entries[1]).Return(throttled).Once()

		job := jobs.NewAuditExportJob(uow, archive, 500, zap.NewNop())

		assert.ErrorIs(t, job.Run(t.Context()), throttled)
		uow.audit.AssertExpectations(t)
		archive.AssertNotCalled(t, "Put", mock.Anything, entries[2])
	})

	t.Run("nothing to export", func(t *testing.T) {
		uow := newUOW()
		uow.audit.On("ListUnexported", mock.Anything, 500).Return(nil, nil)

		job := jobs.NewAuditExportJob(uow, new(archiveMock), 500, zap.NewNop())

		require.NoError(t, job.Run(t.Context()))
		uow.audit.AssertNotCalled(t, "MarkExported", mock.Anything, mock.Anything, mock.Anything)
	})
}

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestJobManager(t *testing.T) {
	t.Run("runs registered jobs on schedule", func(t *testing.T) {
		jm := jobs.NewJobManager(time.Second, zap.NewNop())
		job := &countingJob{err: errors.New("logged, not fatal")}
		require.NoError(t, jm.Register("* * * * * *", job))

		jm.StartAll()
		assert.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
		jm.StopAll(t.Context())
	})

	t.Run("empty schedule disables the job", func(t *testing.T) {
		jm := jobs.NewJobManager(time.Second, zap.NewNop())
		assert.NoError(t, jm.Register("", &countingJob{}))
	})

	t.Run("rejects a malformed schedule", func(t *testing.T) {
		jm := jobs.NewJobManager(time.Second, zap.NewNop())
		assert.Error(t, jm.Register("every minute", &countingJob{}))
	})
}
