// Package jobs runs the periodic background work of the booking service on
// github.com/robfig/cron/v3 schedules (six fields, seconds first).
//
// # Available Jobs
//
//  1. PayoutBatchJob - sends payouts left in CREATED, then creates and sends a payout per pro with unclaimed earnings
//  2. PaymentReconcileJob - re-fetches CREATED, REQUIRES_ACTION and AUTHORIZED payments and syncs provider changes
//  3. AuditExportJob - copies unexported audit entries to the archive
//
// # Usage
//
//	jm := jobs.NewJobManager(time.Minute, logger)
//	if err := jm.Register(cfg.PayoutBatchCron, jobs.NewPayoutBatchJob(uowFactory, create, send, 100, logger)); err != nil {
//		return err
//	}
//	jm.StartAll()
//	defer jm.StopAll(shutdownCtx)
//
// # Error Handling
//
// Jobs isolate failures per item and return them joined; the manager logs them.
// Provider refusals and retryable provider errors are expected and only logged
// by the job. A run that is still going when its next tick fires is skipped.
package jobs
