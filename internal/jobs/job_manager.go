package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one unit of scheduled work. Run is called on every tick of its schedule.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	names  []string
}

// NewJobManager creates a manager whose schedules include a seconds field.
// Each run gets at most timeout before its context is cancelled.
func NewJobManager(timeout time.Duration, logger *zap.Logger) *JobManager {
	logger = logger.With(zap.String("component", "jobs"))
	ctx, cancel := context.WithCancel(context.Background())
	return &JobManager{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
		),
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register schedules job under spec. An empty spec leaves the job disabled.
func (jm *JobManager) Register(spec string, job Job) error {
	if spec == "" {
		jm.logger.Info("job disabled", zap.String("job", job.Name()))
		return nil
	}
	if _, err := jm.cron.AddFunc(spec, func() { jm.run(job) }); err != nil {
		return fmt.Errorf("failed to schedule %s job: %w", job.Name(), err)
	}

	jm.mu.Lock()
	jm.names = append(jm.names, job.Name())
	jm.mu.Unlock()
	return nil
}

func (jm *JobManager) run(job Job) {
	ctx := jm.ctx
	if jm.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, jm.timeout)
		defer cancel()
	}

	started := time.Now()
	err := job.Run(ctx)
	fields := []zap.Field{zap.String("job", job.Name()), zap.Duration("took", time.Since(started))}
	if err != nil {
		jm.logger.Error("job failed", append(fields, zap.Error(err))...)
		return
	}
	jm.logger.Debug("job finished", fields...)
}

// StartAll starts the scheduler.
func (jm *JobManager) StartAll() {
	jm.mu.Lock()
	names := append([]string(nil), jm.names...)
	jm.mu.Unlock()

	jm.cron.Start()
	jm.logger.Info("jobs started", zap.Strings("jobs", names))
}

// StopAll stops scheduling, cancels running jobs and waits for them until ctx is done.
func (jm *JobManager) StopAll(ctx context.Context) {
	done := jm.cron.Stop()
	jm.cancel()
	select {
	case <-done.Done():
		jm.logger.Info("jobs stopped")
	case <-ctx.Done():
		jm.logger.Warn("jobs still running at shutdown", zap.Error(ctx.Err()))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
