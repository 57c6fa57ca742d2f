package jobs

import (
	"context"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/ports"

	"go.uber.org/zap"
)

// AuditExportJob copies audit entries to the archive, oldest first, and stamps
// the ones that made it. A batch stops at the first archive failure.
type AuditExportJob struct {
	uowFactory ports.UnitOfWorkFactory
	archive    ports.AuditArchive
	batchSize  int
	clock      func() time.Time
	logger     *zap.Logger
}

func NewAuditExportJob(
	uowFactory ports.UnitOfWorkFactory,
	archive ports.AuditArchive,
	batchSize int,
	logger *zap.Logger,
) *AuditExportJob {
	return &AuditExportJob{
		uowFactory: uowFactory,
		archive:    archive,
		batchSize:  batchSize,
		clock:      time.Now,
		logger:     logger.With(zap.String("component", "audit_export_job")),
	}
}

func (j *AuditExportJob) Name() string { return "audit_export" }

func (j *AuditExportJob) Run(ctx context.Context) error {
	repo := j.uowFactory.Create().AuditRepository()

	entries, err := repo.ListUnexported(ctx, j.batchSize)
	if err != nil {
		return err
	}

	exported := make([]kernel.UUID, 0, len(entries))
	var putErr error
	for _, e := range entries {
		if putErr = j.archive.Put(ctx, e); putErr != nil {
			break
		}
		exported = append(exported, e.ID())
	}

	if len(exported) > 0 {
		if err := repo.MarkExported(ctx, exported, j.clock()); err != nil {
			return err
		}
		j.logger.Info("audit entries exported", zap.Int("count", len(exported)))
	}
	return putErr
}
