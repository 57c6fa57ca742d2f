package cmd

import (
	"context"
	"fmt"

	bookinghttp "booking/internal/adapters/in/http"
	"booking/internal/adapters/out/auditarchive"
	"booking/internal/adapters/out/mercadopago"
	"booking/internal/adapters/out/payoutclient"
	"booking/internal/adapters/out/postgres"
	"booking/internal/adapters/out/redisnotify"
	"booking/internal/core/application/usecases/commands"
	"booking/internal/core/application/usecases/queries"
	"booking/internal/core/domain/services"
	"booking/internal/core/ports"
	"booking/internal/jobs"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory ports.UnitOfWorkFactory
	logger     *zap.Logger

	calculator     services.EarningCalculator
	paymentGateway *mercadopago.Gateway
	payoutGateway  *payoutclient.Client
	notifier       ports.StatusNotifier
	redisClient    *redis.Client
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *zap.Logger) (*CompositionRoot, error) {
	calculator, err := services.NewEarningCalculator(cfg.PlatformFeeBps)
	if err != nil {
		return nil, fmt.Errorf("earning calculator: %w", err)
	}
	paymentGateway, err := mercadopago.NewGateway(mercadopago.Config{
		AccessToken:     cfg.MercadoPagoAccessToken,
		CheckoutBaseURL: cfg.CheckoutBaseURL,
		NotificationURL: cfg.NotificationURL,
		Currency:        cfg.Currency,
		Mock:            cfg.PaymentGatewayMock,
	}, logger)
	if err != nil {
		return nil, err
	}
	payoutGateway, err := payoutclient.NewClient(payoutclient.Config{
		BaseURL: cfg.PayoutProviderURL,
		APIKey:  cfg.PayoutProviderToken,
		Timeout: cfg.PayoutProviderTimeout,
		Mock:    cfg.PayoutGatewayMock,
	}, logger)
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		cfg:            cfg,
		gormDB:         gormDB,
		uowFactory:     postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:         logger,
		calculator:     calculator,
		paymentGateway: paymentGateway,
		payoutGateway:  payoutGateway,
		notifier:       redisnotify.Noop{},
	}
	if cfg.RedisAddr != "" {
		c.redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		c.notifier = redisnotify.NewNotifier(c.redisClient, cfg.RedisStatusChannel, cfg.RedisStatusTTL)
	} else {
		logger.Info("REDIS_ADDR not set, order status fan-out disabled")
	}
	return c, nil
}

// Close releases connections opened by the root.
func (c *CompositionRoot) Close() error {
	if c.redisClient != nil {
		return c.redisClient.Close()
	}
	return nil
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.uowFactory, commands.SystemClock)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.uowFactory, c.notifier, c.logger, commands.SystemClock)
}

func (c *CompositionRoot) CreateForceOrderStatusCommandHandler() commands.ForceOrderStatusCommandHandler {
	return commands.NewForceOrderStatusCommandHandler(c.uowFactory, c.notifier, c.logger, commands.SystemClock)
}

func (c *CompositionRoot) CreateCreatePreauthCommandHandler() commands.CreatePreauthCommandHandler {
	return commands.NewCreatePreauthCommandHandler(
		c.uowFactory, c.paymentGateway, c.calculator, c.notifier, c.logger, commands.SystemClock)
}

func (c *CompositionRoot) CreateCaptureOrderCommandHandler() commands.CaptureOrderCommandHandler {
	return commands.NewCaptureOrderCommandHandler(
		c.uowFactory, c.paymentGateway, c.calculator, c.notifier, c.logger, commands.SystemClock)
}

func (c *CompositionRoot) CreateSyncPaymentStatusCommandHandler() commands.SyncPaymentStatusCommandHandler {
	return commands.NewSyncPaymentStatusCommandHandler(
		c.uowFactory, c.calculator, c.notifier, c.logger, commands.SystemClock)
}

func (c *CompositionRoot) CreateRefundPaymentCommandHandler() commands.RefundPaymentCommandHandler {
	return commands.NewRefundPaymentCommandHandler(c.uowFactory, c.paymentGateway, commands.SystemClock)
}

func (c *CompositionRoot) CreateCreatePayoutCommandHandler() commands.CreatePayoutCommandHandler {
	return commands.NewCreatePayoutCommandHandler(
		c.uowFactory, services.NewPayoutAssembler(c.payoutGateway.Name()), commands.SystemClock)
}

func (c *CompositionRoot) CreateSendPayoutCommandHandler() commands.SendPayoutCommandHandler {
	return commands.NewSendPayoutCommandHandler(c.uowFactory, c.payoutGateway, commands.SystemClock)
}

func (c *CompositionRoot) CreateResendPayoutCommandHandler() commands.ResendPayoutCommandHandler {
	return commands.NewResendPayoutCommandHandler(c.uowFactory, c.payoutGateway, commands.SystemClock)
}

func (c *CompositionRoot) CreateSyncPayoutStatusCommandHandler() commands.SyncPayoutStatusCommandHandler {
	return commands.NewSyncPayoutStatusCommandHandler(c.uowFactory, commands.SystemClock)
}

func (c *CompositionRoot) CreateRegisterProCommandHandler() commands.RegisterProCommandHandler {
	return commands.NewRegisterProCommandHandler(c.uowFactory, commands.SystemClock)
}

func (c *CompositionRoot) CreateModerateProCommandHandler() commands.ModerateProCommandHandler {
	return commands.NewModerateProCommandHandler(c.uowFactory, commands.SystemClock)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateIsChatOpenQueryHandler() queries.IsChatOpenQueryHandler {
	return queries.NewIsChatOpenQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAuditTrailQueryHandler() queries.GetAuditTrailQueryHandler {
	return queries.NewGetAuditTrailQueryHandler(c.gormDB)
}

// CreateHTTPServer wires every use case into the HTTP adapter.
func (c *CompositionRoot) CreateHTTPServer() *bookinghttp.Server {
	handlers := bookinghttp.Handlers{
		CreateOrder:       c.CreateCreateOrderCommandHandler(),
		TransitionOrder:   c.CreateTransitionOrderCommandHandler(),
		ForceOrderStatus:  c.CreateForceOrderStatusCommandHandler(),
		CreatePreauth:     c.CreateCreatePreauthCommandHandler(),
		CaptureOrder:      c.CreateCaptureOrderCommandHandler(),
		SyncPaymentStatus: c.CreateSyncPaymentStatusCommandHandler(),
		RefundPayment:     c.CreateRefundPaymentCommandHandler(),
		CreatePayout:      c.CreateCreatePayoutCommandHandler(),
		SendPayout:        c.CreateSendPayoutCommandHandler(),
		ResendPayout:      c.CreateResendPayoutCommandHandler(),
		SyncPayoutStatus:  c.CreateSyncPayoutStatusCommandHandler(),
		RegisterPro:       c.CreateRegisterProCommandHandler(),
		ModeratePro:       c.CreateModerateProCommandHandler(),
		GetOrder:          c.CreateGetOrderQueryHandler(),
		IsChatOpen:        c.CreateIsChatOpenQueryHandler(),
		GetAuditTrail:     c.CreateGetAuditTrailQueryHandler(),
	}
	verifier := mercadopago.NewSignatureVerifier(c.cfg.MercadoPagoWebhookSecret, c.cfg.WebhookTolerance)
	return bookinghttp.NewServer(handlers, c.paymentGateway, verifier, c.cfg.Currency, c.logger)
}

// CreateJobManager registers every background job on its configured schedule.
func (c *CompositionRoot) CreateJobManager(ctx context.Context) (*jobs.JobManager, error) {
	jm := jobs.NewJobManager(c.cfg.JobTimeout, c.logger)

	payoutBatch := jobs.NewPayoutBatchJob(c.uowFactory,
		c.CreateCreatePayoutCommandHandler(), c.CreateSendPayoutCommandHandler(), c.cfg.JobBatchSize, c.logger)
	if err := jm.Register(c.cfg.PayoutBatchCron, payoutBatch); err != nil {
		return nil, err
	}

	reconcile := jobs.NewPaymentReconcileJob(c.uowFactory,
		c.paymentGateway, c.CreateSyncPaymentStatusCommandHandler(), c.cfg.JobBatchSize, c.logger)
	if err := jm.Register(c.cfg.PaymentReconcileCron, reconcile); err != nil {
		return nil, err
	}

	if c.cfg.AuditExportCron != "" {
		client, err := auditarchive.NewClient(ctx, auditarchive.Config{
			Region:          c.cfg.AWSRegion,
			Endpoint:        c.cfg.DynamoDBEndpoint,
			AccessKeyID:     c.cfg.AWSAccessKeyID,
			SecretAccessKey: c.cfg.AWSSecretAccessKey,
			Table:           c.cfg.AuditArchiveTable,
		})
		if err != nil {
			return nil, err
		}
		archive := auditarchive.NewArchive(client, c.cfg.AuditArchiveTable)
		export := jobs.NewAuditExportJob(c.uowFactory, archive, c.cfg.JobBatchSize, c.logger)
		if err := jm.Register(c.cfg.AuditExportCron, export); err != nil {
			return nil, err
		}
	}
	return jm, nil
}
