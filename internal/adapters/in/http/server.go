package http

import (
	"context"
	"net/http"
	"time"

	"booking/internal/core/application/usecases/commands"
	"booking/internal/core/application/usecases/queries"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/model/payout"
	"booking/internal/core/domain/model/proprofile"
	"booking/internal/core/ports"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UseCase is the shape shared by every command and query handler.
type UseCase[In, Out any] interface {
	Handle(ctx context.Context, in In) (Out, error)
}

// Handlers groups the application use cases served over HTTP.
type Handlers struct {
	CreateOrder      UseCase[commands.CreateOrderCommand, *order.Order]
	TransitionOrder  UseCase[commands.TransitionOrderCommand, *order.Order]
	ForceOrderStatus UseCase[commands.ForceOrderStatusCommand, *order.Order]

	CreatePreauth     UseCase[commands.CreatePreauthCommand, *payment.Payment]
	CaptureOrder      UseCase[commands.CaptureOrderCommand, *payment.Payment]
	SyncPaymentStatus UseCase[commands.SyncPaymentStatusCommand, *payment.Payment]
	RefundPayment     UseCase[commands.RefundPaymentCommand, *payment.Payment]

	CreatePayout     UseCase[commands.CreatePayoutCommand, *payout.Payout]
	SendPayout       UseCase[commands.SendPayoutCommand, *payout.Payout]
	ResendPayout     UseCase[commands.ResendPayoutCommand, *payout.Payout]
	SyncPayoutStatus UseCase[commands.SyncPayoutStatusCommand, *payout.Payout]

	RegisterPro UseCase[commands.RegisterProCommand, *proprofile.ProProfile]
	ModeratePro UseCase[commands.ModerateProCommand, *proprofile.ProProfile]

	GetOrder      UseCase[queries.GetOrderQuery, *queries.GetOrderQueryResponse]
	IsChatOpen    UseCase[queries.IsChatOpenQuery, queries.IsChatOpenQueryResponse]
	GetAuditTrail UseCase[queries.GetAuditTrailQuery, []queries.AuditTrailEntry]
}

// WebhookVerifier authenticates provider notifications.
type WebhookVerifier interface {
	Verify(header, requestID, dataID string, now time.Time) error
}

// Server holds the use cases and adapts them to echo handlers.
type Server struct {
	handlers Handlers
	gateway  ports.PaymentGateway
	verifier WebhookVerifier
	currency string
	logger   *zap.Logger
	clock    func() time.Time
}

// NewServer creates the HTTP server. gateway and verifier back the Mercado Pago
// webhook; currency prices new orders and pro rates.
func NewServer(
	handlers Handlers,
	gateway ports.PaymentGateway,
	verifier WebhookVerifier,
	currency string,
	logger *zap.Logger,
) *Server {
	return &Server{
		handlers: handlers,
		gateway:  gateway,
		verifier: verifier,
		currency: currency,
		logger:   logger.With(zap.String("component", "http")),
		clock:    time.Now,
	}
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

// bindBody decodes and validates the JSON body. An optional body may be absent.
func bindBody[T any](c echo.Context, optional bool) (T, error) {
	var body T
	if optional && c.Request().ContentLength == 0 {
		return body, nil
	}
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		return body, badRequest(err)
	}
	if err := c.Validate(&body); err != nil {
		return body, badRequest(err)
	}
	return body, nil
}
