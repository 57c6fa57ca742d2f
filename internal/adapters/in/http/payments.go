package http

import (
	"errors"
	"net/http"

	"booking/internal/adapters/out/mercadopago"
	"booking/internal/core/application/usecases/commands"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payment"
	"booking/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreatePreauth handles POST /api/v1/orders/{orderId}/preauth.
func (s *Server) CreatePreauth(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(err)
	}
	body, err := bindBody[CardRequest](c, true)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreatePreauthCommand(orderID, actor, commands.CardDetails{
		Token:           body.Token,
		PaymentMethodID: body.PaymentMethodID,
		PayerEmail:      body.PayerEmail,
	})
	if err != nil {
		return err
	}
	p, err := s.handlers.CreatePreauth.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paymentResponse(p))
}

// CaptureOrder handles POST /api/v1/orders/{orderId}/capture.
func (s *Server) CaptureOrder(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(err)
	}

	cmd, err := commands.NewCaptureOrderCommand(orderID, actor)
	if err != nil {
		return err
	}
	p, err := s.handlers.CaptureOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paymentResponse(p))
}

// SyncPaymentStatus handles POST /api/v1/payments/{paymentId}/events.
func (s *Server) SyncPaymentStatus(c echo.Context) error {
	paymentID, err := pathUUID(c, "paymentId")
	if err != nil {
		return badRequest(err)
	}
	body, err := bindBody[PaymentEventRequest](c, false)
	if err != nil {
		return err
	}

	status, err := payment.ParseStatus(body.Status)
	if err != nil {
		return err
	}
	event := payment.Event{
		ID:            body.EventID,
		Status:        status,
		Reference:     body.Reference,
		FailureReason: body.FailureReason,
	}
	if event.Authorized, err = s.optionalMoney(body.AuthorizedCents); err != nil {
		return err
	}
	if event.Captured, err = s.optionalMoney(body.CapturedCents); err != nil {
		return err
	}
	if event.Refunded, err = s.optionalMoney(body.RefundedCents); err != nil {
		return err
	}

	cmd, err := commands.NewSyncPaymentStatusCommand(paymentID, event)
	if err != nil {
		return err
	}
	p, err := s.handlers.SyncPaymentStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paymentResponse(p))
}

// RefundPayment handles POST /api/v1/admin/payments/{paymentId}/refund.
func (s *Server) RefundPayment(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	paymentID, err := pathUUID(c, "paymentId")
	if err != nil {
		return badRequest(err)
	}
	body, err := bindBody[ReasonRequest](c, true)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRefundPaymentCommand(paymentID, actor, body.Reason)
	if err != nil {
		return err
	}
	p, err := s.handlers.RefundPayment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paymentResponse(p))
}

// MercadoPagoWebhook handles POST /webhooks/mercadopago. The notification only
// names the payment; its state is always fetched from the provider.
func (s *Server) MercadoPagoWebhook(c echo.Context) error {
	var n mercadopago.Notification
	if err := (&echo.DefaultBinder{}).BindBody(c, &n); err != nil {
		return badRequest(err)
	}
	dataID := c.QueryParam("data.id")
	if dataID == "" {
		dataID = n.Data.ID
	}
	if dataID == "" {
		return badRequest(errs.NewValueIsRequiredError("data.id"))
	}

	req := c.Request()
	if err := s.verifier.Verify(req.Header.Get("x-signature"), req.Header.Get("x-request-id"), dataID, s.clock()); err != nil {
		s.logger.Warn("rejected webhook", zap.String("dataId", dataID), zap.Error(err))
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	if !n.IsPayment() {
		return c.NoContent(http.StatusOK)
	}

	pp, err := s.gateway.Fetch(req.Context(), dataID)
	if err != nil {
		return err
	}
	cmd, err := commands.NewSyncPaymentStatusCommandFromProvider(s.gateway.Name(), pp)
	if err != nil {
		return err
	}
	p, err := s.handlers.SyncPaymentStatus.Handle(req.Context(), cmd)
	if errors.Is(err, errs.ErrObjectNotFound) {
		s.logger.Info("webhook for unknown payment", zap.String("dataId", dataID))
		return c.NoContent(http.StatusOK)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paymentResponse(p))
}

func (s *Server) optionalMoney(amount *int64) (*kernel.Money, error) {
	if amount == nil {
		return nil, nil
	}
	m, err := kernel.NewMoney(*amount, s.currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
