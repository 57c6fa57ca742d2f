package http

import (
	"net/http"

	"booking/internal/core/application/usecases/commands"
	"booking/internal/core/domain/model/payout"

	"github.com/labstack/echo/v4"
)

// CreatePayout handles POST /api/v1/pros/{proProfileId}/payouts.
func (s *Server) CreatePayout(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	proID, err := pathUUID(c, "proProfileId")
	if err != nil {
		return badRequest(err)
	}

	cmd, err := commands.NewCreatePayoutCommand(proID, actor)
	if err != nil {
		return err
	}
	p, err := s.handlers.CreatePayout.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, payoutResponse(p))
}

// SendPayout handles POST /api/v1/payouts/{payoutId}/send.
func (s *Server) SendPayout(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	payoutID, err := pathUUID(c, "payoutId")
	if err != nil {
		return badRequest(err)
	}

	cmd, err := commands.NewSendPayoutCommand(payoutID, actor)
	if err != nil {
		return err
	}
	p, err := s.handlers.SendPayout.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payoutResponse(p))
}

// ResendPayout handles POST /api/v1/admin/payouts/{payoutId}/resend.
func (s *Server) ResendPayout(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	payoutID, err := pathUUID(c, "payoutId")
	if err != nil {
		return badRequest(err)
	}
	body, err := bindBody[ReasonRequest](c, true)
	if err != nil {
		return err
	}

	cmd, err := commands.NewResendPayoutCommand(payoutID, actor, body.Reason)
	if err != nil {
		return err
	}
	p, err := s.handlers.ResendPayout.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payoutResponse(p))
}

// SyncPayoutStatus handles POST /api/v1/payouts/{payoutId}/events.
func (s *Server) SyncPayoutStatus(c echo.Context) error {
	payoutID, err := pathUUID(c, "payoutId")
	if err != nil {
		return badRequest(err)
	}
	body, err := bindBody[PayoutEventRequest](c, false)
	if err != nil {
		return err
	}
	status, err := payout.ParseStatus(body.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewSyncPayoutStatusCommand(payoutID, payout.Event{
		ID:            body.EventID,
		Status:        status,
		FailureReason: body.FailureReason,
	})
	if err != nil {
		return err
	}
	p, err := s.handlers.SyncPayoutStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payoutResponse(p))
}
