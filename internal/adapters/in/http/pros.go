package http

import (
	"net/http"

	"booking/internal/core/application/usecases/commands"
	"booking/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// RegisterPro handles POST /api/v1/pros.
func (s *Server) RegisterPro(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	body, err := bindBody[NewProRequest](c, false)
	if err != nil {
		return err
	}
	userID, err := optionalUUID(body.UserID, "userId")
	if err != nil {
		return badRequest(err)
	}
	rate, err := kernel.NewMoney(body.HourlyRateCents, s.currency)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRegisterProCommand(kernel.NewUUID(), actor, userID, body.DisplayName, rate, body.PayoutAccountRef)
	if err != nil {
		return err
	}
	pro, err := s.handlers.RegisterPro.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, proResponse(pro))
}

// ModeratePro handles POST /api/v1/admin/pros/{proProfileId}/{approve,suspend,unsuspend}.
func (s *Server) ModeratePro(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	proID, err := pathUUID(c, "proProfileId")
	if err != nil {
		return badRequest(err)
	}
	action, err := commands.ParseModerationAction(c.Param("action"))
	if err != nil {
		return badRequest(err)
	}
	body, err := bindBody[ReasonRequest](c, true)
	if err != nil {
		return err
	}

	cmd, err := commands.NewModerateProCommand(proID, action, actor, body.Reason)
	if err != nil {
		return err
	}
	pro, err := s.handlers.ModeratePro.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, proResponse(pro))
}
