package http

import (
	"net/http"
	"strconv"

	"booking/internal/core/application/usecases/commands"
	"booking/internal/core/application/usecases/queries"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	body, err := bindBody[NewOrderRequest](c, false)
	if err != nil {
		return err
	}

	proID, err := kernel.UUIDFromString(body.ProProfileID)
	if err != nil {
		return badRequest(err)
	}
	categoryID, err := kernel.UUIDFromString(body.CategoryID)
	if err != nil {
		return badRequest(err)
	}
	window, err := kernel.NewTimeWindow(body.WindowStart, body.WindowEnd)
	if err != nil {
		return err
	}
	mode, err := order.ParsePricingMode(body.PricingMode)
	if err != nil {
		return err
	}
	estimated, err := parseHours(body.EstimatedHours, "estimatedHours")
	if err != nil {
		return err
	}
	var quote *kernel.Money
	if body.QuotedAmountCents != nil {
		m, moneyErr := kernel.NewMoney(*body.QuotedAmountCents, s.currency)
		if moneyErr != nil {
			return moneyErr
		}
		quote = &m
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), actor, proID, categoryID, window, mode, estimated, quote)
	if err != nil {
		return err
	}
	o, err := s.handlers.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, orderResponse(o))
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(err)
	}

	query, err := queries.NewGetOrderQuery(orderID, actor)
	if err != nil {
		return err
	}
	view, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderViewResponse(view))
}

// TransitionOrder handles POST /api/v1/orders/{orderId}/transitions.
func (s *Server) TransitionOrder(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(err)
	}
	body, err := bindBody[TransitionRequest](c, false)
	if err != nil {
		return err
	}

	target, err := order.ParseStatus(body.Target)
	if err != nil {
		return err
	}
	expected, err := order.ParseStatus(body.ExpectedStatus)
	if err != nil {
		return err
	}
	finalHours, err := parseHours(body.FinalHours, "finalHours")
	if err != nil {
		return err
	}
	approvedHours, err := parseHours(body.ApprovedHours, "approvedHours")
	if err != nil {
		return err
	}

	cmd, err := commands.NewTransitionOrderCommand(orderID, target, expected, actor, commands.TransitionInput{
		FinalHours:    finalHours,
		ApprovedHours: approvedHours,
		Reason:        body.Reason,
	})
	if err != nil {
		return err
	}
	o, err := s.handlers.TransitionOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderResponse(o))
}

// ForceOrderStatus handles POST /api/v1/admin/orders/{orderId}/force-status.
func (s *Server) ForceOrderStatus(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(err)
	}
	body, err := bindBody[ForceStatusRequest](c, false)
	if err != nil {
		return err
	}
	target, err := order.ParseStatus(body.Target)
	if err != nil {
		return err
	}

	cmd, err := commands.NewForceOrderStatusCommand(orderID, target, actor, body.Reason)
	if err != nil {
		return err
	}
	o, err := s.handlers.ForceOrderStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderResponse(o))
}

// IsChatOpen handles GET /api/v1/orders/{orderId}/chat.
func (s *Server) IsChatOpen(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(err)
	}
	query, err := queries.NewIsChatOpenQuery(orderID)
	if err != nil {
		return err
	}
	resp, err := s.handlers.IsChatOpen.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ChatStateResponse{
		OrderID: resp.OrderID.String(),
		Status:  resp.Status,
		Open:    resp.Open,
	})
}

// GetAuditTrail handles GET /api/v1/admin/audit?entityId=.
func (s *Server) GetAuditTrail(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return badRequest(err)
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return badRequest(errs.NewValueIsInvalidErrorWithCause("limit", err))
		}
	}

	query, err := queries.NewGetAuditTrailQuery(c.QueryParam("entityId"), limit, actor)
	if err != nil {
		return err
	}
	entries, err := s.handlers.GetAuditTrail.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, auditEntryResponses(entries))
}

func parseHours(raw *string, name string) (*kernel.Hours, error) {
	if raw == nil {
		return nil, nil
	}
	h, err := kernel.HoursFromString(*raw)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return &h, nil
}
