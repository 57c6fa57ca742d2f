package http

import (
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"
)

// actorFromRequest reads the identity set by the upstream gateway. SYSTEM cannot
// be claimed over HTTP.
func actorFromRequest(c echo.Context) (order.Actor, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", HeaderActorID, c.Request().Header.Get(HeaderActorID), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Required: true})
	if err != nil {
		return order.Actor{}, errs.NewValueIsInvalidErrorWithCause(HeaderActorID, err)
	}
	actorID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return order.Actor{}, errs.NewValueIsInvalidErrorWithCause(HeaderActorID, err)
	}

	var rawRole string
	err = runtime.BindStyledParameterWithOptions("simple", HeaderActorRole, c.Request().Header.Get(HeaderActorRole), &rawRole,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Required: true})
	if err != nil {
		return order.Actor{}, errs.NewValueIsInvalidErrorWithCause(HeaderActorRole, err)
	}
	role, err := order.ParseRole(rawRole)
	if err != nil {
		return order.Actor{}, err
	}
	return order.NewActor(actorID, role)
}

// pathUUID binds a uuid path parameter the way generated oapi-codegen servers do.
func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	parsed, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return parsed, nil
}

// optionalUUID parses a body field; empty yields the zero UUID.
func optionalUUID(raw, name string) (kernel.UUID, error) {
	if raw == "" {
		return kernel.UUID{}, nil
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}
