package http

import (
	"errors"
	"net/http"

	"booking/internal/pkg/errs"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code           int    `json:"code"`
	Message        string `json:"message"`
	ExpectedStatus string `json:"expectedStatus,omitempty"`
	ActualStatus   string `json:"actualStatus,omitempty"`
}

// badRequestError marks a request that could not be decoded or failed schema
// validation, as opposed to a well formed request the domain refused.
type badRequestError struct {
	cause error
}

func badRequest(err error) error {
	return &badRequestError{cause: err}
}

func (e *badRequestError) Error() string { return e.cause.Error() }
func (e *badRequestError) Unwrap() error { return e.cause }

// StatusFor maps an application error to its HTTP status.
func StatusFor(err error) int {
	var (
		bad     *badRequestError
		httpErr *echo.HTTPError
	)
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrProviderRetryable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrProvider):
		return http.StatusBadGateway
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorHandler renders errors as Error bodies. Server side failures are logged
// and reported to Sentry when the request carries a hub.
func NewErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := StatusFor(err)
		body := Error{Code: status, Message: err.Error()}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			if msg, ok := httpErr.Message.(string); ok {
				body.Message = msg
			}
		}
		var conflict *errs.ConflictError
		if errors.As(err, &conflict) {
			body.ExpectedStatus = conflict.Expected
			body.ActualStatus = conflict.Actual
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err),
			)
			if hub := sentryecho.GetHubFromContext(c); hub != nil {
				hub.WithScope(func(scope *sentry.Scope) {
					scope.SetTag("http.status", http.StatusText(status))
					hub.CaptureException(err)
				})
			}
			if status == http.StatusInternalServerError {
				body.Message = http.StatusText(status)
			}
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Warn("cannot write error response", zap.Error(writeErr))
		}
	}
}
