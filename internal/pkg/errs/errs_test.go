package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"booking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderId", "123")

		assert.Equal(t, "orderId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 123", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := errs.NewObjectNotFoundErrorWithCause("orderId", "123", cause)

		assert.Equal(t, "orderId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: orderId, ID is: 123 (cause: database connection failed)",
			err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("Error with different ID types", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderId", 456)
		assert.Equal(t, "object not found: %!s(int=456)", err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("NewValueIsInvalidError", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("currency")

		assert.Equal(t, "currency", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: currency", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("NewValueIsInvalidErrorWithCause", func(t *testing.T) {
		cause := errors.New("invalid format")
		err := errs.NewValueIsInvalidErrorWithCause("currency", cause)

		assert.Equal(t, "currency", err.ParamName)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is invalid: currency (cause: invalid format)", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("NewValueIsOutOfRangeError", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("hours", 150, 0, 120)

		assert.Equal(t, "hours", err.ParamName)
		assert.Equal(t, 150, err.Value)
		assert.Equal(t, 0, err.Min)
		assert.Equal(t, 120, err.Max)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: 150 is hours, min value is 0, max value is 120", err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})

	t.Run("NewValueIsOutOfRangeErrorWithCause", func(t *testing.T) {
		cause := errors.New("validation failed")
		err := errs.NewValueIsOutOfRangeErrorWithCause("score", -5, 0, 100, cause)

		assert.Equal(t, "score", err.ParamName)
		assert.Equal(t, -5, err.Value)
		assert.Equal(t, 0, err.Min)
		assert.Equal(t, 100, err.Max)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"value is invalid: -5 is score, min value is 0, max value is 100 (cause: validation failed)",
			err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})

	t.Run("sanitize function with newlines", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("text", "hello\nworld", 0, 10)
		assert.Contains(t, err.Error(), "hello world")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	t.Run("NewValueIsRequiredError", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("clientId")

		assert.Equal(t, "clientId", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is required: clientId", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})

	t.Run("NewValueIsRequiredErrorWithCause", func(t *testing.T) {
		cause := errors.New("missing required field")
		err := errs.NewValueIsRequiredErrorWithCause("clientId", cause)

		assert.Equal(t, "clientId", err.ParamName)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is required: clientId (cause: missing required field)", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})
}

func TestSentinelErrors(t *testing.T) {
	t.Run("sentinel errors are defined", func(t *testing.T) {
		require.Error(t, errs.ErrObjectNotFound)
		require.Error(t, errs.ErrValueIsInvalid)
		require.Error(t, errs.ErrValueIsOutOfRange)
		require.Error(t, errs.ErrValueIsRequired)
		require.Error(t, errs.ErrInvalidTransition)
		require.Error(t, errs.ErrConflict)
		require.Error(t, errs.ErrProvider)
	})

	t.Run("error messages match expectations", func(t *testing.T) {
		assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
		assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
		assert.Equal(t, "value is out of range", errs.ErrValueIsOutOfRange.Error())
		assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
		assert.Equal(t, "invalid transition", errs.ErrInvalidTransition.Error())
		assert.Equal(t, "conflict", errs.ErrConflict.Error())
	})
}

func TestErrorsCanBeUnwrapped(t *testing.T) {
	t.Run("errors.Is works with custom errors", func(t *testing.T) {
		objectNotFoundErr := errs.NewObjectNotFoundError("orderId", "123")
		require.ErrorIs(t, objectNotFoundErr, errs.ErrObjectNotFound)

		valueInvalidErr := errs.NewValueIsInvalidError("currency")
		require.ErrorIs(t, valueInvalidErr, errs.ErrValueIsInvalid)

		valueOutOfRangeErr := errs.NewValueIsOutOfRangeError("hours", 150, 0, 120)
		require.ErrorIs(t, valueOutOfRangeErr, errs.ErrValueIsOutOfRange)

		valueRequiredErr := errs.NewValueIsRequiredError("clientId")
		require.ErrorIs(t, valueRequiredErr, errs.ErrValueIsRequired)

		transitionErr := errs.NewInvalidTransitionError("order", "IN_PROGRESS", "CANCELED", "CLIENT")
		require.ErrorIs(t, transitionErr, errs.ErrInvalidTransition)

		conflictErr := errs.NewConflictError("payment", "p-1")
		require.ErrorIs(t, conflictErr, errs.ErrConflict)
	})
}

func TestInvalidTransitionError(t *testing.T) {
	t.Run("with role", func(t *testing.T) {
		err := errs.NewInvalidTransitionError("order", "IN_PROGRESS", "CANCELED", "CLIENT")

		assert.Equal(t, "invalid transition: order cannot move from IN_PROGRESS to CANCELED as CLIENT", err.Error())
		assert.Equal(t, errs.ErrInvalidTransition, err.Unwrap())
	})

	t.Run("without role", func(t *testing.T) {
		err := errs.NewInvalidTransitionError("payment", "CAPTURED", "AUTHORIZED", "")

		assert.Equal(t, "invalid transition: payment cannot move from CAPTURED to AUTHORIZED", err.Error())
	})
}

func TestConflictError(t *testing.T) {
	t.Run("status conflict", func(t *testing.T) {
		err := errs.NewStatusConflictError("order", "o-1", "ACCEPTED", "CANCELED")

		assert.Equal(t, "conflict: order o-1 expected ACCEPTED, actual CANCELED", err.Error())
		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("version conflict", func(t *testing.T) {
		err := errs.NewConflictError("payout", "po-1")

		assert.Equal(t, "conflict: payout po-1 was modified concurrently", err.Error())
	})
}

func TestProviderError(t *testing.T) {
	t.Run("retryable", func(t *testing.T) {
		cause := errors.New("timeout")
		err := errs.NewRetryableProviderError("mercadopago", "hold", cause)

		require.ErrorIs(t, err, errs.ErrProvider)
		require.ErrorIs(t, err, errs.ErrProviderRetryable)
		require.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, errs.ErrProviderPermanent)
		assert.Equal(t, "provider error: mercadopago hold failed (retryable) (cause: timeout)", err.Error())
	})

	t.Run("permanent", func(t *testing.T) {
		err := errs.NewPermanentProviderError("payouts", "send", nil)

		require.ErrorIs(t, err, errs.ErrProviderPermanent)
		assert.NotErrorIs(t, err, errs.ErrProviderRetryable)
		assert.Equal(t, "provider error: payouts send failed (permanent)", err.Error())
	})

	t.Run("errors.As through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("capture: %w", errs.NewPermanentProviderError("mercadopago", "capture", nil))

		var providerErr *errs.ProviderError
		require.ErrorAs(t, wrapped, &providerErr)
		assert.False(t, providerErr.Retryable)
	})
}

func TestIsValidation(t *testing.T) {
	assert.True(t, errs.IsValidation(errs.NewValueIsRequiredError("reason")))
	assert.True(t, errs.IsValidation(errs.NewValueIsInvalidError("currency")))
	assert.True(t, errs.IsValidation(errs.NewValueIsOutOfRangeError("hours", -1, 0, 24)))
	assert.False(t, errs.IsValidation(errs.NewConflictError("order", "1")))
}

func TestForbiddenError(t *testing.T) {
	err := errs.NewForbiddenError("user-1", "order", "o-1")

	assert.Equal(t, "forbidden: user-1 may not act on order o-1", err.Error())
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), errs.ErrForbidden)
	assert.False(t, errs.IsValidation(err))
}
