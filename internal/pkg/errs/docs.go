// Package errs provides standardized error types for the booking service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed input
//   - ObjectNotFoundError: an aggregate cannot be found
//   - InvalidTransitionError: an actor asked for an edge the status graph does not have
//   - ConflictError: a stale precondition (expected status or version) was detected
//   - ForbiddenError: the actor is not a party to the order or profile it acts on
//   - ProviderError: a payment or payout gateway failed, retryable or permanent
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// Callers classify errors with errors.Is against the sentinels and read details
// with errors.As against the struct types.
package errs
