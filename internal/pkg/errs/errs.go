package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrProvider          = errors.New("provider error")
	ErrProviderRetryable = errors.New("provider error is retryable")
	ErrProviderPermanent = errors.New("provider error is permanent")
)

const unknownEntity = "entity"

// IsValidation reports whether err is one of the malformed-input errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValueIsRequired) ||
		errors.Is(err, ErrValueIsInvalid) ||
		errors.Is(err, ErrValueIsOutOfRange)
}

// ObjectNotFoundError is returned when an aggregate cannot be loaded.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)", ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError is returned when a value fails a domain rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError is returned when a value falls outside [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError is returned when a mandatory value is missing.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// InvalidTransitionError is returned when the requested edge is not in the
// status graph for the acting role.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
	Role   string
}

func NewInvalidTransitionError(entity, from, to, role string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to, Role: role}
}

func (e *InvalidTransitionError) Error() string {
	entity := e.Entity
	if entity == "" {
		entity = unknownEntity
	}
	if e.Role == "" {
		return fmt.Sprintf("%s: %s cannot move from %s to %s", ErrInvalidTransition, entity, e.From, e.To)
	}
	return fmt.Sprintf("%s: %s cannot move from %s to %s as %s", ErrInvalidTransition, entity, e.From, e.To, e.Role)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ConflictError is returned when an optimistic precondition no longer holds.
// The caller must refetch and decide again.
type ConflictError struct {
	Entity   string
	ID       string
	Expected string
	Actual   string
}

func NewConflictError(entity, id string) *ConflictError {
	return &ConflictError{Entity: entity, ID: id}
}

func NewStatusConflictError(entity, id, expected, actual string) *ConflictError {
	return &ConflictError{Entity: entity, ID: id, Expected: expected, Actual: actual}
}

func (e *ConflictError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("%s: %s %s expected %s, actual %s", ErrConflict, e.Entity, e.ID, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: %s %s was modified concurrently", ErrConflict, e.Entity, e.ID)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// ForbiddenError is returned when the actor is not a party to the entity it acts on.
type ForbiddenError struct {
	Actor  string
	Entity string
	ID     string
}

func NewForbiddenError(actor, entity, id string) *ForbiddenError {
	return &ForbiddenError{Actor: actor, Entity: entity, ID: id}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %s may not act on %s %s", ErrForbidden, e.Actor, e.Entity, e.ID)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// ProviderError wraps a failure reported by an external payment or payout gateway.
type ProviderError struct {
	Provider  string
	Operation string
	Retryable bool
	Cause     error
}

func NewRetryableProviderError(provider, operation string, cause error) *ProviderError {
	return &ProviderError{Provider: provider, Operation: operation, Retryable: true, Cause: cause}
}

func NewPermanentProviderError(provider, operation string, cause error) *ProviderError {
	return &ProviderError{Provider: provider, Operation: operation, Cause: cause}
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Retryable {
		kind = "retryable"
	}
	msg := fmt.Sprintf("%s: %s %s failed (%s)", ErrProvider, e.Provider, e.Operation, kind)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	kind := ErrProviderPermanent
	if e.Retryable {
		kind = ErrProviderRetryable
	}
	if e.Cause == nil {
		return []error{ErrProvider, kind}
	}
	return []error{ErrProvider, kind, e.Cause}
}

func sanitize(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return strings.ReplaceAll(s, "\n", " ")
}
