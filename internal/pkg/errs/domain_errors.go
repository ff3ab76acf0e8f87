package errs

import (
	"errors"
	"fmt"
)

var (
	ErrStateIsInvalid   = errors.New("state is invalid")
	ErrConflict         = errors.New("conflict")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrExternalProvider = errors.New("external provider failed")
)

// StateIsInvalidError reports a transition that is illegal for the current status.
type StateIsInvalidError struct {
	Entity string
	State  string
	Action string
	Cause  error
}

func NewStateIsInvalidError(entity, state, action string) *StateIsInvalidError {
	return &StateIsInvalidError{Entity: entity, State: state, Action: action}
}

func NewStateIsInvalidErrorWithCause(entity, state, action string, cause error) *StateIsInvalidError {
	return &StateIsInvalidError{Entity: entity, State: state, Action: action, Cause: cause}
}

func (e *StateIsInvalidError) Error() string {
	msg := fmt.Sprintf("%s: cannot %s %s in state %s", ErrStateIsInvalid, e.Action, e.Entity, e.State)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *StateIsInvalidError) Unwrap() error {
	return ErrStateIsInvalid
}

// ConflictError is returned when the persisted version differs from the one the
// caller observed, or when an exclusive lock is held by someone else. Callers
// re-read and retry.
type ConflictError struct {
	Entity string
	ID     any
	Cause  error
}

func NewConflictError(entity string, id any) *ConflictError {
	return &ConflictError{Entity: entity, ID: id}
}

func NewConflictErrorWithCause(entity string, id any, cause error) *ConflictError {
	return &ConflictError{Entity: entity, ID: id, Cause: cause}
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %v was modified concurrently (cause: %v)", ErrConflict, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s %v was modified concurrently", ErrConflict, e.Entity, e.ID)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// CapacityExceededError carries the requested amount and what was still available.
type CapacityExceededError struct {
	ParamName string
	Requested any
	Available any
}

func NewCapacityExceededError(paramName string, requested, available any) *CapacityExceededError {
	return &CapacityExceededError{ParamName: paramName, Requested: requested, Available: available}
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%s: %s requested %v, available %v", ErrCapacityExceeded, e.ParamName, e.Requested, e.Available)
}

func (e *CapacityExceededError) Unwrap() error {
	return ErrCapacityExceeded
}

type ExternalProviderError struct {
	Provider string
	Cause    error
}

func NewExternalProviderError(provider string, cause error) *ExternalProviderError {
	return &ExternalProviderError{Provider: provider, Cause: cause}
}

func (e *ExternalProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrExternalProvider, e.Provider, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrExternalProvider, e.Provider)
}

func (e *ExternalProviderError) Unwrap() error {
	return ErrExternalProvider
}
