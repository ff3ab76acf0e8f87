// Package errs provides the error taxonomy shared by the domain, the use cases
// and the adapters of the replenishment service.
//
// Every kind follows the same shape:
//   - a sentinel (ErrValueIsRequired, ErrStateIsInvalid, ...)
//   - a struct carrying details and an optional Cause
//   - constructors with and without a cause
//   - Unwrap returning the sentinel, so callers branch with errors.Is / errors.As
//
// Validation failures (required, invalid, out of range) are reported by IsValidation.
// StateIsInvalid, Conflict, CapacityExceeded and ExternalProvider cover illegal
// transitions, optimistic version mismatches, capacity violations and geometry
// provider failures respectively.
package errs
