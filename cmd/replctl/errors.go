package main

import (
	"context"
	"errors"

	"replenishment/internal/core/domain/services"
	"replenishment/internal/pkg/errs"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitSuccess    = 0
	ExitError      = 1
	ExitValidation = 2
	ExitNotFound   = 3
	ExitConflict   = 4
	ExitCancelled  = 5
)

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ExitCancelled
	case errs.IsValidation(err):
		return ExitValidation
	case errors.Is(err, errs.ErrObjectNotFound):
		return ExitNotFound
	case errors.Is(err, errs.ErrStateIsInvalid),
		errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrCapacityExceeded),
		errors.Is(err, services.ErrInsufficientOrders):
		return ExitConflict
	default:
		return ExitError
	}
}

// handleError prints err to the command's error output and returns the exit
// code.
func handleError(cmd *cobra.Command, err error) int {
	code := exitCode(err)
	if code == ExitCancelled {
		cmd.PrintErrln("Operation cancelled")
		return code
	}
	cmd.PrintErrln("Error:", err)
	return code
}
