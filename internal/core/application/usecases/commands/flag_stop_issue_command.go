package commands

import (
	"errors"
	"strings"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"
)

var (
	ErrFlagStopIssueCommandIsNotConstructed = errors.New(
		"FlagStopIssueCommand must be created via NewFlagStopIssueCommand constructor",
	)
	ErrIssueDescriptionIsRequired = errs.NewValueIsRequiredError("issue description")
)

// FlagStopIssueCommand records why a stop could not be served.
type FlagStopIssueCommand struct { //nolint:recvcheck //using for validation
	routeID     kernel.UUID
	stopID      kernel.UUID
	description string
	resolution  string

	guard guard.ConstructorGuard
}

func NewFlagStopIssueCommand(routeID, stopID kernel.UUID, description, resolution string) (FlagStopIssueCommand, error) {
	cmd := FlagStopIssueCommand{
		resolution: strings.TrimSpace(resolution),
		guard:      guard.NewConstructorGuard(),
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return FlagStopIssueCommand{}, errors.Join(routeID.Validate(), stopID.Validate(), ErrIssueDescriptionIsRequired)
	}
	if err := errors.Join(routeID.Validate(), stopID.Validate()); err != nil {
		return FlagStopIssueCommand{}, err
	}

	cmd.routeID = routeID
	cmd.stopID = stopID
	cmd.description = description
	return cmd, nil
}

func (c FlagStopIssueCommand) Validate() error {
	return c.guard.Validate(ErrFlagStopIssueCommandIsNotConstructed)
}

func (c FlagStopIssueCommand) RouteID() kernel.UUID { return c.routeID }
func (c FlagStopIssueCommand) StopID() kernel.UUID  { return c.stopID }
func (c FlagStopIssueCommand) Description() string  { return c.description }
func (c FlagStopIssueCommand) Resolution() string   { return c.resolution }
